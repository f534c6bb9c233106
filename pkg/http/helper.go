package http

import (
	"net/http"
	"strconv"

	"cabmarket/pkg/config"
	apperrors "cabmarket/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractStatusFilter reads the optional status query parameter used by
// the booking listings. Accepts all, active and inactive.
func ExtractStatusFilter(r *http.Request) (string, error) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", "all":
		return "", nil
	case "active", "inactive":
		return status, nil
	default:
		return "", apperrors.InvalidInput("invalid status parameter: " + status)
	}
}
