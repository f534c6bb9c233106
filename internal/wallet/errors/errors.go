package errors

import "errors"

var ErrDuplicateEntry = errors.New("wallet entry already exists for booking")
