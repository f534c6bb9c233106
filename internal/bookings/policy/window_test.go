package policy

import (
	"testing"
	"time"
)

func TestDepartureTime(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name       string
		travelDate string
		pickupTime string
		want       time.Time
		wantErr    bool
	}{
		{
			name:       "valid date and time",
			travelDate: "15-3-2026",
			pickupTime: "9:30",
			want:       time.Date(2026, 3, 15, 9, 30, 0, 0, loc),
		},
		{
			name:       "padded day and hour",
			travelDate: "05-11-2026",
			pickupTime: "18:05",
			want:       time.Date(2026, 11, 5, 18, 5, 0, 0, loc),
		},
		{
			name:       "malformed date",
			travelDate: "2026-03-15",
			pickupTime: "9:30",
			wantErr:    true,
		},
		{
			name:       "malformed time",
			travelDate: "15-3-2026",
			pickupTime: "half past nine",
			wantErr:    true,
		},
		{
			name:       "empty date",
			travelDate: "",
			pickupTime: "9:30",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DepartureTime(tt.travelDate, tt.pickupTime, loc)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DepartureTime(%q, %q) expected error, got %v", tt.travelDate, tt.pickupTime, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DepartureTime(%q, %q) unexpected error: %v", tt.travelDate, tt.pickupTime, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("DepartureTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanCancel(t *testing.T) {
	window := NewWindow(24)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		departure time.Time
		want      bool
	}{
		{"well before window", now.Add(48 * time.Hour), true},
		{"exactly on boundary", now.Add(24 * time.Hour), true},
		{"just inside window", now.Add(24*time.Hour - time.Minute), false},
		{"departure imminent", now.Add(time.Hour), false},
		{"departure already passed", now.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := window.CanCancel(tt.departure, now); got != tt.want {
				t.Errorf("CanCancel(%v) = %v, want %v", tt.departure, got, tt.want)
			}
		})
	}
}
