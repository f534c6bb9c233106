package fare

import (
	"testing"

	"cabmarket/pkg/config"
)

func testCalculator() *Calculator {
	return NewCalculator(&config.Config{
		CostPerKm:             100,
		CostPerExtraPassenger: 150,
		DefaultDistanceKm:     2,
		WalletPointRate:       1,
	})
}

func TestPrice(t *testing.T) {
	calc := testCalculator()

	tests := []struct {
		name            string
		distanceKm      float64
		extraPassengers int
		wantFare        float64
		wantExtraFare   float64
	}{
		{"no extras", 2, 0, 200, 0},
		{"one extra passenger", 2, 1, 350, 150},
		{"two extra passengers", 2, 2, 500, 300},
		{"longer trip", 10, 1, 1150, 150},
		{"zero distance", 0, 2, 300, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := calc.Price(tt.distanceKm, tt.extraPassengers)
			if quote.Fare != tt.wantFare {
				t.Errorf("Fare = %g, want %g", quote.Fare, tt.wantFare)
			}
			if quote.ExtraPassengerFare != tt.wantExtraFare {
				t.Errorf("ExtraPassengerFare = %g, want %g", quote.ExtraPassengerFare, tt.wantExtraFare)
			}
			if quote.DistanceKm != tt.distanceKm {
				t.Errorf("DistanceKm = %g, want %g", quote.DistanceKm, tt.distanceKm)
			}
		})
	}
}

func TestDistanceUsesConfiguredDefault(t *testing.T) {
	calc := testCalculator()
	if got := calc.Distance("Airport", "Downtown"); got != 2 {
		t.Errorf("Distance() = %g, want 2", got)
	}
}

func TestWalletPoints(t *testing.T) {
	calc := testCalculator()
	if got := calc.WalletPoints(2); got != 2 {
		t.Errorf("WalletPoints(2) = %g, want 2", got)
	}
	if got := calc.WalletPoints(0); got != 0 {
		t.Errorf("WalletPoints(0) = %g, want 0", got)
	}
}
