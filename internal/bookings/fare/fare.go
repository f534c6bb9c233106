// Package fare prices a trip from its distance and passenger load.
package fare

import "cabmarket/pkg/config"

// Quote is the priced breakdown of one trip.
type Quote struct {
	DistanceKm         float64
	ExtraPassengerFare float64
	Fare               float64
}

// Calculator prices trips with rates injected at construction. Rates
// never change for the lifetime of the process.
type Calculator struct {
	costPerKm             float64
	costPerExtraPassenger float64
	defaultDistanceKm     float64
	walletPointRate       float64
}

func NewCalculator(cfg *config.Config) *Calculator {
	return &Calculator{
		costPerKm:             cfg.CostPerKm,
		costPerExtraPassenger: cfg.CostPerExtraPassenger,
		defaultDistanceKm:     cfg.DefaultDistanceKm,
		walletPointRate:       cfg.WalletPointRate,
	}
}

// Distance returns the trip distance in kilometers. Route lookup is not
// integrated yet, so every trip uses the configured default.
func (c *Calculator) Distance(pickupLocation, dropLocation string) float64 {
	return c.defaultDistanceKm
}

// Price computes the total fare: distance at the per-km rate plus a flat
// charge per extra passenger.
func (c *Calculator) Price(distanceKm float64, extraPassengers int) Quote {
	extraFare := float64(extraPassengers) * c.costPerExtraPassenger
	return Quote{
		DistanceKm:         distanceKm,
		ExtraPassengerFare: extraFare,
		Fare:               distanceKm*c.costPerKm + extraFare,
	}
}

// WalletPoints returns the reward credit earned for a completed trip.
func (c *Calculator) WalletPoints(distanceKm float64) float64 {
	return distanceKm * c.walletPointRate
}
