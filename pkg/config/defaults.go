package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "cabmarket"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLogLevel = "info"

	// Fare and wallet rates. Distance is a fixed placeholder until a real
	// routing integration supplies per-trip distances.
	DefaultCostPerKm             = 100.0
	DefaultCostPerExtraPassenger = 150.0
	DefaultDefaultDistanceKm     = 2.0
	DefaultWalletPointRate       = 1.0

	// Bookings may be edited or cancelled only while the pickup instant is
	// at least this many hours away.
	DefaultCancelWindowHours = 24.0

	DefaultPaginationLimit = 100
)
