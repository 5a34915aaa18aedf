package config

import "time"

// Application constants
const (
	AppName    = "salespulse"
	AppVersion = "1.0.0"

	// Environment
	EnvPrefix     = "SALESPULSE"
	ConfigFileEnv = "SALESPULSE_CONFIG"
	DotEnvFile    = ".env"

	// Source drivers
	SourceDriverFile = "file"
	SourceDriverS3   = "s3"

	DefaultSourcePath = "data/Amazon Sale Report.csv"

	// Rate limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)
