// Package config loads the salespulse configuration.
//
// # Sources
//
// Values are resolved in increasing order of precedence:
//
//	1. Default()
//	2. YAML file at $SALESPULSE_CONFIG, else config.yaml or configs/config.yaml
//	3. .env in the working directory (never overrides variables already set)
//	4. Process environment
//
// # Environment Variables
//
// Variables follow envconfig naming under the SALESPULSE prefix, one segment
// per nested struct:
//
//	SALESPULSE_SERVER_PORT=8080
//	SALESPULSE_LOGGING_LEVEL=debug
//	SALESPULSE_SOURCE_DRIVER=s3
//	SALESPULSE_SOURCE_BUCKET=exports
//	SALESPULSE_SOURCE_KEY=amazon/2022.csv
//	SALESPULSE_TELEMETRY_ENABLE_TRACING=true
//
// # Example file
//
//	server:
//	  port: 8080
//	source:
//	  driver: file
//	  path: data/Amazon Sale Report.csv
//	logging:
//	  level: info
//	  output: both
//	  file_path: logs/salespulse.log
package config
