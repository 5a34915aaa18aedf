// Package app wires the analytics web service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (.env, YAML file, SALESPULSE_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Open the order source (local file or S3 object)
//	4. Create the analytics and health services
//	5. Set up middleware, handlers and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down within
// Server.ShutdownTimeout and flushes telemetry. The package never calls
// os.Exit; errors are returned to main.
package app
