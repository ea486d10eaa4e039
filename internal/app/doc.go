// Package app wires the SaaSPulse web service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML, .env, environment)
//	2. Initialize logging and OpenTelemetry
//	3. Start the WebSocket hub
//	4. Build the summarizer, report assembler, exporters and services
//	5. Set up middleware and routes
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests,
// disconnects WebSocket clients and flushes telemetry. The package never
// calls os.Exit.
package app
