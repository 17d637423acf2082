// Package app wires the RevPulse dashboard together and owns its lifecycle:
// configuration loading, logger and OpenTelemetry setup, service
// construction, the chi router, and graceful shutdown.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, optional YAML, REVPULSE_* env)
//	2. Initialize the infrastructure logger and OTel providers
//	3. Build the service graph: webhook fetcher → loader → hub,
//	   then dashboard, insight, and health services on top
//	4. Assemble the router and middleware chain
//	5. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run starts the server, kicks off the first data load, and blocks until
// SIGINT or SIGTERM, then shuts down the server, the websocket hub, and the
// OTel providers in order. Initialization errors are returned rather than
// terminating the process, so main controls the exit.
package app
