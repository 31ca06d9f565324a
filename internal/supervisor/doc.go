// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package supervisor runs the long-lived parts of `moviequeue serve` under a
suture v4 supervisor tree.

	moviequeue
	├── data-layer
	│   └── graph-health (services.HealthProbeService)
	└── api-layer
	    └── http-server (services.HTTPServerService)

Crashed services are restarted with suture's backoff. Each layer counts its
own failures, so a flapping database probe never restarts the HTTP server.
Supervisor events go to slog through sutureslog; the serve command passes a
slog logger backed by zerolog (logging.NewSlogLogger).

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddDataService(services.NewHealthProbeService(store, 30*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
