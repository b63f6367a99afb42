// Package app assembles the HTTP server that exposes a dataset cleaner.
//
// NewApplication takes an already configured services.DatasetService and
// wires the middleware chain, the dataset and health handlers, and the
// Prometheus endpoint onto a chi router:
//
//	app, err := app.NewApplication(cfg, logger, providers, dataset)
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// Run returns when ctx is cancelled and the server has drained, or when the
// listener fails. The package never calls os.Exit; the command decides the
// exit status.
package app
