// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
)

// subscriberCloser stops every running consumer.
type subscriberCloser interface {
	Close() error
}

// Service is the application glue where we put all top-level components to be used.
type Service struct {
	*Server
	log.Logger
	monitor    *RabbitMQMonitor
	subscriber subscriberCloser
	cleanups   cleanups
}

// Run starts the application.
// This is the only necessary code to run an app in the main.go
func (app *Service) Run() {
	if app.monitor != nil {
		app.monitor.Start()
	}

	libCommons.NewLauncher(
		libCommons.WithLogger(app.Logger),
		libCommons.RunApp("HTTP Service", app.Server),
	).Run()

	app.shutdown()
}

// shutdown stops the consumers before closing the connections they depend on.
// Subscription status is left untouched so the next start resumes them.
func (app *Service) shutdown() {
	app.Info("Starting graceful shutdown...")

	if app.monitor != nil {
		app.monitor.Stop()
	}

	if app.subscriber != nil {
		app.Info("Stopping consumers...")

		if err := app.subscriber.Close(); err != nil {
			app.Errorf("Failed to stop consumers: %v", err)
		}
	}

	app.cleanups.run()

	app.Info("Graceful shutdown complete")

	_ = app.Sync()
}
