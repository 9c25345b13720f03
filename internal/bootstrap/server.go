// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
	libServer "github.com/LerianStudio/lib-commons/v3/commons/server"
	"github.com/gofiber/fiber/v2"
)

// shutdownTimeout bounds each step of the graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server represents the http server for the consumer service.
type Server struct {
	app           *fiber.App
	serverAddress string
	logger        log.Logger
	shutdownCh    <-chan struct{}
}

// ServerAddress returns is a convenience method to return the server address.
func (s *Server) ServerAddress() string {
	return s.serverAddress
}

// NewServer creates an instance of Server.
func NewServer(cfg *Config, app *fiber.App, logger log.Logger) *Server {
	return &Server{
		app:           app,
		serverAddress: cfg.ServerAddress,
		logger:        logger,
	}
}

// Run serves HTTP until SIGINT or SIGTERM, then drains in-flight requests.
// Telemetry is flushed by the service cleanups after the consumers stop.
func (s *Server) Run(_ *libCommons.Launcher) error {
	sm := libServer.NewServerManager(nil, nil, s.logger).
		WithHTTPServer(s.app, s.ServerAddress())

	if s.shutdownCh != nil {
		sm = sm.WithShutdownChannel(s.shutdownCh)
	}

	return sm.StartWithGracefulShutdownWithError()
}
