// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/LerianStudio/rabbitmq-consumer-api/internal/bootstrap"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
)

// @title					RabbitMQ Consumer API
// @version					1.0.0
// @description				Starts and inspects RabbitMQ queue consumers over HTTP
// @termsOfService			http://swagger.io/terms/
// @host					localhost:4000
// @BasePath					/
func main() {
	libCommons.InitLocalEnvConfig()

	svc, err := bootstrap.InitServers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize service: %v\n", err)
		os.Exit(1)
	}

	svc.Run()
}
