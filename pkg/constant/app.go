// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package constant

// ApplicationName identifies the service in consumer tags, telemetry and logs.
const ApplicationName = "rabbitmq-consumer-api"

// HeaderID is the request header (and AMQP message header) carrying the request ID.
const HeaderID = "X-Request-Id"
