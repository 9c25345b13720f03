// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package containers

import (
	"context"
	"fmt"
	"net"

	toxiproxy "github.com/Shopify/toxiproxy/v2/client"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// ToxiproxyImage is the Docker image for the Toxiproxy container.
	ToxiproxyImage = "ghcr.io/shopify/toxiproxy:2.9.0"

	toxiproxyAPIPort = "8474/tcp"

	// ProxyNameRabbitMQ is the proxy placed in front of the broker AMQP port.
	ProxyNameRabbitMQ = "rabbitmq"

	rabbitMQProxyPort = "25672"
)

// ToxiproxyContainer holds the Toxiproxy container and its API client.
type ToxiproxyContainer struct {
	testcontainers.Container
	Client *toxiproxy.Client
	Host   string
}

// StartToxiproxy creates and starts a Toxiproxy container attached to the given network.
func StartToxiproxy(ctx context.Context, nw *testcontainers.DockerNetwork) (*ToxiproxyContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        ToxiproxyImage,
		ExposedPorts: []string{toxiproxyAPIPort, rabbitMQProxyPort + "/tcp"},
		Networks:     []string{nw.Name},
		NetworkAliases: map[string][]string{
			nw.Name: {"toxiproxy"},
		},
		WaitingFor: wait.ForHTTP("/version").WithPort(toxiproxyAPIPort),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start toxiproxy container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get toxiproxy host: %w", err)
	}

	apiPort, err := container.MappedPort(ctx, toxiproxyAPIPort)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("get toxiproxy api mapped port: %w", err)
	}

	return &ToxiproxyContainer{
		Container: container,
		Client:    toxiproxy.NewClient(net.JoinHostPort(host, apiPort.Port())),
		Host:      host,
	}, nil
}

// ProxyRabbitMQ creates the broker proxy towards upstream (alias:port on the shared network)
// and returns it with the host-reachable endpoint that routes through it.
func (t *ToxiproxyContainer) ProxyRabbitMQ(ctx context.Context, upstream string) (*toxiproxy.Proxy, string, error) {
	proxy, err := t.Client.CreateProxy(ProxyNameRabbitMQ, "0.0.0.0:"+rabbitMQProxyPort, upstream)
	if err != nil {
		return nil, "", fmt.Errorf("create proxy %s: %w", ProxyNameRabbitMQ, err)
	}

	mapped, err := t.MappedPort(ctx, nat.Port(rabbitMQProxyPort+"/tcp"))
	if err != nil {
		return nil, "", fmt.Errorf("get mapped port for %s: %w", ProxyNameRabbitMQ, err)
	}

	return proxy, net.JoinHostPort(t.Host, mapped.Port()), nil
}
