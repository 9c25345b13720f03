// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSConfig holds the comma-separated CORS settings loaded from the environment.
type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// CORSMiddleware configures CORS from cfg. Empty segments and malformed origins are dropped,
// since cors.New panics on them.
func CORSMiddleware(cfg CORSConfig) fiber.Handler {
	origins := sanitizeOrigins(cfg.AllowedOrigins)
	if origins == "" {
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: sanitizeCommaSeparated(cfg.AllowedMethods),
		AllowHeaders: sanitizeCommaSeparated(cfg.AllowedHeaders),
		Next:         corsSkipPath,
	})
}

// corsSkipPath returns true for infrastructure paths that serve no browser requests.
func corsSkipPath(c *fiber.Ctx) bool {
	switch c.Path() {
	case "/health", "/ready", "/version":
		return true
	}

	return false
}

func sanitizeOrigins(input string) string {
	var clean []string

	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if p == "*" || isValidOrigin(p) {
			clean = append(clean, p)
		}
	}

	return strings.Join(clean, ",")
}

// isValidOrigin accepts scheme://host[:port] only.
func isValidOrigin(origin string) bool {
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	if parsed.Path != "" && parsed.Path != "/" {
		return false
	}

	return parsed.RawQuery == "" && parsed.Fragment == "" && parsed.User == nil
}

func sanitizeCommaSeparated(input string) string {
	var clean []string

	for _, p := range strings.Split(input, ",") {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}

	return strings.Join(clean, ",")
}
