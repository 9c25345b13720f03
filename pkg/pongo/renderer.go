// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pongo

import (
	"fmt"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"
	"github.com/LerianStudio/rabbitmq-consumer-api/pkg/model"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/flosch/pongo2/v6"
)

// MessageRenderer renders the log line written for every received message.
type MessageRenderer struct {
	tpl    *pongo2.Template
	logger log.Logger
}

// NewMessageRenderer compiles source. An empty or invalid source falls back to the default template.
func NewMessageRenderer(source string, logger log.Logger) *MessageRenderer {
	if source == "" {
		source = constant.DefaultMessageTemplate
	}

	tpl, err := compile(source)
	if err != nil {
		logger.Warnf("Invalid message template %q, using default: %v", source, err)

		tpl, err = compile(constant.DefaultMessageTemplate)
		if err != nil {
			logger.Errorf("Error parsing default message template: %v", err)
		}
	}

	return &MessageRenderer{tpl: tpl, logger: logger}
}

// Output is plain text for logs, so HTML autoescaping is turned off.
func compile(source string) (*pongo2.Template, error) {
	return pongo2.FromString("{% autoescape off %}" + source + "{% endautoescape %}")
}

// Render returns the log line for msg.
func (r *MessageRenderer) Render(msg model.ReceivedMessage) string {
	if r.tpl == nil {
		return fallback(msg)
	}

	out, err := r.tpl.Execute(pongo2.Context{
		"message":      msg.Body,
		"queue":        msg.Queue,
		"exchange":     msg.Exchange,
		"routing_key":  msg.RoutingKey,
		"message_id":   msg.MessageID,
		"content_type": msg.ContentType,
		"consumer_tag": msg.ConsumerTag,
		"delivery_tag": msg.DeliveryTag,
		"redelivered":  msg.Redelivered,
		"request_id":   msg.RequestID,
	})
	if err != nil {
		r.logger.Errorf("Error executing message template: %v", err)

		return fallback(msg)
	}

	return out
}

func fallback(msg model.ReceivedMessage) string {
	return fmt.Sprintf(" [x] Received %s", msg.Body)
}
