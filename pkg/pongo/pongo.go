// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pongo

import (
	"strings"

	"github.com/flosch/pongo2/v6"
)

// init registers the filters available to message templates.
func init() {
	if err := pongo2.RegisterFilter("oneline", onelineFilter); err != nil {
		panic("Failed to register oneline filter: " + err.Error())
	}
}

// onelineFilter collapses line breaks so a message body stays on a single log line.
func onelineFilter(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	replacer := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

	return pongo2.AsValue(replacer.Replace(in.String())), nil
}
