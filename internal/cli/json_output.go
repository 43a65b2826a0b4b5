// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the envelope for --json output.
type JSONResponse struct {
	Command   string      `json:"command"`
	Success   bool        `json:"success"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// NewJSONResponse creates a successful response envelope.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Command:   command,
		Success:   true,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// NewJSONError creates a failed response envelope.
func NewJSONError(command string, err error) *JSONResponse {
	return &JSONResponse{
		Command:   command,
		Success:   false,
		Timestamp: time.Now().UTC(),
		Error:     err.Error(),
	}
}

// Print writes the response as indented JSON to stdout.
func (r *JSONResponse) Print() {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		fmt.Fprintf(os.Stderr, "json output: %v\n", err)
	}
}
