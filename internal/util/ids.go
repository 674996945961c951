// Package util holds small cross-cutting helpers shared by the HTTP
// adapter and scheduler logging.
package util

import "github.com/google/uuid"

// NewRequestID generates a correlation ID used to tie together the log
// lines and error responses for a single HTTP request.
func NewRequestID() string {
	return uuid.NewString()
}
