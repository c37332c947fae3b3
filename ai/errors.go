// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrEmptyResponse indicates the provider returned no data for a request.
	ErrEmptyResponse = errors.New("provider returned empty response")

	// ErrEmptyInput indicates an empty text payload was submitted for embedding.
	ErrEmptyInput = errors.New("input text cannot be empty")
)

// ProviderError classifies a failed provider call as transient (retryable)
// or terminal. StatusCode is the HTTP status when one was available, 0
// otherwise.
type ProviderError struct {
	StatusCode int
	Transient  bool
	Err        error
}

func (e *ProviderError) Error() string {
	kind := "terminal"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %v", kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider error: %v", kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as a retryable provider failure.
func NewTransientError(statusCode int, err error) *ProviderError {
	return &ProviderError{StatusCode: statusCode, Transient: true, Err: err}
}

// NewTerminalError wraps err as a non-retryable provider failure.
func NewTerminalError(statusCode int, err error) *ProviderError {
	return &ProviderError{StatusCode: statusCode, Transient: false, Err: err}
}

// ClassifyStatus wraps err as a ProviderError according to its HTTP status:
// 429 and 5xx are transient, any other 4xx is terminal. A zero status means
// the failure happened below HTTP (timeout, connection reset) and is
// transient.
func ClassifyStatus(statusCode int, err error) *ProviderError {
	transient := statusCode == 0 || statusCode == http.StatusTooManyRequests || statusCode >= 500
	return &ProviderError{StatusCode: statusCode, Transient: transient, Err: err}
}

// IsTransient reports whether err is a retry-eligible provider failure.
// Classified provider errors answer for themselves; timeouts and deadline
// expiry are transient; unclassified errors default to transient because
// network-level faults carry no HTTP status.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Transient
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		return true
	}

	return true
}
