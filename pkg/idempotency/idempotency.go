// Package idempotency replays the stored response of a POST request that is
// retried with the same Idempotency-Key header.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Header is the request header carrying the client's key.
const Header = "Idempotency-Key"

// DefaultTTL is how long a completed response is kept.
const DefaultTTL = 24 * time.Hour

// PendingTTL bounds how long a key stays reserved by a request that never
// finished, for example when the process died mid-request.
const PendingTTL = time.Minute

// ErrNotFound is returned when no entry exists for a key.
var ErrNotFound = errors.New("idempotency key not found")

type state string

const (
	statePending state = "pending"
	stateDone    state = "done"
)

// Entry is what is stored under a key: a pending marker while the first
// request runs, then its response.
type Entry struct {
	State       state  `json:"state"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Pending reports whether the first request with this key is still running.
func (e *Entry) Pending() bool {
	return e.State == statePending
}

// Store persists entries.
type Store interface {
	// Reserve claims key with a pending marker. It returns false when the key
	// already has an entry.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Get returns the entry for key or ErrNotFound.
	Get(ctx context.Context, key string) (*Entry, error)

	// Complete replaces the pending marker with the response.
	Complete(ctx context.Context, key string, entry *Entry, ttl time.Duration) error

	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}

func pendingEntry() *Entry {
	return &Entry{State: statePending}
}

func encode(e *Entry) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(raw string) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	return &e, nil
}
