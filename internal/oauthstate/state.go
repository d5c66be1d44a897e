// Package oauthstate stores the single-use CSRF state tokens for the GitHub
// OAuth handshake. The default backend is an in-process map; a Redis backend
// is available for multi-instance deployments where the callback may land on
// a different process than the one that started the flow.
package oauthstate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// TTL bounds how long a state token may sit between authorization start and
// callback.
const TTL = 10 * time.Minute

// Store records and consumes state tokens. TakeIfValid deletes the token on
// first use regardless of outcome, so a replayed token always fails.
type Store interface {
	Put(ctx context.Context, token string) error
	TakeIfValid(ctx context.Context, token string) (bool, error)
}

// NewToken returns a random opaque state token.
func NewToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Memory is the in-process Store backend.
type Memory struct {
	mu      sync.Mutex
	created map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		created: make(map[string]time.Time),
		ttl:     TTL,
		now:     time.Now,
	}
}

func (m *Memory) Put(_ context.Context, token string) error {
	m.mu.Lock()
	m.created[token] = m.now()
	m.mu.Unlock()
	return nil
}

func (m *Memory) TakeIfValid(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	createdAt, ok := m.created[token]
	delete(m.created, token)
	if !ok {
		return false, nil
	}
	return m.now().Sub(createdAt) <= m.ttl, nil
}
