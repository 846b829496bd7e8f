package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/client"
	"csacademy/interview/internal/interview"
)

// BackendFactory builds the backend a user's controller talks through.
type BackendFactory func(tokens auth.TokenStore) client.Backend

// TokenStoreFactory builds the token cell for one user.
type TokenStoreFactory func(userID string) auth.TokenStore

// Hub keeps one interview controller per user.
type Hub struct {
	mu      sync.RWMutex
	entries map[string]*entry

	newBackend BackendFactory
	newTokens  TokenStoreFactory
	verifier   *auth.Verifier
	options    []interview.Option
	idleTTL    time.Duration
	now        func() time.Time
}

type entry struct {
	controller *interview.Controller
	tokens     auth.TokenStore
	lastUsed   time.Time
}

// NewHub returns an empty hub. A zero idleTTL keeps controllers until they
// are deleted.
func NewHub(newBackend BackendFactory, newTokens TokenStoreFactory, verifier *auth.Verifier, idleTTL time.Duration, opts ...interview.Option) *Hub {
	if newTokens == nil {
		newTokens = func(string) auth.TokenStore { return auth.NewMemoryTokenStore("") }
	}
	return &Hub{
		entries:    make(map[string]*entry),
		newBackend: newBackend,
		newTokens:  newTokens,
		verifier:   verifier,
		options:    opts,
		idleTTL:    idleTTL,
		now:        time.Now,
	}
}

// Acquire returns the user's controller, creating it on first use, and
// stores token as the credential for its outbound calls.
func (h *Hub) Acquire(ctx context.Context, userID, token string) (*interview.Controller, error) {
	if userID == "" {
		return nil, errors.New("sessions: user id required")
	}

	h.mu.Lock()
	e, ok := h.entries[userID]
	if !ok {
		tokens := h.newTokens(userID)
		e = &entry{
			controller: interview.NewController(
				h.newBackend(tokens),
				auth.NewTokenIdentity(tokens, h.verifier),
				h.options...,
			),
			tokens: tokens,
		}
		h.entries[userID] = e
	}
	e.lastUsed = h.now()
	h.mu.Unlock()

	if err := e.tokens.SetToken(ctx, token); err != nil {
		return nil, err
	}
	return e.controller, nil
}

// Delete forgets the user's controller and clears its token. Tokens are only
// cleared while holding the lock, never after a concurrent Acquire.
func (h *Hub) Delete(ctx context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.entries[userID]
	if !ok {
		return nil
	}
	delete(h.entries, userID)
	e.controller.ResetSession()
	return e.tokens.ClearToken(ctx)
}

// EvictIdle drops controllers unused for longer than the idle TTL and
// reports how many were dropped.
func (h *Hub) EvictIdle(ctx context.Context) int {
	if h.idleTTL <= 0 {
		return 0
	}
	cutoff := h.now().Add(-h.idleTTL)

	h.mu.Lock()
	defer h.mu.Unlock()

	evicted := 0
	for userID, e := range h.entries {
		if !e.lastUsed.Before(cutoff) {
			continue
		}
		delete(h.entries, userID)
		e.controller.ResetSession()
		_ = e.tokens.ClearToken(ctx)
		evicted++
	}
	return evicted
}

// Run evicts idle controllers every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.EvictIdle(ctx)
		}
	}
}
