package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"caravan-share/apiclient"

	"github.com/google/uuid"
)

type registryEntry struct {
	store    *SessionStore
	lastSeen time.Time
}

// SessionRegistry owns one SessionStore per browser visitor, keyed by the
// visitor id kept in the web front's own cookie.
type SessionRegistry struct {
	base       *apiclient.Client
	logoutPath string
	idleTTL    time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

func NewSessionRegistry(base *apiclient.Client, logoutPath string, idleTTL time.Duration) *SessionRegistry {
	return &SessionRegistry{
		base:       base,
		logoutPath: logoutPath,
		idleTTL:    idleTTL,
		now:        time.Now,
		entries:    make(map[string]*registryEntry),
	}
}

// NewVisitorID returns a fresh visitor id.
func NewVisitorID() string {
	return uuid.NewString()
}

// ValidVisitorID reports whether id looks like an id issued by NewVisitorID.
func ValidVisitorID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// Acquire returns the visitor's store, creating and initialising it on first
// use.
func (r *SessionRegistry) Acquire(ctx context.Context, visitorID string) (*SessionStore, error) {
	if !ValidVisitorID(visitorID) {
		return nil, fmt.Errorf("services: invalid visitor id %q", visitorID)
	}

	r.mu.Lock()
	entry, ok := r.entries[visitorID]
	if ok {
		entry.lastSeen = r.now()
		r.mu.Unlock()
		entry.store.Init(ctx)
		return entry.store, nil
	}

	api, err := r.base.Fork()
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	entry = &registryEntry{store: NewSessionStore(api, r.logoutPath), lastSeen: r.now()}
	r.entries[visitorID] = entry
	r.mu.Unlock()

	entry.store.Init(ctx)
	return entry.store, nil
}

// Drop forgets the visitor's store.
func (r *SessionRegistry) Drop(visitorID string) {
	r.mu.Lock()
	delete(r.entries, visitorID)
	r.mu.Unlock()
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep removes stores idle for longer than the TTL and returns how many
// were removed.
func (r *SessionRegistry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle stores every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Printf("session registry: swept %d idle visitor(s)", n)
			}
		}
	}
}
