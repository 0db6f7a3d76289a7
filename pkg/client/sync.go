package client

import (
	"context"
	"sync"
)

// SyncState is the profile-sync position for the current session identity.
type SyncState int

const (
	// StateUnknown means no sync has been attempted for this identity.
	StateUnknown SyncState = iota
	// StateSyncing means a sync call is in flight.
	StateSyncing
	// StateSynced means the local profile exists and is current.
	StateSynced
	// StateFailed means the last sync attempt errored; Ensure retries on the next call.
	StateFailed
)

func (s SyncState) String() string {
	switch s {
	case StateSyncing:
		return "syncing"
	case StateSynced:
		return "synced"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProfileSync tracks whether the signed-in identity has a local profile,
// as an explicit state machine keyed by subject identity rather than flags
// derived from request outcomes. A UI calls Ensure after sign-in and again
// whenever a call fails with APIError.NotProvisioned.
type ProfileSync struct {
	mu      sync.Mutex
	client  *Client
	subject string
	state   SyncState
}

// NewProfileSync builds the state machine around an authenticated client.
func NewProfileSync(c *Client) *ProfileSync {
	return &ProfileSync{client: c}
}

// State returns the current state.
func (p *ProfileSync) State() SyncState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Ensure makes sure a local profile exists for subject. A change of subject
// re-enters the machine from unknown. Already-synced identities return
// immediately; the sync upsert is idempotent, so a redundant call after a
// failed attempt is safe.
func (p *ProfileSync) Ensure(ctx context.Context, subject string, profile SyncUserProfile) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if subject != p.subject {
		p.subject = subject
		p.state = StateUnknown
	}
	if p.state == StateSynced {
		return nil
	}

	p.state = StateSyncing
	if _, err := p.client.SyncUser(ctx, profile); err != nil {
		p.state = StateFailed
		return err
	}
	p.state = StateSynced
	return nil
}

// Reset drops back to unknown, e.g. on sign-out.
func (p *ProfileSync) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subject = ""
	p.state = StateUnknown
}
