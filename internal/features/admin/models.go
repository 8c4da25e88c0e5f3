// Package admin lets an operator credit currency to a session.
// Requests carry the admin password, checked against an Argon2id hash.
// models.go describes the request and the login attempt log.
package admin

import (
	"sync"
	"time"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

const (
	// MaxFailedAttempts failures within AttemptWindow lock the client out.
	MaxFailedAttempts = 3
	AttemptWindow     = 1 * time.Hour
)

// GrantRequest is the body of POST /api/admin/grant.
type GrantRequest struct {
	SessionID string        `json:"sessionId"`
	Grant     economy.Grant `json:"grant"`
}

// LoginAttempt is one password check (for brute-force protection).
type LoginAttempt struct {
	At      time.Time
	Success bool
}

// AttemptLog remembers recent password checks per client.
type AttemptLog struct {
	mu       sync.Mutex
	attempts map[string][]LoginAttempt
}

// NewAttemptLog creates an empty log.
func NewAttemptLog() *AttemptLog {
	return &AttemptLog{attempts: make(map[string][]LoginAttempt)}
}

// Log records an attempt by client at now and drops entries older than AttemptWindow.
func (l *AttemptLog) Log(client string, success bool, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.prune(client, now)
	l.attempts[client] = append(kept, LoginAttempt{At: now, Success: success})
}

// RecentFailures counts client's failed attempts within AttemptWindow of now.
func (l *AttemptLog) RecentFailures(client string, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, a := range l.prune(client, now) {
		if !a.Success {
			n++
		}
	}
	return n
}

// prune must be called with mu held.
func (l *AttemptLog) prune(client string, now time.Time) []LoginAttempt {
	cutoff := now.Add(-AttemptWindow)
	var kept []LoginAttempt
	for _, a := range l.attempts[client] {
		if a.At.After(cutoff) {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, client)
	} else {
		l.attempts[client] = kept
	}
	return kept
}
