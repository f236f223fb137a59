// Package session models the server-side session state embedded in each
// principal record as a two-state machine: Inactive, or Active with an
// absolute expiry. A login (re)enters Active, a logout returns to Inactive,
// and a login over an already-active session supersedes it.
package session

import "time"

// State holds the per-principal session timestamps. The zero value is the
// Inactive state: no expiry, no recorded login.
type State struct {
	LastLoginAt time.Time
	Expiry      time.Time
}

// Cleared returns the Inactive state.
func Cleared() State {
	return State{}
}

// Begin returns the Active state entered by a successful login at now.
// Calling it while already Active is the supersession transition: the
// previous expiry and login time are discarded.
func Begin(now time.Time, ttl time.Duration) State {
	return State{
		LastLoginAt: now.UTC(),
		Expiry:      now.UTC().Add(ttl),
	}
}

// ActiveAt reports whether the session is Active at the given instant:
// an expiry is set and lies strictly in the future.
func (s State) ActiveAt(now time.Time) bool {
	return !s.Expiry.IsZero() && s.Expiry.After(now)
}

// Covers reports whether a token issued at issuedAt belongs to the current
// session. Tokens issued before the session began were issued for a
// superseded session and are not covered. JWT issued-at claims carry second
// precision, so the comparison truncates accordingly.
func (s State) Covers(issuedAt time.Time) bool {
	if s.LastLoginAt.IsZero() {
		return false
	}
	return !issuedAt.Before(s.LastLoginAt.Truncate(time.Second))
}
