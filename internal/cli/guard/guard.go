// Package guard decides whether a role-protected view may render for the
// current auth state.
package guard

import (
	"github.com/Mann-lohchab/Portal/internal/cli/state"
	"github.com/Mann-lohchab/Portal/internal/model"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	// Render lets the protected view proceed.
	Render Decision = iota
	// RedirectLogin sends the user to the login flow for the required role.
	RedirectLogin
)

func (d Decision) String() string {
	if d == Render {
		return "render"
	}
	return "redirect_login"
}

// Decide gates a view that requires the given role. Anything short of a
// fully authenticated principal of exactly that role redirects to login;
// a mismatched role never renders another role's view.
func Decide(snap state.Snapshot, required model.Role) Decision {
	if !snap.IsAuthenticated() {
		return RedirectLogin
	}
	if snap.User.Role != required {
		return RedirectLogin
	}
	return Render
}
