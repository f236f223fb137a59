// Package service orchestrates the session lifecycle: credential
// verification, session-state transitions on the principal record, and
// bearer-token issuance and checking.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Mann-lohchab/Portal/internal/auth"
	"github.com/Mann-lohchab/Portal/internal/crypto"
	"github.com/Mann-lohchab/Portal/internal/model"
	"github.com/Mann-lohchab/Portal/internal/session"
)

// PrincipalStore is the slice of the repository the auth flows need.
type PrincipalStore interface {
	GetByExternalID(ctx context.Context, role model.Role, externalID string) (model.Principal, error)
	UpdateSessionState(ctx context.Context, role model.Role, id string, state session.State) error
}

type Auth struct {
	store      PrincipalStore
	jwtSecret  string
	jwtIssuer  string
	tokenTTL   time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuth(store PrincipalStore, jwtSecret, jwtIssuer string, tokenTTL, sessionTTL time.Duration) *Auth {
	return &Auth{
		store:      store,
		jwtSecret:  jwtSecret,
		jwtIssuer:  jwtIssuer,
		tokenTTL:   tokenTTL,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

type LoginResult struct {
	Token     string
	Principal model.Principal
}

// Login validates credentials and opens a session for the principal.
// A still-active session is cleared before re-authentication: a new login
// supersedes a dangling session instead of erroring. The updated session
// state is persisted before the token is issued, so the two cannot diverge.
func (a *Auth) Login(ctx context.Context, role model.Role, externalID, secret string) (LoginResult, error) {
	if externalID == "" || secret == "" {
		return LoginResult{}, ErrInvalidRequest
	}

	principal, err := a.store.GetByExternalID(ctx, role, externalID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return LoginResult{}, ErrNotFound
		}
		return LoginResult{}, fmt.Errorf("%w: %v", ErrServer, err)
	}

	now := a.now().UTC()
	if principal.Session.ActiveAt(now) {
		if err := a.store.UpdateSessionState(ctx, role, principal.ID, session.Cleared()); err != nil {
			return LoginResult{}, fmt.Errorf("%w: %v", ErrServer, err)
		}
		principal.Session = session.Cleared()
	}

	if err := crypto.CheckPassword(principal.PasswordHash, secret); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	state := session.Begin(now, a.sessionTTL)
	if err := a.store.UpdateSessionState(ctx, role, principal.ID, state); err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrServer, err)
	}
	principal.Session = state

	token, err := auth.NewAccessToken(a.jwtSecret, a.jwtIssuer, now, a.tokenTTL, auth.Claims{
		InternalID: principal.ID,
		ExternalID: principal.ExternalID,
		Role:       role,
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrServer, err)
	}

	return LoginResult{Token: token, Principal: principal}, nil
}

// Logout clears the session named by the bearer token, when there is one and
// it verifies. It never fails: logout converges the server toward "no active
// session" and cleanup problems are logged, not surfaced.
func (a *Auth) Logout(ctx context.Context, rawToken string) {
	if rawToken == "" {
		return
	}
	claims, err := auth.ParseToken(a.jwtSecret, a.jwtIssuer, rawToken)
	if err != nil {
		log.Printf("logout: token verification failed: %v", err)
		return
	}
	principal, err := a.store.GetByExternalID(ctx, claims.Role, claims.ExternalID)
	if err != nil {
		log.Printf("logout: principal lookup failed: %v", err)
		return
	}
	if err := a.store.UpdateSessionState(ctx, claims.Role, principal.ID, session.Cleared()); err != nil {
		log.Printf("logout: session clear failed: %v", err)
	}
}

// VerifyToken is the stateless half of request authentication.
func (a *Auth) VerifyToken(rawToken string) (*auth.Claims, error) {
	return auth.ParseToken(a.jwtSecret, a.jwtIssuer, rawToken)
}

// CheckSession is the stateful half: the claimed principal must exist and
// its server-side session must be active and cover the token's issue time.
// A token that still verifies but belongs to a logged-out or superseded
// session fails here.
func (a *Auth) CheckSession(ctx context.Context, claims *auth.Claims) (model.Principal, error) {
	principal, err := a.store.GetByExternalID(ctx, claims.Role, claims.ExternalID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Principal{}, ErrNotFound
		}
		return model.Principal{}, fmt.Errorf("%w: %v", ErrServer, err)
	}
	now := a.now().UTC()
	if !principal.Session.ActiveAt(now) {
		return model.Principal{}, ErrSessionInactive
	}
	if claims.IssuedAt == nil || !principal.Session.Covers(claims.IssuedAt.Time) {
		return model.Principal{}, ErrSessionInactive
	}
	return principal, nil
}
