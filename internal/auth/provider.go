// Package auth abstracts the authentication provider. Sync components never
// consult global state for the current user; they hold a Provider.
package auth

import (
	"context"
	"sync"

	"github.com/planloop/planloop/internal/common"
)

// Provider exposes the stable identifier of the currently signed-in user.
// Absence of a current user is an expected state and surfaces as
// common.ErrorNotAuthenticated.
type Provider interface {
	// CurrentUserID returns the stable user identifier, or
	// common.ErrorNotAuthenticated when nobody is signed in.
	CurrentUserID(ctx context.Context) (string, error)

	// OnAuthChange registers a hook invoked with the new user id on sign-in
	// and with "" on sign-out.
	OnAuthChange(fn func(userID string))
}

// StaticProvider holds a fixed user id, settable at runtime. Used in tests
// and by hosts that manage sign-in themselves.
type StaticProvider struct {
	mu     sync.Mutex
	userID string
	hooks  []func(string)
}

func NewStaticProvider(userID string) *StaticProvider {
	return &StaticProvider{userID: userID}
}

func (p *StaticProvider) CurrentUserID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.userID == "" {
		return "", common.ErrorNotAuthenticated
	}
	return p.userID, nil
}

func (p *StaticProvider) OnAuthChange(fn func(string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, fn)
}

// SetUserID switches the signed-in user and notifies hooks.
func (p *StaticProvider) SetUserID(userID string) {
	p.mu.Lock()
	p.userID = userID
	hooks := make([]func(string), len(p.hooks))
	copy(hooks, p.hooks)
	p.mu.Unlock()

	for _, fn := range hooks {
		fn(userID)
	}
}
