package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/planloop/planloop/internal/common"
)

// TokenProvider derives the current user id from a stored ID token issued by
// the identity backend. The backend already verified the signature when it
// issued the token; locally we only decode the claims and honor expiry.
type TokenProvider struct {
	tokenFile string

	mu     sync.Mutex
	userID string
	expiry time.Time
	hooks  []func(string)
}

func NewTokenProvider(tokenFile string) *TokenProvider {
	return &TokenProvider{tokenFile: tokenFile}
}

func (p *TokenProvider) CurrentUserID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.userID != "" && time.Now().Before(p.expiry) {
		return p.userID, nil
	}

	data, err := os.ReadFile(p.tokenFile)
	if err != nil {
		return "", common.ErrorNotAuthenticated
	}

	userID, expiry, err := decodeToken(strings.TrimSpace(string(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorNotAuthenticated, err)
	}
	if !expiry.IsZero() && time.Now().After(expiry) {
		return "", common.ErrorNotAuthenticated
	}

	p.userID = userID
	p.expiry = expiry
	return userID, nil
}

func (p *TokenProvider) OnAuthChange(fn func(string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, fn)
}

// decodeToken extracts the subject and expiry claims without verifying the
// signature.
func decodeToken(token string) (string, time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", time.Time{}, fmt.Errorf("token has no subject")
	}

	var expiry time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiry = exp.Time
	}

	return sub, expiry, nil
}
