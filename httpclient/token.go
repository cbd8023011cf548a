package httpclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// TokenProvider supplies bearer tokens for a scope.
type TokenProvider interface {
	GetToken(ctx context.Context, scope string) (string, error)
}

// StaticTokenProvider returns the same token for every scope.
type StaticTokenProvider struct {
	Token string
}

// GetToken returns the configured token.
func (p StaticTokenProvider) GetToken(ctx context.Context, scope string) (string, error) {
	if p.Token == "" {
		return "", errors.New("no token configured")
	}
	return p.Token, nil
}

// MockTokenProvider is a mock implementation of TokenProvider for testing.
type MockTokenProvider struct {
	Token string
	Error error
	// Scopes records every requested scope.
	Scopes []string
	mu     sync.Mutex
}

// GetToken returns the configured token or error.
func (m *MockTokenProvider) GetToken(ctx context.Context, scope string) (string, error) {
	m.mu.Lock()
	m.Scopes = append(m.Scopes, scope)
	m.mu.Unlock()
	if m.Error != nil {
		return "", m.Error
	}
	return m.Token, nil
}

// tokenRefreshMargin is how long before expiry a cached token is replaced.
const tokenRefreshMargin = 5 * time.Minute

// CredentialTokenProvider adapts an Azure credential and caches tokens per
// scope until shortly before they expire.
//
// SECURITY: never log the returned token.
type CredentialTokenProvider struct {
	cred  azcore.TokenCredential
	mu    sync.Mutex
	cache map[string]azcore.AccessToken
	now   func() time.Time
}

// NewCredentialTokenProvider wraps cred.
func NewCredentialTokenProvider(cred azcore.TokenCredential) *CredentialTokenProvider {
	return &CredentialTokenProvider{
		cred:  cred,
		cache: make(map[string]azcore.AccessToken),
		now:   time.Now,
	}
}

// NewDefaultAzureTokenProvider uses DefaultAzureCredential (environment,
// managed identity, Azure CLI and so on).
func NewDefaultAzureTokenProvider() (*CredentialTokenProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return NewCredentialTokenProvider(cred), nil
}

// GetToken returns a cached or freshly acquired token for scope.
func (p *CredentialTokenProvider) GetToken(ctx context.Context, scope string) (string, error) {
	if scope == "" {
		return "", errors.New("token scope is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if tok, ok := p.cache[scope]; ok && p.now().Add(tokenRefreshMargin).Before(tok.ExpiresOn) {
		return tok.Token, nil
	}

	tok, err := p.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return "", err
	}
	p.cache[scope] = tok
	return tok.Token, nil
}
