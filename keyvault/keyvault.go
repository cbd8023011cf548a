// Package keyvault resolves Azure Key Vault references found in request
// header values.
package keyvault

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/jongio/httpio/logutil"
	"github.com/jongio/httpio/urlutil"
)

const (
	// Azure Key Vault naming constraints
	minVaultNameLength = 3
	maxVaultNameLength = 24

	vaultDomainSuffix = ".vault.azure.net"
)

var (
	kvRefSecretURIPattern = regexp.MustCompile(`^@Microsoft\.KeyVault\(SecretUri=(.+)\)$`)
	kvRefVaultNamePattern = regexp.MustCompile(`^@Microsoft\.KeyVault\(VaultName=([^;]+);SecretName=([^;)]+)(?:;SecretVersion=([^;)]+))?\)$`)
	kvRefAkvsPattern      = regexp.MustCompile(`^akvs://([^/]+)/([^/]+)/([^/]+)(?:/([^/]+))?$`)
)

var log = logutil.NewLogger("keyvault")

// SecretGetter is the subset of *azsecrets.Client the resolver uses.
type SecretGetter interface {
	GetSecret(ctx context.Context, name, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// ClientFactory builds a SecretGetter for a vault URL such as
// https://myvault.vault.azure.net.
type ClientFactory func(vaultURL string) (SecretGetter, error)

// Resolver resolves Key Vault references to secret values. Clients are
// created lazily per vault and reused.
type Resolver struct {
	newClient ClientFactory
	clients   map[string]SecretGetter
	mu        sync.RWMutex
}

// NewResolver builds a resolver that talks to Key Vault with cred.
func NewResolver(cred azcore.TokenCredential) *Resolver {
	return NewResolverWithFactory(func(vaultURL string) (SecretGetter, error) {
		return azsecrets.NewClient(vaultURL, cred, nil)
	})
}

// NewResolverWithFactory builds a resolver that obtains clients from factory.
func NewResolverWithFactory(factory ClientFactory) *Resolver {
	return &Resolver{
		newClient: factory,
		clients:   make(map[string]SecretGetter),
	}
}

// IsReference reports whether the value matches a supported reference format.
func IsReference(value string) bool {
	normalized := normalizeReferenceValue(value)
	return kvRefSecretURIPattern.MatchString(normalized) ||
		kvRefVaultNamePattern.MatchString(normalized) ||
		kvRefAkvsPattern.MatchString(normalized)
}

// HasReferences reports whether any header value is a Key Vault reference.
func HasReferences(headers map[string]string) bool {
	for _, v := range headers {
		if IsReference(v) {
			return true
		}
	}
	return false
}

// ResolveReference resolves a single Key Vault reference to its secret value.
func (r *Resolver) ResolveReference(ctx context.Context, reference string) (string, error) {
	reference = normalizeReferenceValue(reference)

	if matches := kvRefSecretURIPattern.FindStringSubmatch(reference); matches != nil {
		vaultURL, secretName, version, err := parseSecretURI(strings.TrimSpace(matches[1]))
		if err != nil {
			return "", err
		}
		return r.getSecret(ctx, vaultURL, secretName, version)
	}

	if matches := kvRefVaultNamePattern.FindStringSubmatch(reference); matches != nil {
		return r.resolveByVaultName(ctx, matches[1], matches[2], matches[3])
	}

	if matches := kvRefAkvsPattern.FindStringSubmatch(reference); matches != nil {
		return r.resolveByVaultName(ctx, matches[2], matches[3], matches[4])
	}

	return "", fmt.Errorf("invalid Key Vault reference format")
}

// ResolveHeaders returns a copy of headers with every Key Vault reference
// replaced by its secret value. Values that are not references are copied
// unchanged. The first failure aborts resolution; the error names the header
// but never the secret.
func (r *Resolver) ResolveHeaders(ctx context.Context, headers map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(headers))
	for name, value := range headers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !IsReference(value) {
			resolved[name] = value
			continue
		}

		secret, err := r.ResolveReference(ctx, value)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve Key Vault reference for header %s: %w", name, err)
		}
		log.Debug("resolved header from Key Vault", "header", name)
		resolved[name] = secret
	}
	return resolved, nil
}

func (r *Resolver) getClient(vaultURL string) (SecretGetter, error) {
	r.mu.RLock()
	if client, ok := r.clients[vaultURL]; ok {
		r.mu.RUnlock()
		return client, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[vaultURL]; ok {
		return client, nil
	}

	client, err := r.newClient(vaultURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	r.clients[vaultURL] = client
	return client, nil
}

func (r *Resolver) resolveByVaultName(ctx context.Context, vaultName, secretName, version string) (string, error) {
	if err := validateVaultName(vaultName); err != nil {
		return "", err
	}
	vaultURL, err := validateVaultURL("https://" + vaultName + vaultDomainSuffix)
	if err != nil {
		return "", err
	}
	return r.getSecret(ctx, vaultURL, secretName, version)
}

func (r *Resolver) getSecret(ctx context.Context, vaultURL, secretName, version string) (string, error) {
	client, err := r.getClient(vaultURL)
	if err != nil {
		return "", err
	}

	resp, err := client.GetSecret(ctx, secretName, version, nil)
	if err != nil {
		// Vault and secret names stay out of the error; it may end up in logs.
		return "", fmt.Errorf("failed to get secret from Key Vault: %w", err)
	}

	if resp.Value == nil {
		return "", fmt.Errorf("secret has no value")
	}

	return *resp.Value, nil
}

// parseSecretURI splits https://<vault>.vault.azure.net/secrets/<name>[/<version>].
func parseSecretURI(secretURI string) (vaultURL, secretName, version string, err error) {
	u, err := urlutil.Parse(secretURI)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid secret URI: %w", err)
	}

	segments := strings.Split(strings.Trim(u.URL().Path, "/"), "/")
	if len(segments) < 2 || len(segments) > 3 || segments[0] != "secrets" || segments[1] == "" {
		return "", "", "", fmt.Errorf("invalid secret URI format")
	}
	if len(segments) == 3 {
		version = segments[2]
	}

	vaultURL, err = validateVaultURL(u.Scheme().String() + "://" + u.Host())
	if err != nil {
		return "", "", "", err
	}
	return vaultURL, segments[1], version, nil
}

func normalizeReferenceValue(value string) string {
	normalized := strings.TrimSpace(value)
	if len(normalized) < 2 {
		return normalized
	}

	first := normalized[0]
	last := normalized[len(normalized)-1]

	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		normalized = strings.TrimSpace(normalized[1 : len(normalized)-1])
	}

	return normalized
}

// validateVaultURL gates vaultURL through the https-only URL policy and the
// Key Vault domain, returning the canonical vault URL.
func validateVaultURL(vaultURL string) (string, error) {
	u, err := urlutil.Policy{HTTPSOnly: true}.Check(vaultURL)
	if err != nil {
		return "", fmt.Errorf("invalid vault URI: %w", err)
	}
	if !u.IsTLS() {
		return "", fmt.Errorf("vault URI must use https scheme")
	}
	if u.Port() != urlutil.DefaultHTTPSPort {
		return "", fmt.Errorf("vault URI must not specify a port")
	}

	host := strings.ToLower(u.Host())
	if !strings.HasSuffix(host, vaultDomainSuffix) {
		return "", fmt.Errorf("vault URI must be in *%s domain", vaultDomainSuffix)
	}
	if err := validateVaultName(strings.TrimSuffix(host, vaultDomainSuffix)); err != nil {
		return "", err
	}

	return "https://" + host, nil
}

func validateVaultName(vaultName string) error {
	if len(vaultName) < minVaultNameLength || len(vaultName) > maxVaultNameLength {
		return fmt.Errorf("vault name must be %d-%d characters, got %d", minVaultNameLength, maxVaultNameLength, len(vaultName))
	}

	for i, ch := range vaultName {
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') && ch != '-' {
			return fmt.Errorf("vault name contains invalid character: %c", ch)
		}
		if i == 0 && ch >= '0' && ch <= '9' {
			return fmt.Errorf("vault name cannot start with a number")
		}
	}

	return nil
}
