package keyvault

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type secretCall struct {
	vaultURL, name, version string
}

// fakeVaults serves secrets keyed by vault URL and secret name.
type fakeVaults struct {
	mu       sync.Mutex
	secrets  map[string]map[string]string
	calls    []secretCall
	created  map[string]int
	getErr   error
	nilValue bool
}

type fakeClient struct {
	vaultURL string
	vaults   *fakeVaults
}

func (c *fakeClient) GetSecret(_ context.Context, name, version string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	c.vaults.mu.Lock()
	defer c.vaults.mu.Unlock()
	c.vaults.calls = append(c.vaults.calls, secretCall{c.vaultURL, name, version})

	if c.vaults.getErr != nil {
		return azsecrets.GetSecretResponse{}, c.vaults.getErr
	}
	var resp azsecrets.GetSecretResponse
	if c.vaults.nilValue {
		return resp, nil
	}
	value, ok := c.vaults.secrets[c.vaultURL][name]
	if !ok {
		return resp, errors.New("SecretNotFound")
	}
	resp.Value = &value
	return resp, nil
}

func newFakeResolver(secrets map[string]map[string]string) (*Resolver, *fakeVaults) {
	vaults := &fakeVaults{secrets: secrets, created: map[string]int{}}
	r := NewResolverWithFactory(func(vaultURL string) (SecretGetter, error) {
		vaults.mu.Lock()
		vaults.created[vaultURL]++
		vaults.mu.Unlock()
		return &fakeClient{vaultURL: vaultURL, vaults: vaults}, nil
	})
	return r, vaults
}

func TestIsReference(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"SecretUri with version", "@Microsoft.KeyVault(SecretUri=https://myvault.vault.azure.net/secrets/my-secret/abc123)", true},
		{"SecretUri without version", "@Microsoft.KeyVault(SecretUri=https://myvault.vault.azure.net/secrets/my-secret)", true},
		{"VaultName with version", "@Microsoft.KeyVault(VaultName=myvault;SecretName=my-secret;SecretVersion=abc123)", true},
		{"VaultName without version", "@Microsoft.KeyVault(VaultName=myvault;SecretName=my-secret)", true},
		{"akvs with version", "akvs://12345678-1234-1234-1234-123456789abc/myvault/my-secret/abc123", true},
		{"akvs without version", "akvs://12345678-1234-1234-1234-123456789abc/myvault/my-secret", true},
		{"double quoted", "\"@Microsoft.KeyVault(SecretUri=https://myvault.vault.azure.net/secrets/my-secret)\"", true},
		{"surrounding whitespace", "  @Microsoft.KeyVault(VaultName=myvault;SecretName=my-secret)  ", true},
		{"plain value", "Bearer abc", false},
		{"empty", "", false},
		{"missing closing paren", "@Microsoft.KeyVault(SecretUri=https://myvault.vault.azure.net/secrets/my-secret", false},
		{"akvs missing parts", "akvs://guid/vault", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReference(tt.value))
		})
	}
}

func TestNormalizeReferenceValue(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"'akvs://s/v/n'", "akvs://s/v/n"},
		{"  \"akvs://s/v/n\"  ", "akvs://s/v/n"},
		{"\"akvs://s/v/n'", "\"akvs://s/v/n'"},
		{"a", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeReferenceValue(tt.value), tt.value)
	}
}

func TestResolveReference(t *testing.T) {
	r, vaults := newFakeResolver(map[string]map[string]string{
		"https://myvault.vault.azure.net": {"api-key": "s3cret"},
	})
	ctx := context.Background()

	tests := []struct {
		name        string
		reference   string
		wantVersion string
	}{
		{"SecretUri", "@Microsoft.KeyVault(SecretUri=https://myvault.vault.azure.net/secrets/api-key)", ""},
		{"SecretUri with version", "@Microsoft.KeyVault(SecretUri=https://MyVault.vault.azure.net/secrets/api-key/v2)", "v2"},
		{"VaultName", "@Microsoft.KeyVault(VaultName=myvault;SecretName=api-key;SecretVersion=v3)", "v3"},
		{"akvs", "akvs://12345678-1234-1234-1234-123456789abc/myvault/api-key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveReference(ctx, tt.reference)
			require.NoError(t, err)
			assert.Equal(t, "s3cret", got)

			last := vaults.calls[len(vaults.calls)-1]
			assert.Equal(t, "https://myvault.vault.azure.net", last.vaultURL)
			assert.Equal(t, "api-key", last.name)
			assert.Equal(t, tt.wantVersion, last.version)
		})
	}

	assert.Equal(t, 1, vaults.created["https://myvault.vault.azure.net"], "client should be cached per vault")
}

func TestResolveReference_Errors(t *testing.T) {
	r, vaults := newFakeResolver(nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		reference string
	}{
		{"missing /secrets/", "@Microsoft.KeyVault(SecretUri=https://myvault.vault.azure.net/invalid/secret)"},
		{"plain http", "@Microsoft.KeyVault(SecretUri=http://myvault.vault.azure.net/secrets/name)"},
		{"localhost http", "@Microsoft.KeyVault(SecretUri=http://localhost/secrets/name)"},
		{"wrong domain", "@Microsoft.KeyVault(SecretUri=https://vault.wrong.com/secrets/name)"},
		{"explicit port", "@Microsoft.KeyVault(SecretUri=https://myvault.vault.azure.net:8443/secrets/name)"},
		{"not a URL", "@Microsoft.KeyVault(SecretUri=not a url)"},
		{"vault name too short", "@Microsoft.KeyVault(VaultName=ab;SecretName=x)"},
		{"vault name starts with digit", "akvs://sub/1vault/name"},
		{"vault name bad char", "@Microsoft.KeyVault(VaultName=my_vault;SecretName=x)"},
		{"unknown format", "@Microsoft.KeyVault(Invalid=format)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ResolveReference(ctx, tt.reference)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, vaults.calls, "rejected references must never reach a vault")
}

func TestResolveReference_ClientFailures(t *testing.T) {
	ctx := context.Background()
	ref := "akvs://sub/myvault/name"

	r, vaults := newFakeResolver(nil)
	vaults.getErr = errors.New("Forbidden")
	_, err := r.ResolveReference(ctx, ref)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Forbidden")
	assert.NotContains(t, err.Error(), "myvault")

	r, vaults = newFakeResolver(nil)
	vaults.nilValue = true
	_, err = r.ResolveReference(ctx, ref)
	assert.EqualError(t, err, "secret has no value")

	r = NewResolverWithFactory(func(string) (SecretGetter, error) { return nil, errors.New("no credential") })
	_, err = r.ResolveReference(ctx, ref)
	assert.ErrorContains(t, err, "failed to create Key Vault client")
}

func TestResolveHeaders(t *testing.T) {
	r, _ := newFakeResolver(map[string]map[string]string{
		"https://myvault.vault.azure.net": {"token": "abc", "tenant": "t1"},
	})

	in := map[string]string{
		"Authorization": "akvs://sub/myvault/token",
		"X-Tenant":      "'@Microsoft.KeyVault(VaultName=myvault;SecretName=tenant)'",
		"Accept":        "application/json",
	}
	require.True(t, HasReferences(in))

	out, err := r.ResolveHeaders(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Authorization": "abc",
		"X-Tenant":      "t1",
		"Accept":        "application/json",
	}, out)
	assert.Equal(t, "akvs://sub/myvault/token", in["Authorization"], "input map must not be modified")
	assert.False(t, HasReferences(out))
}

func TestResolveHeaders_Failure(t *testing.T) {
	r, _ := newFakeResolver(map[string]map[string]string{})

	_, err := r.ResolveHeaders(context.Background(), map[string]string{"Authorization": "akvs://sub/myvault/missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header Authorization")
}

func TestResolveHeaders_Canceled(t *testing.T) {
	r, _ := newFakeResolver(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveHeaders(ctx, map[string]string{"Accept": "*/*"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateVaultURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://myvault.vault.azure.net", "https://myvault.vault.azure.net", false},
		{"https://MyVault.vault.azure.net/", "https://myvault.vault.azure.net", false},
		{"", "", true},
		{"https://.vault.azure.net", "", true},
		{"ftp://myvault.vault.azure.net", "", true},
		{"https://myvault.vault.azure.com", "", true},
		{"  https://myvault.vault.azure.net  ", "https://myvault.vault.azure.net", false},
		{"http://myvault.vault.azure.net", "", true},
		{"https://myvault.vault.azure.net:8443", "", true},
		{"https://", "", true},
	}
	for _, tt := range tests {
		got, err := validateVaultURL(tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}
}
