package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "root-token", r.Header.Get("X-Vault-Token"))
		assert.Equal(t, "/v1/secret/data/bloodhub/api", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testVaultConfig(addr string) VaultConfig {
	return VaultConfig{
		Enabled:   true,
		Addr:      addr,
		Token:     "root-token",
		Mount:     "secret",
		Path:      "bloodhub/api",
		KVVersion: 2,
		Timeout:   time.Second,
	}
}

func TestApplyVaultSecrets(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		result, err := ApplyVaultSecrets(context.Background(), VaultConfig{})
		require.NoError(t, err)
		assert.False(t, result.Enabled)
	})

	t.Run("incomplete config fails", func(t *testing.T) {
		_, err := ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: true, Addr: "http://vault"})
		assert.Error(t, err)
	})

	t.Run("exports known keys only", func(t *testing.T) {
		srv, _ := vaultServer(t, http.StatusOK, `{"data":{"data":{
			"DB_PASSWORD":"pg-secret",
			"AUTH_SIGNING_KEY":"jwt-secret",
			"UNRELATED":"ignored"
		}}}`)
		t.Setenv("DB_PASSWORD", "")
		t.Setenv("AUTH_SIGNING_KEY", "already-set")
		t.Setenv("UNRELATED", "")

		result, err := ApplyVaultSecrets(context.Background(), testVaultConfig(srv.URL))
		require.NoError(t, err)

		assert.Equal(t, []string{"DB_PASSWORD"}, result.Loaded)
		assert.Equal(t, []string{"AUTH_SIGNING_KEY"}, result.Skipped)
		assert.Equal(t, "pg-secret", os.Getenv("DB_PASSWORD"))
		assert.Equal(t, "already-set", os.Getenv("AUTH_SIGNING_KEY"))
		assert.Empty(t, os.Getenv("UNRELATED"))
	})

	t.Run("overwrite replaces existing values", func(t *testing.T) {
		srv, _ := vaultServer(t, http.StatusOK, `{"data":{"data":{"AUTH_SIGNING_KEY":"jwt-secret"}}}`)
		t.Setenv("AUTH_SIGNING_KEY", "already-set")

		cfg := testVaultConfig(srv.URL)
		cfg.Overwrite = true
		result, err := ApplyVaultSecrets(context.Background(), cfg)
		require.NoError(t, err)

		assert.Equal(t, []string{"AUTH_SIGNING_KEY"}, result.Loaded)
		assert.Equal(t, "jwt-secret", os.Getenv("AUTH_SIGNING_KEY"))
	})

	t.Run("retries failed fetches", func(t *testing.T) {
		srv, calls := vaultServer(t, http.StatusServiceUnavailable, `sealed`)

		_, err := ApplyVaultSecrets(context.Background(), testVaultConfig(srv.URL))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("does not retry a rejected token", func(t *testing.T) {
		srv, calls := vaultServer(t, http.StatusForbidden, `{"errors":["permission denied"]}`)

		_, err := ApplyVaultSecrets(context.Background(), testVaultConfig(srv.URL))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})
}

func TestBuildVaultURL(t *testing.T) {
	url, err := buildVaultURL("http://vault:8200/", "/kv/", "/app", 1)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/kv/app", url)

	url, err = buildVaultURL("http://vault:8200", "secret", "app", 2)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/data/app", url)

	_, err = buildVaultURL("", "secret", "app", 2)
	assert.Error(t, err)
}

func TestStringifyVaultValue(t *testing.T) {
	assert.Equal(t, "x", stringifyVaultValue("x"))
	assert.Equal(t, "", stringifyVaultValue(nil))
	assert.Equal(t, "true", stringifyVaultValue(true))
	assert.Equal(t, "6379", stringifyVaultValue(float64(6379)))
	assert.Equal(t, `["a"]`, stringifyVaultValue([]interface{}{"a"}))
}
