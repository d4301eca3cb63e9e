package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv populates the minimum configuration for a valid load.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("ARS_FEED_URL", "https://feeds.arstechnica.com/arstechnica/index")
	t.Setenv("DB_PATH", "/tmp/digest.db")
	t.Setenv("RECIPIENT_EMAIL", "reader@example.com")
	t.Setenv("FROM_EMAIL", "digest@example.com")

	// Pin values the host environment might otherwise leak into.
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://feeds.arstechnica.com/arstechnica/index", cfg.Feed.URL)
	assert.Equal(t, "/tmp/digest.db", cfg.Store.Path)
	assert.Equal(t, "Ars Technica Daily Digest", cfg.Email.Subject)
	assert.Equal(t, "us-east-1", cfg.Email.AWSRegion)
	assert.Equal(t, "30s", cfg.Feed.HTTPTimeout.String())
}

func TestLoad_Credentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SENDGRID_API_KEY", "SG.key")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA123")
	t.Setenv("AWS_SECRET_ACCESS", "shhh")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "SG.key", cfg.Email.SendGridAPIKey.Unmask())
	assert.Equal(t, "AKIA123", cfg.Email.AWSAccessKeyID)
	assert.Equal(t, "shhh", cfg.Email.AWSSecretAccessKey.Unmask())
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RECIPIENT_EMAIL", "")

	_, err := Load(nil)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrValidation, cfgErr.Type)
}

func TestLoad_InvalidEmail(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RECIPIENT_EMAIL", "not-an-address")

	_, err := Load(nil)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrValidation, cfgErr.Type)
}

func TestConfigErrorFormatting(t *testing.T) {
	plain := &ConfigError{Type: ErrValidation, Message: "configuration validation failed"}
	assert.Equal(t, "[VALIDATION_FAILED] configuration validation failed", plain.Error())

	cause := errors.New("boom")
	wrapped := &ConfigError{Type: ErrSSMResolution, Message: "failed to resolve SSM parameters", Err: cause}
	assert.Equal(t, "[SSM_FAILURE] failed to resolve SSM parameters: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

// fakeSecretProvider implements SecretProvider for loader tests.
type fakeSecretProvider struct {
	values map[string]string
	err    error
	calls  [][]string
}

func (f *fakeSecretProvider) GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error) {
	f.calls = append(f.calls, keys)
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

func ssmDeps(env map[string]string) (loaderDeps, map[string]string) {
	injected := make(map[string]string)
	return loaderDeps{
		lookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		setEnv: func(key, value string) error {
			injected[key] = value
			return nil
		},
		environ: func() []string {
			var out []string
			for k, v := range env {
				out = append(out, k+"="+v)
			}
			return out
		},
	}, injected
}

func TestResolveSSMParams_InjectsValues(t *testing.T) {
	deps, injected := ssmDeps(map[string]string{
		"SENDGRID_API_KEY_SSM_PARAM": "/digest/sendgrid-key",
	})
	provider := &fakeSecretProvider{
		values: map[string]string{"/digest/sendgrid-key": "SG.resolved"},
	}

	require.NoError(t, resolveSSMParams(provider, deps))
	assert.Equal(t, "SG.resolved", injected["SENDGRID_API_KEY"])
	require.Len(t, provider.calls, 1)
	assert.Equal(t, []string{"/digest/sendgrid-key"}, provider.calls[0])
}

func TestResolveSSMParams_ExplicitValueWins(t *testing.T) {
	deps, injected := ssmDeps(map[string]string{
		"SENDGRID_API_KEY_SSM_PARAM": "/digest/sendgrid-key",
		"SENDGRID_API_KEY":           "SG.from-env",
	})
	provider := &fakeSecretProvider{}

	require.NoError(t, resolveSSMParams(provider, deps))
	assert.Empty(t, injected)
	assert.Empty(t, provider.calls, "no SSM call when the value is already set")
}

func TestResolveSSMParams_NoPointers(t *testing.T) {
	deps, _ := ssmDeps(map[string]string{"DB_PATH": "/tmp/digest.db"})

	// Provider may be nil when nothing references SSM.
	require.NoError(t, resolveSSMParams(nil, deps))
}

func TestResolveSSMParams_ProviderFailure(t *testing.T) {
	deps, _ := ssmDeps(map[string]string{
		"SENDGRID_API_KEY_SSM_PARAM": "/digest/sendgrid-key",
	})
	provider := &fakeSecretProvider{err: errors.New("throttled")}

	err := resolveSSMParams(provider, deps)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrSSMResolution, cfgErr.Type)
}

func TestResolveSSMParams_MissingProvider(t *testing.T) {
	deps, _ := ssmDeps(map[string]string{
		"SENDGRID_API_KEY_SSM_PARAM": "/digest/sendgrid-key",
	})

	err := resolveSSMParams(nil, deps)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrSSMResolution, cfgErr.Type)
}
