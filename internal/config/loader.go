// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. Scan environment for _SSM_PARAM suffix variables.
//  4. If APP_ENV != "local", resolve SSM parameters via the
//     SecretProvider and inject the resolved values back into the
//     environment.
//  5. Use envconfig to process struct tags and populate Config.
//  6. Validate the struct using go-playground/validator.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by Load to aid
// debugging. It wraps a ConfigErrorType and an underlying error.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ssmParamSuffix identifies SSM parameter pointer variables. For
// example, SENDGRID_API_KEY_SSM_PARAM points to the SSM path holding
// the SENDGRID_API_KEY secret.
const ssmParamSuffix = "_SSM_PARAM"

// localEnv is the APP_ENV value that bypasses SSM resolution.
const localEnv = "local"

// envLookup matches os.LookupEnv and allows injection for testing.
type envLookup func(key string) (string, bool)

// envSet matches os.Setenv and allows injection for testing.
type envSet func(key, value string) error

// environ matches os.Environ and allows injection for testing.
type environ func() []string

type loaderDeps struct {
	lookupEnv envLookup
	setEnv    envSet
	environ   environ
}

func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
		environ:   os.Environ,
	}
}

// Load loads and validates the digest job configuration.
//
// The provider is the SecretProvider used for SSM resolution in
// non-local environments; for local development it may be nil.
func Load(provider SecretProvider) (*Config, error) {
	return loadWithDeps(provider, defaultDeps())
}

func loadWithDeps(provider SecretProvider, deps loaderDeps) (*Config, error) {
	// Scheduled runs may execute in any host timezone; pin to UTC so
	// date handling is stable across environments.
	time.Local = time.UTC

	// godotenv silently succeeds if no .env file exists and never
	// overrides variables already present in the environment.
	_ = godotenv.Load()

	appEnv, _ := deps.lookupEnv("APP_ENV")
	if appEnv != localEnv {
		if err := resolveSSMParams(provider, deps); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}

// resolveSSMParams scans the environment for *_SSM_PARAM pointer
// variables, resolves their SSM paths through the provider, and injects
// the plaintext values back into the environment under the base name so
// envconfig picks them up.
func resolveSSMParams(provider SecretProvider, deps loaderDeps) error {
	// Map of SSM path -> target environment variable name.
	targets := make(map[string]string)
	var paths []string

	for _, kv := range deps.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasSuffix(key, ssmParamSuffix) || value == "" {
			continue
		}
		base := strings.TrimSuffix(key, ssmParamSuffix)

		// An explicit value in the environment wins over SSM.
		if existing, found := deps.lookupEnv(base); found && existing != "" {
			continue
		}

		targets[value] = base
		paths = append(paths, value)
	}

	if len(paths) == 0 {
		return nil
	}

	if provider == nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: "SSM parameters referenced but no secret provider configured",
		}
	}

	resolved, err := provider.GetParametersBatch(context.Background(), paths)
	if err != nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: "failed to resolve SSM parameters",
			Err:     err,
		}
	}

	for path, envName := range targets {
		value, ok := resolved[path]
		if !ok {
			return &ConfigError{
				Type:    ErrSSMResolution,
				Message: fmt.Sprintf("SSM parameter %q was not resolved", path),
			}
		}
		if err := deps.setEnv(envName, value); err != nil {
			return &ConfigError{
				Type:    ErrSSMResolution,
				Message: fmt.Sprintf("failed to inject resolved value for %s", envName),
				Err:     err,
			}
		}
	}

	return nil
}
