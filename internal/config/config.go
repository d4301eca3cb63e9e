// Package config defines the global configuration for the digest job.
// Configuration is loaded once at process start and is immutable
// thereafter; components receive the subsets they need by reference and
// never perform ambient environment lookups themselves.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
package config

import (
	"time"

	"arsdigest/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret
// type used for credentials to prevent accidental logging.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the digest job,
// populated once during process initialization and never modified.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Feed  FeedConfig
	Store StoreConfig
	Email EmailConfig
}

// FeedConfig holds the feed polling parameters.
type FeedConfig struct {
	// URL of the RSS feed to poll once per invocation.
	URL string `envconfig:"ARS_FEED_URL" validate:"required,url"`

	// HTTPTimeout bounds the feed fetch; the job has no other
	// cancellation mechanism, so a hung fetch would stall the run.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
}

// StoreConfig holds the embedded article store location.
type StoreConfig struct {
	// Path to the SQLite file. Created on first run.
	Path string `envconfig:"DB_PATH" validate:"required"`
}

// EmailConfig holds delivery credentials and addressing. Exactly one
// credential set is expected: the SendGrid API key takes priority over
// the AWS triple when both are present.
type EmailConfig struct {
	Recipient string `envconfig:"RECIPIENT_EMAIL" validate:"required,email"`
	FromAddr  string `envconfig:"FROM_EMAIL" validate:"required,email"`
	FromName  string `envconfig:"FROM_NAME" default:"Ars Digest"`
	Subject   string `envconfig:"DIGEST_SUBJECT" default:"Ars Technica Daily Digest"`

	// First backend: SendGrid v3 Mail Send API.
	SendGridAPIKey SecretString `envconfig:"SENDGRID_API_KEY"`

	// Second backend: AWS SES v2.
	AWSAccessKeyID     string       `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey SecretString `envconfig:"AWS_SECRET_ACCESS"`
	AWSRegion          string       `envconfig:"AWS_REGION" default:"us-east-1"`
}

// ConfigErrorType categorizes configuration loading failures to aid
// debugging.
type ConfigErrorType string

const (
	// ErrSSMResolution indicates a failure fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
