package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// AuthMethod represents the type of authentication to use.
type AuthMethod string

const (
	AuthMethodStandard     AuthMethod = "standard"
	AuthMethodAWSIAM       AuthMethod = "aws"
	AuthMethodAzureEntraID AuthMethod = "azure"
	AuthMethodGoogleIAM    AuthMethod = "google"
)

// ParseAuthMethod accepts the CLI spelling of an auth method. Empty means standard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch m := AuthMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "", AuthMethodStandard:
		return AuthMethodStandard, nil
	case AuthMethodAWSIAM, AuthMethodAzureEntraID, AuthMethodGoogleIAM:
		return m, nil
	default:
		return "", &retrier.ConfigError{
			Field:  "auth_method",
			Value:  s,
			Reason: "must be one of standard, aws, azure, google",
		}
	}
}

// Target describes the PostgreSQL server a probe connects to.
type Target struct {
	ConnString string
	AuthMethod AuthMethod

	AWSRegion string

	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// ParseConfig parses ConnString with pgx, which also applies the PG* environment variables.
func (t *Target) ParseConfig() (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(t.ConnString)
	if err != nil {
		return nil, &retrier.ConfigError{
			Field:  "connection_string",
			Value:  redact(t.ConnString),
			Reason: "is not a valid PostgreSQL connection string: " + err.Error(),
		}
	}
	return cfg, nil
}

// String describes the target without credentials.
func (t *Target) String() string {
	cfg, err := pgx.ParseConfig(t.ConnString)
	if err != nil {
		return fmt.Sprintf("postgres(%s)", t.AuthMethod)
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s (%s)", cfg.User, cfg.Host, cfg.Port, cfg.Database, t.AuthMethod)
}

// redact hides the password in URL-style connection strings.
func redact(connString string) string {
	at := strings.LastIndex(connString, "@")
	scheme := strings.Index(connString, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return connString
	}

	userInfo := connString[scheme+3 : at]
	if colon := strings.Index(userInfo, ":"); colon >= 0 {
		return connString[:scheme+3] + userInfo[:colon] + ":***" + connString[at:]
	}
	return connString
}
