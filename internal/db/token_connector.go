package db

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// TokenBasedConnector uses a short-lived cloud token as the PostgreSQL password.
// A fresh token is requested on every Connect, so a retried attempt never
// reuses an expired one.
type TokenBasedConnector struct {
	target        *Target
	tokenProvider TokenProvider
	providerName  string
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(target *Target, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	return &TokenBasedConnector{
		target:        target,
		tokenProvider: tokenProvider,
		providerName:  providerName,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	cfg, err := c.target.ParseConfig()
	if err != nil {
		return nil, err
	}

	token, _, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
	}
	cfg.Password = token

	return connect(ctx, cfg)
}

func (c *TokenBasedConnector) String() string {
	return fmt.Sprintf("%s via %s", c.target, c.tokenProvider)
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(target *Target) (Connector, error) {
	cfg, err := target.ParseConfig()
	if err != nil {
		return nil, err
	}

	endpoint := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, target.AWSRegion, cfg.User)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(target, tokenProvider, "AWS IAM"), nil
}

// newAzureConnector uses Service Principal auth when tenant, client and secret
// are all set, and the DefaultAzureCredential chain otherwise.
func newAzureConnector(target *Target) (Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if target.AzureTenantID != "" && target.AzureClientID != "" && target.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			target.AzureTenantID,
			target.AzureClientID,
			target.AzureClientSecret,
		)
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, err
	}

	return NewTokenBasedConnector(target, tokenProvider, "Azure"), nil
}
