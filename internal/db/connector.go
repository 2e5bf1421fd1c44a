package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Connector opens a single PostgreSQL connection. Retrying is the caller's job:
// one Connect call is one attempt.
type Connector interface {
	Connect(ctx context.Context) (*pgx.Conn, error)
	String() string
}

// StandardConnector connects with the credentials in the connection string
// (or PGPASSWORD / ~/.pgpass, which pgx resolves).
type StandardConnector struct {
	target *Target
}

// NewStandardConnector creates a new StandardConnector.
func NewStandardConnector(target *Target) *StandardConnector {
	return &StandardConnector{target: target}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	cfg, err := c.target.ParseConfig()
	if err != nil {
		return nil, err
	}
	return connect(ctx, cfg)
}

func (c *StandardConnector) String() string {
	return c.target.String()
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the Target's AuthMethod.
func NewConnector(target *Target) (Connector, error) {
	switch target.AuthMethod {
	case "", AuthMethodStandard:
		return NewStandardConnector(target), nil
	case AuthMethodAWSIAM:
		return newAWSConnector(target)
	case AuthMethodGoogleIAM:
		return newGoogleConnector(target)
	case AuthMethodAzureEntraID:
		return newAzureConnector(target)
	default:
		_, err := ParseAuthMethod(string(target.AuthMethod))
		return nil, err
	}
}

// connect opens the connection and pings it.
func connect(ctx context.Context, cfg *pgx.ConnConfig) (*pgx.Conn, error) {
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close(context.WithoutCancel(ctx)) //nolint:errcheck
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}

	return conn, nil
}

// wrapConnectionError adds a short hint to raw pgx connection errors.
// The original error stays in the chain so classifiers still see it.
func wrapConnectionError(err error, host string, port uint16, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf("connection refused by %s (server not running or wrong port)", addr)
	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf("cannot resolve host %q", host)
	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for database %q (check PGPASSWORD or ~/.pgpass)", database)
	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist", database)
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf("connection to %s timed out", addr)
	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = "SSL/TLS negotiation failed (check sslmode and certificates)"
	case strings.Contains(errStr, "too many connections"):
		hint = fmt.Sprintf("too many connections to database %q", database)
	default:
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return fmt.Errorf("%s: %w", hint, err)
}
