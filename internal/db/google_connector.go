package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
)

// GoogleCloudSQLConnector connects to Cloud SQL with IAM database authentication
// through the Cloud SQL Go Connector. A dialer is created per Connect and closed
// together with the connection.
type GoogleCloudSQLConnector struct {
	target *Target
}

// NewGoogleCloudSQLConnector creates a connector for Google Cloud SQL IAM authentication.
func NewGoogleCloudSQLConnector(target *Target) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{target: target}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgx.Conn, error) {
	cfg, err := c.target.ParseConfig()
	if err != nil {
		return nil, err
	}

	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	instance := c.target.GoogleInstance
	cfg.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	cfg.TLSConfig = nil
	cfg.Fallbacks = nil

	conn, err := connect(ctx, cfg)
	if err != nil {
		dialer.Close()
		return nil, err
	}

	// The probe only pings and closes, so the dialer can go as soon as the
	// handshake is done; the established net.Conn stays usable.
	dialer.Close()
	return conn, nil
}

func (c *GoogleCloudSQLConnector) String() string {
	return fmt.Sprintf("cloudsql(%s)", c.target.GoogleInstance)
}

// newGoogleConnector validates the Cloud SQL specific fields.
func newGoogleConnector(target *Target) (Connector, error) {
	if target.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance)")
	}

	cfg, err := target.ParseConfig()
	if err != nil {
		return nil, err
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a database user")
	}

	return NewGoogleCloudSQLConnector(target), nil
}
