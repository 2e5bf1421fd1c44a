package probe

import (
	"context"
	"fmt"

	"github.com/vvka-141/retrier/internal/db"
	"github.com/vvka-141/retrier/internal/retry"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// PostgresProbe succeeds once a connection can be opened and pinged.
type PostgresProbe struct {
	connector db.Connector
}

// NewPostgresProbe creates a probe that connects through connector.
func NewPostgresProbe(connector db.Connector) *PostgresProbe {
	return &PostgresProbe{connector: connector}
}

func (p *PostgresProbe) Name() string {
	return p.connector.String()
}

func (p *PostgresProbe) Check(ctx context.Context) error {
	conn, err := p.connector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", retrier.ErrConnectionFailed, err)
	}
	return conn.Close(context.WithoutCancel(ctx))
}

func (p *PostgresProbe) Classifier() retrier.ErrorClassifier {
	return retry.NewPostgreSQLErrorClassifier()
}
