package probe

import (
	"context"
	"fmt"
	"net"

	"github.com/vvka-141/retrier/internal/retry"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// TCPProbe succeeds once a TCP connection to Address is accepted.
type TCPProbe struct {
	Address string
	dialer  net.Dialer
}

// NewTCPProbe validates address (host:port) and creates the probe.
func NewTCPProbe(address string) (*TCPProbe, error) {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, &retrier.ConfigError{Field: "address", Value: address, Reason: "must be host:port"}
	}
	return &TCPProbe{Address: address}, nil
}

func (p *TCPProbe) Name() string {
	return "tcp://" + p.Address
}

func (p *TCPProbe) Check(ctx context.Context) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return fmt.Errorf("%w: %w", retrier.ErrConnectionFailed, err)
	}
	return conn.Close()
}

func (p *TCPProbe) Classifier() retrier.ErrorClassifier {
	return retry.NewNetworkErrorClassifier()
}
