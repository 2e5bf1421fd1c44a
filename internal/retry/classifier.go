package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// ClassifierFunc adapts a plain function to retrier.ErrorClassifier.
type ClassifierFunc func(err error) bool

// IsTransient calls f(err).
func (f ClassifierFunc) IsTransient(err error) bool {
	return f(err)
}

// AlwaysTransient returns a classifier that retries every non-nil error.
func AlwaysTransient() retrier.ErrorClassifier {
	return ClassifierFunc(func(err error) bool { return err != nil })
}

// NetworkErrorClassifier treats timeouts, refused or reset connections and
// unreachable hosts as transient. Unknown hosts are fatal.
type NetworkErrorClassifier struct{}

// NewNetworkErrorClassifier creates a new network error classifier.
func NewNetworkErrorClassifier() *NetworkErrorClassifier {
	return &NetworkErrorClassifier{}
}

// IsTransient determines if a network error is temporary and retryable.
func (c *NetworkErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// A per-attempt deadline is transient; the caller's own cancellation is handled by the executor.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.ENETUNREACH,
		syscall.EHOSTUNREACH,
		syscall.EPIPE,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return matchesTransientMessage(err)
}

// transientPatterns are lower-case fragments of driver and dialer messages
// that carry no typed error.
var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"connection pool exhausted",
	"the database system is starting up",
	"the database system is shutting down",
}

func matchesTransientMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// PostgreSQL SQLSTATE classes and codes for transient conditions
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
var (
	transientPgClasses = []string{
		"08", // Connection Exception
		"53", // Insufficient Resources
		"57", // Operator Intervention (admin shutdown, crash shutdown, cannot connect now)
	}

	transientPgCodes = map[string]struct{}{
		"40001": {}, // serialization_failure
		"40P01": {}, // deadlock_detected
		"55P03": {}, // lock_not_available
	}
)

// PostgreSQLErrorClassifier implements retrier.ErrorClassifier for PostgreSQL errors.
// Server errors are judged by SQLSTATE; everything else falls back to the
// network classifier.
type PostgreSQLErrorClassifier struct {
	network *NetworkErrorClassifier
}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{network: NewNetworkErrorClassifier()}
}

// IsTransient determines if an error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return IsTransientSQLState(pgErr.Code)
	}

	return c.network.IsTransient(err)
}

// IsTransientSQLState reports whether a SQLSTATE code describes a condition worth retrying.
func IsTransientSQLState(code string) bool {
	if _, ok := transientPgCodes[code]; ok {
		return true
	}
	for _, class := range transientPgClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	return false
}
