package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/vvka-141/retrier/pkg/retrier"
)

func TestPostgreSQLErrorClassifier_IsTransient_SQLState(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		code        string
		isTransient bool
	}{
		// Transient
		{code: "08000", isTransient: true}, // connection_exception
		{code: "08001", isTransient: true}, // sqlclient_unable_to_establish_sqlconnection
		{code: "08006", isTransient: true}, // connection_failure
		{code: "53000", isTransient: true}, // insufficient_resources
		{code: "53300", isTransient: true}, // too_many_connections
		{code: "40001", isTransient: true}, // serialization_failure
		{code: "40P01", isTransient: true}, // deadlock_detected
		{code: "55P03", isTransient: true}, // lock_not_available
		{code: "57P01", isTransient: true}, // admin_shutdown
		{code: "57P03", isTransient: true}, // cannot_connect_now

		// Fatal
		{code: "42601", isTransient: false}, // syntax_error
		{code: "42P01", isTransient: false}, // undefined_table
		{code: "23505", isTransient: false}, // unique_violation
		{code: "28P01", isTransient: false}, // invalid_password
		{code: "3D000", isTransient: false}, // invalid_catalog_name
		{code: "40002", isTransient: false}, // integrity_constraint_violation in a transaction
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &pgconn.PgError{Code: tt.code, Message: "test"}
			if got := classifier.IsTransient(err); got != tt.isTransient {
				t.Errorf("IsTransient(%s) = %v, want %v", tt.code, got, tt.isTransient)
			}
		})
	}
}

func TestNetworkErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewNetworkErrorClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"connection reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"network unreachable", &net.OpError{Op: "dial", Err: syscall.ENETUNREACH}, true},
		{"host unreachable", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, true},
		{"dns not found", &net.DNSError{Err: "no such host", IsNotFound: true}, false},
		{"dns temporary", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, true},
		{"dns timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, true},
		{"attempt deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), true},
		{"refused message", errors.New("dial tcp 127.0.0.1:5432: connection refused"), true},
		{"broken pipe message", errors.New("write: broken pipe"), true},
		{"unexpected eof", errors.New("unexpected EOF"), true},
		{"starting up", errors.New("FATAL: the database system is starting up"), true},
		{"deadline text only", errors.New("context deadline exceeded"), false},
		{"no such host text", errors.New("lookup db: no such host"), false},
		{"generic", errors.New("some other error"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTransient, classifier.IsTransient(tt.err))
		})
	}
}

func TestPostgreSQLErrorClassifier_FallsBackToNetwork(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	assert.True(t, classifier.IsTransient(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}))
	assert.False(t, classifier.IsTransient(errors.New("password authentication failed")))
	assert.False(t, classifier.IsTransient(nil))
}

func TestPostgreSQLErrorClassifier_WrappedPgError(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	pgErr := &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"}
	wrapped := fmt.Errorf("ping: %w", pgErr)

	assert.True(t, classifier.IsTransient(wrapped))

	fatal := fmt.Errorf("ping: %w", &pgconn.PgError{Code: "28000", Message: "no pg_hba.conf entry"})
	assert.False(t, classifier.IsTransient(fatal))
}

func TestAlwaysTransient(t *testing.T) {
	classifier := AlwaysTransient()

	assert.True(t, classifier.IsTransient(errors.New("anything")))
	assert.True(t, classifier.IsTransient(&pgconn.PgError{Code: "42601"}))
	assert.False(t, classifier.IsTransient(nil))
}

func TestClassifierFunc(t *testing.T) {
	var classifier retrier.ErrorClassifier = ClassifierFunc(func(err error) bool {
		return errors.Is(err, syscall.EAGAIN)
	})

	assert.True(t, classifier.IsTransient(fmt.Errorf("read: %w", syscall.EAGAIN)))
	assert.False(t, classifier.IsTransient(errors.New("other")))
}
