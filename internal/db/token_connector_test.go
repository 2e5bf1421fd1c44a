package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenProvider struct {
	calls int
	err   error
}

func (f *fakeTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	f.calls++
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "tok", time.Now().Add(time.Minute), nil
}

func (f *fakeTokenProvider) String() string { return "fake" }

func TestTokenBasedConnector_TokenFailure(t *testing.T) {
	provider := &fakeTokenProvider{err: errors.New("credential chain empty")}
	c := NewTokenBasedConnector(&Target{ConnString: "postgres://u@localhost/db"}, provider, "Fake")

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire Fake token")
	assert.ErrorIs(t, err, provider.err)
	assert.Equal(t, 1, provider.calls)
}

func TestTokenBasedConnector_InvalidTargetSkipsToken(t *testing.T) {
	provider := &fakeTokenProvider{}
	c := NewTokenBasedConnector(&Target{ConnString: "postgres://u@localhost:bad/db"}, provider, "Fake")

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, provider.calls)
}

func TestNewAWSIAMTokenProvider_Validation(t *testing.T) {
	_, err := NewAWSIAMTokenProvider("", "us-east-1", "u")
	assert.Error(t, err)
	_, err = NewAWSIAMTokenProvider("h:5432", "", "u")
	assert.Error(t, err)
	_, err = NewAWSIAMTokenProvider("h:5432", "us-east-1", "")
	assert.Error(t, err)

	p, err := NewAWSIAMTokenProvider("h:5432", "us-east-1", "u")
	require.NoError(t, err)
	assert.Equal(t, "AWSIAMTokenProvider(endpoint=h:5432, region=us-east-1, user=u)", p.String())
}

func TestNewAzureServicePrincipalProvider_RequiresAllFields(t *testing.T) {
	_, err := NewAzureServicePrincipalProvider("tenant", "client", "")
	assert.Error(t, err)
}
