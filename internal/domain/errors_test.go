package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchErrorUnwrap(t *testing.T) {
	fe := &FetchError{Kind: FetchTimeout, Err: context.DeadlineExceeded}
	assert.ErrorIs(t, fe, context.DeadlineExceeded)
}

func TestFetchErrorMessage(t *testing.T) {
	fe := &FetchError{Kind: FetchServer, Status: 503, Err: errors.New("unavailable")}
	assert.Contains(t, fe.Error(), "server")
	assert.Contains(t, fe.Error(), "503")

	fe = &FetchError{Kind: FetchTransport, Err: errors.New("refused")}
	assert.NotContains(t, fe.Error(), "status")
}

func TestClassifyFetch(t *testing.T) {
	wrapped := fmt.Errorf("bootstrap: %w", &FetchError{Kind: FetchMalformed, Err: errors.New("bad json")})

	fe, ok := ClassifyFetch(wrapped)
	require.True(t, ok)
	assert.Equal(t, FetchMalformed, fe.Kind)

	_, ok = ClassifyFetch(errors.New("plain"))
	assert.False(t, ok)

	_, ok = ClassifyFetch(nil)
	assert.False(t, ok)
}

func TestFetchKindString(t *testing.T) {
	assert.Equal(t, "timeout", FetchTimeout.String())
	assert.Equal(t, "transport", FetchTransport.String())
	assert.Equal(t, "server", FetchServer.String())
	assert.Equal(t, "malformed", FetchMalformed.String())
	assert.Equal(t, "unknown", FetchKind(99).String())
}
