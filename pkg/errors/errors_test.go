package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/eventmap/pkg/errors"
)

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "event", ID: "42"}
		assert.Equal(t, `event "42" not found`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("lookup: %w", pkgerrors.NewNotFoundError("event", "7"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("category", "", "cannot be empty")
		assert.Equal(t, "invalid category: cannot be empty", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "bad payload"}
		assert.Equal(t, "invalid: bad payload", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	t.Run("server errors are unavailable", func(t *testing.T) {
		err := pkgerrors.NewAPIError("http://localhost/api/events", 503, "Service Unavailable")
		assert.Equal(t, "http://localhost/api/events: 503 Service Unavailable: Service Unavailable", err.Error())
		assert.True(t, pkgerrors.IsUnavailable(err))
		assert.False(t, pkgerrors.IsNotFound(err))
	})

	t.Run("404 is not found", func(t *testing.T) {
		err := pkgerrors.NewAPIError("http://localhost/api/events", 404, "Not Found")
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("without status", func(t *testing.T) {
		base := errors.New("connection refused")
		err := &pkgerrors.APIError{Endpoint: "http://x", Message: "request failed", Err: base}
		assert.Equal(t, "http://x: request failed", err.Error())
		assert.Equal(t, base, err.Unwrap())
	})
}

func TestFetchError(t *testing.T) {
	cause := pkgerrors.NewAPIError("http://x/api/events", 500, "boom")
	err := pkgerrors.WrapFetch("http://x", 3, cause)

	var fetchErr *pkgerrors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, uint64(3), fetchErr.Generation)
	assert.Contains(t, err.Error(), "refresh from http://x failed")
	assert.True(t, pkgerrors.IsUnavailable(err), "cause should remain visible through the wrap")

	assert.Nil(t, pkgerrors.WrapFetch("x", 1, nil))
}

func TestParseError(t *testing.T) {
	t.Run("with file", func(t *testing.T) {
		err := pkgerrors.NewParseError("yaml", "events.yaml", "bad indent", nil)
		assert.Equal(t, "decoding yaml events.yaml: bad indent", err.Error())
	})

	t.Run("wrap helper", func(t *testing.T) {
		base := errors.New("unexpected EOF")
		err := pkgerrors.WrapParse("json", "", base)
		var parseErr *pkgerrors.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "json", parseErr.Format)
		assert.Equal(t, base, errors.Unwrap(err))
	})
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.WrapIO("read", "/tmp/events.yaml", base)
	assert.Contains(t, err.Error(), "read")
	assert.Contains(t, err.Error(), "/tmp/events.yaml")
	assert.Equal(t, base, errors.Unwrap(err))
	assert.Nil(t, pkgerrors.WrapIO("read", "x", nil))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("server", "listen address required", nil)
	assert.Equal(t, "config: server: listen address required", err.Error())
}

func TestSentinels(t *testing.T) {
	assert.True(t, pkgerrors.IsCanceled(fmt.Errorf("x: %w", pkgerrors.ErrCanceled)))
	assert.True(t, pkgerrors.IsSuperseded(fmt.Errorf("x: %w", pkgerrors.ErrSuperseded)))
}
