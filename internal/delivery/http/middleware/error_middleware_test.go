package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "passport/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/99", nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func newTestErrorMiddleware() *ErrorMiddleware {
	return NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleHTTPError_AppError(t *testing.T) {
	m := newTestErrorMiddleware()
	c, rec := newErrorTestContext(t)

	m.HandleHTTPError(domainerrors.ErrUserNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "USER_NOT_FOUND", envelope.Error.Code)
	assert.Equal(t, "User not found", envelope.Message)
}

func TestHandleHTTPError_WrappedAppError(t *testing.T) {
	m := newTestErrorMiddleware()
	c, rec := newErrorTestContext(t)

	// Wrapping in the usecase layer must not hide the status or code.
	wrapped := errors.Wrap(domainerrors.ErrEmailConflict, "registration failed")
	m.HandleHTTPError(wrapped, c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_CONFLICT", decodeEnvelope(t, rec).Error.Code)
}

func TestHandleHTTPError_EchoHTTPError(t *testing.T) {
	m := newTestErrorMiddleware()
	c, rec := newErrorTestContext(t)

	m.HandleHTTPError(echo.NewHTTPError(http.StatusNotFound, "Not Found"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "HTTP_ERROR", decodeEnvelope(t, rec).Error.Code)
}

func TestHandleHTTPError_UnknownErrorIsGeneric500(t *testing.T) {
	m := newTestErrorMiddleware()
	c, rec := newErrorTestContext(t)

	m.HandleHTTPError(errors.New("pq: connection refused"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
	// The raw cause stays in the logs; the client sees only the generic message.
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHandleHTTPError_CommittedResponseUntouched(t *testing.T) {
	m := newTestErrorMiddleware()
	c, rec := newErrorTestContext(t)

	require.NoError(t, c.NoContent(http.StatusOK))
	m.HandleHTTPError(domainerrors.ErrUserNotFound, c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
