package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when absent", incoming: "", keep: false},
		{name: "caller id kept", incoming: "abc-123", keep: true},
		{name: "control characters rejected", incoming: "abc\n123", keep: false},
		{name: "oversized rejected", incoming: strings.Repeat("a", maxRequestIDLength+1), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var ctxID string
			mw := NewRequestIDMiddleware(slog.Default())
			err := mw.Process(func(c echo.Context) error {
				ctxID = deliverycontext.GetRequestIDFromContext(c.Request().Context())
				assert.NotNil(t, deliverycontext.GetLogger(c.Request().Context()))

				return nil
			})(c)

			assert.NoError(t, err)
			got := rec.Header().Get(deliverycontext.HeaderXRequestID)
			assert.Equal(t, got, ctxID)
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestLoggerMiddleware(t *testing.T) {
	run := func(debug bool, path string, handler echo.HandlerFunc) string {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		cfg := &config.Config{}
		cfg.Env.Debug = debug

		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		c.SetPath(path)
		_ = NewLoggerMiddleware(logger, cfg).Handle(handler)(c)

		return buf.String()
	}
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	fails := func(echo.Context) error { return domainerrors.ErrTransactionFailed }
	notFound := func(echo.Context) error { return domainerrors.ErrCartNotFound }

	assert.Contains(t, run(true, "/api/v1/cart", ok), "status=200")
	assert.Empty(t, run(false, "/api/v1/cart", ok))
	assert.Empty(t, run(true, "/health", ok))
	assert.Empty(t, run(false, "/api/v1/cart", notFound))

	out := run(false, "/api/v1/cart", fails)
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "status=500")

	assert.Contains(t, run(true, "/api/v1/cart", notFound), "status=404")
}
