package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricsHandler(c echo.Context) error {
	return c.String(http.StatusOK, "metrics")
}

func TestMetricsBasicAuth(t *testing.T) {
	t.Run("認証設定がない場合はスキップ", func(t *testing.T) {
		t.Setenv("METRICS_USER", "")
		t.Setenv("METRICS_PASSWORD", "")

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := MetricsBasicAuth()(metricsHandler)(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "metrics", rec.Body.String())
	})

	t.Run("正しい認証情報", func(t *testing.T) {
		t.Setenv("METRICS_USER", "testuser")
		t.Setenv("METRICS_PASSWORD", "testpass")

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		auth := base64.StdEncoding.EncodeToString([]byte("testuser:testpass"))
		req.Header.Set("Authorization", "Basic "+auth)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := MetricsBasicAuth()(metricsHandler)(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("誤った認証情報", func(t *testing.T) {
		t.Setenv("METRICS_USER", "testuser")
		t.Setenv("METRICS_PASSWORD", "testpass")

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		auth := base64.StdEncoding.EncodeToString([]byte("wronguser:wrongpass"))
		req.Header.Set("Authorization", "Basic "+auth)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := MetricsBasicAuth()(metricsHandler)(c)

		// BasicAuthミドルウェアは401を返す
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}
