package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodcommunity/forum/backend/internal/auth"
	"github.com/kodcommunity/forum/backend/internal/logging"
)

const cookieName = "kod_session"

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(issuer *auth.TokenIssuer) *gin.Engine {
	r := gin.New()
	r.Use(SessionAuth(issuer, cookieName))
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	protected := r.Group("", RequireAuth())
	protected.GET("/private", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestSessionAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	token, _, err := issuer.Issue(7)
	require.NoError(t, err)

	other := auth.NewTokenIssuer("other-secret", time.Hour)
	forged, _, err := other.Issue(7)
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		}, http.StatusNoContent},
		{"bearer header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		}, http.StatusNoContent},
		{"foreign signature", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+forged)
		}, http.StatusUnauthorized},
		{"garbage cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: cookieName, Value: "not-a-token"})
		}, http.StatusUnauthorized},
	}

	r := newEngine(issuer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"message":"Not logged in"}`, w.Body.String())
			}
		})
	}
}

func TestSessionAuthAnonymousPassesThrough(t *testing.T) {
	r := newEngine(auth.NewTokenIssuer("secret", time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"ok":false}`, w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logging.New(&buf, "debug", "json")))
	r.GET("/ping", func(c *gin.Context) {
		logging.FromContext(c.Request.Context(), logging.Nop()).Info(c.Request.Context(), "inside handler")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	reqID := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, reqID)
	assert.Contains(t, buf.String(), `"msg":"inside handler"`)
	assert.Contains(t, buf.String(), `"msg":"request handled"`)
	assert.Contains(t, buf.String(), `"request_id":"`+reqID+`"`)
	assert.Contains(t, buf.String(), `"path":"/ping"`)
}

func TestRequestLoggerKeepsValidIncomingID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logging.Nop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	const id = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}
