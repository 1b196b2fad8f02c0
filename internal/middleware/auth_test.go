package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dailyhub/internal/session"
	"dailyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAuth(t *testing.T) {
	issuer := session.NewIssuer("secret", time.Hour)
	sess, err := issuer.Issue(12345)
	require.NoError(t, err)

	tests := []struct {
		name           string
		setup          func(r *http.Request)
		expectedStatus int
		expectedUserID int64
	}{
		{
			name: "cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session", Value: sess.Token})
			},
			expectedStatus: http.StatusOK,
			expectedUserID: 12345,
		},
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sess.Token)
			},
			expectedStatus: http.StatusOK,
			expectedUserID: 12345,
		},
		{
			name:           "no credentials",
			setup:          func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid token",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "basic auth is not a session",
			setup: func(r *http.Request) {
				r.SetBasicAuth("user", "pass")
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			SessionAuth(issuer, "session", testutil.NewTestLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedUserID, gotUserID)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"ok":false,"error":"UNAUTHORIZED"}`, rec.Body.String())
			}
		})
	}
}

func TestSessionToken_CookieWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})
	req.Header.Set("Authorization", "bearer from-header")

	assert.Equal(t, "from-cookie", SessionToken(req, "sid"))
	assert.Equal(t, "from-header", SessionToken(req, "other"))
}
