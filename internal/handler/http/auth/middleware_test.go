package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/auth"
	"newsdesk/internal/observability/metrics"
	authSvc "newsdesk/internal/service/auth"
)

type stubAuthenticator struct {
	users map[string]*entity.User
	err   error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[token]
	if !ok {
		return nil, authSvc.ErrInvalidToken
	}
	return u, nil
}

var testUsers = stubAuthenticator{users: map[string]*entity.User{
	"admin-token":  {Username: "root", Role: entity.RoleAdministrator},
	"editor-token": {Username: "ed", Role: entity.RoleEditor},
	"reader-token": {Username: "rita", Role: entity.RoleReader},
}}

func whoami() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(u.Username))
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer abc", "abc", false},
		{"Bearer   abc  ", "abc", false},
		{"", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"Bearer ", "", true},
		{"Bearer", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := auth.BearerToken(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, authSvc.ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	handler := auth.Authenticate(testUsers)(whoami())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer reader-token", http.StatusOK, "rita"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Token reader-token", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/articles", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, r)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			} else {
				assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}

func TestAuthenticate_BackendFailureIsNot401(t *testing.T) {
	handler := auth.Authenticate(stubAuthenticator{err: errors.New("store down")})(whoami())

	r := httptest.NewRequest(http.MethodGet, "/articles", nil)
	r.Header.Set("Authorization", "Bearer reader-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "store down")
}

func TestGuard_RoleHierarchy(t *testing.T) {
	guard := auth.Guard{Auth: testUsers}

	tests := []struct {
		required entity.Role
		token    string
		want     int
	}{
		{entity.RoleReader, "reader-token", http.StatusOK},
		{entity.RoleReader, "editor-token", http.StatusOK},
		{entity.RoleReader, "admin-token", http.StatusOK},
		{entity.RoleEditor, "reader-token", http.StatusForbidden},
		{entity.RoleEditor, "editor-token", http.StatusOK},
		{entity.RoleEditor, "admin-token", http.StatusOK},
		{entity.RoleAdministrator, "reader-token", http.StatusForbidden},
		{entity.RoleAdministrator, "editor-token", http.StatusForbidden},
		{entity.RoleAdministrator, "admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(string(tt.required)+"/"+tt.token, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/articles", nil)
			r.Header.Set("Authorization", "Bearer "+tt.token)
			rr := httptest.NewRecorder()
			guard.Require(tt.required, whoami()).ServeHTTP(rr, r)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequireRole_RecordsDenial(t *testing.T) {
	before := testutil.ToFloat64(metrics.AccessDeniedTotal.WithLabelValues("administrator"))

	r := httptest.NewRequest(http.MethodPost, "/users", nil)
	r = r.WithContext(auth.WithUser(r.Context(), &entity.User{Username: "ed", Role: entity.RoleEditor}))
	rr := httptest.NewRecorder()
	auth.RequireRole(entity.RoleAdministrator, whoami()).ServeHTTP(rr, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AccessDeniedTotal.WithLabelValues("administrator")))
}

func TestRequireRole_WithoutUser(t *testing.T) {
	rr := httptest.NewRecorder()
	auth.RequireRole(entity.RoleReader, whoami()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
