package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezamazwe/admin-gateway/pkg/identity"
)

func setupRouter(t *testing.T) (*chi.Mux, *adminFixture) {
	f := setupAdminService(t)
	r := chi.NewRouter()
	Routes(r, NewHandle(f.service))
	return r, f
}

func postJSON(t *testing.T, router *chi.Mux, path string, payload any) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestVerifyEmailHandler(t *testing.T) {
	router, f := setupRouter(t)
	ctx := context.Background()
	f.createAdmin(t, "admin@example.com", "secret-pw", identity.AuthorizationClaims{})

	link, err := f.service.SendVerificationEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	code := linkCode(t, link)

	rec := postJSON(t, router, "/verify-email", VerifyEmailRequest{
		Email: "admin@example.com",
		Code:  code,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email verification successful.")

	id, err := f.accounts.GetIdentityByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, id.EmailVerified)
}

func TestVerifyEmailHandler_MalformedEmail(t *testing.T) {
	router, f := setupRouter(t)
	f.createAdmin(t, "admin@example.com", "secret-pw", identity.AuthorizationClaims{})

	// A syntactically bad email is rejected at the boundary, before any
	// token lookup.
	rec := postJSON(t, router, "/verify-email", VerifyEmailRequest{
		Email: "not-an-email",
		Code:  "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEmailHandler_MissingParameters(t *testing.T) {
	router, _ := setupRouter(t)

	rec := postJSON(t, router, "/verify-email", VerifyEmailRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Verification code or email is missing.")
}

func TestVerifyEmailHandler_UnknownCode(t *testing.T) {
	router, f := setupRouter(t)
	f.createAdmin(t, "admin@example.com", "secret-pw", identity.AuthorizationClaims{})

	rec := postJSON(t, router, "/verify-email", VerifyEmailRequest{
		Email: "admin@example.com",
		Code:  "0123456789abcdef",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Verification code or email is invalid.")
}
