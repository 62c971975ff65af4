package subscription

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*chi.Mux, *InMemoryProfileRepository) {
	profiles := NewInMemoryProfileRepository()
	service := NewService(profiles, NewMemoryReplayGuard(time.Hour), "test-passphrase")
	handle := NewHandle(service, CheckoutConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		ProcessURL:  "https://sandbox.payfast.co.za/eng/process",
		ReturnURL:   "https://app.example.com/user",
		CancelURL:   "https://app.example.com/user",
		NotifyURL:   "https://gateway.example.com/notify_url",
		Amount:      "100.00",
		ItemName:    "Premium Courses",
	})

	r := chi.NewRouter()
	Routes(r, handle)
	return r, profiles
}

func TestNotify_ValidSignature(t *testing.T) {
	router, profiles := setupRouter(t)
	_, err := profiles.CreateProfile(context.Background(), "s@example.com")
	require.NoError(t, err)

	body := []byte(`{"pf_payment_id":"1089250","payment_status":"COMPLETE","email_address":"s@example.com","billing_date":"2024-01-15"}`)

	req := httptest.NewRequest(http.MethodPost, "/payfast/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("pf_signature", signBody("test-passphrase", body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	profile, err := profiles.GetProfileByEmail(context.Background(), "s@example.com")
	require.NoError(t, err)
	assert.Equal(t, "subscribed", profile.SubscriptionStatus)
}

func TestNotify_InvalidSignature(t *testing.T) {
	router, profiles := setupRouter(t)
	_, err := profiles.CreateProfile(context.Background(), "s@example.com")
	require.NoError(t, err)

	body := []byte(`{"pf_payment_id":"1089250","payment_status":"COMPLETE","email_address":"s@example.com"}`)

	req := httptest.NewRequest(http.MethodPost, "/notify_url", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("pf_signature", "0123456789abcdef0123456789abcdef")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Signature", rec.Body.String())

	// Nothing was reconciled.
	profile, err := profiles.GetProfileByEmail(context.Background(), "s@example.com")
	require.NoError(t, err)
	assert.Equal(t, "none", profile.SubscriptionStatus)
}

func TestNotify_UnknownSubscriber(t *testing.T) {
	router, _ := setupRouter(t)

	body := []byte(`{"pf_payment_id":"1089250","payment_status":"COMPLETE","email_address":"nobody@example.com","billing_date":"2024-01-15"}`)

	req := httptest.NewRequest(http.MethodPost, "/notify_url", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("pf_signature", signBody("test-passphrase", body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayment_RendersCheckoutForm(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/payment", bytes.NewReader([]byte(`{"name_first":"Vusi"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, `action="https://sandbox.payfast.co.za/eng/process"`)
	assert.Contains(t, html, `name="merchant_id" value="10000100"`)
	assert.Contains(t, html, `name="name_first" type="hidden" value="Vusi"`)
	assert.Contains(t, html, `name="amount" value="100.00"`)
	assert.Contains(t, html, "document.forms[0].submit()")
}
