package subscription

import (
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// CheckoutConfig carries the merchant fields injected into the hosted
// checkout form.
type CheckoutConfig struct {
	MerchantID  string
	MerchantKey string
	ProcessURL  string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
	Amount      string
	ItemName    string
}

// Handle exposes the payment gateway HTTP surface.
type Handle struct {
	service  *Service
	checkout CheckoutConfig
}

// NewHandle creates a new subscription handler.
func NewHandle(service *Service, checkout CheckoutConfig) Handle {
	return Handle{service: service, checkout: checkout}
}

// Notify handles the gateway server-to-server notification. The signature is
// computed over the exact raw bytes, so the body is read before any parsing.
func (h Handle) Notify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.PlainText(w, r, "Invalid Body")
		return
	}

	sig := r.Header.Get("pf_signature")
	if !h.service.VerifySignature(body, sig) {
		slog.Warn("Rejected payment notification, signature mismatch")
		render.Status(r, http.StatusBadRequest)
		render.PlainText(w, r, "Invalid Signature")
		return
	}

	n, err := ParseNotification(body, r.Header.Get("Content-Type"))
	if err != nil {
		slog.Warn("Rejected payment notification, malformed body", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.PlainText(w, r, "Invalid Body")
		return
	}

	if err := h.service.ApplyPayment(r.Context(), n); err != nil {
		switch {
		case errors.Is(err, ErrUnknownSubscriber):
			render.Status(r, http.StatusNotFound)
			render.PlainText(w, r, "Unknown Subscriber")
		case errors.Is(err, ErrMalformedNotification):
			render.Status(r, http.StatusBadRequest)
			render.PlainText(w, r, "Invalid Body")
		default:
			slog.Error("Failed reconciling payment", "paymentId", n.PfPaymentID, "error", err)
			render.Status(r, http.StatusInternalServerError)
			render.PlainText(w, r, "Reconciliation Failed")
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.PlainText(w, r, "OK")
}

var checkoutTemplate = template.Must(template.New("checkout").Parse(`<html>
<body>
    <form action="{{.ProcessURL}}" method="post">
        {{- range $key, $value := .Fields}}
        <input name="{{$key}}" type="hidden" value="{{$value}}" />
        {{- end}}
        <input type="hidden" name="merchant_id" value="{{.MerchantID}}" />
        <input type="hidden" name="merchant_key" value="{{.MerchantKey}}" />
        <input type="hidden" name="return_url" value="{{.ReturnURL}}" />
        <input type="hidden" name="cancel_url" value="{{.CancelURL}}" />
        <input type="hidden" name="notify_url" value="{{.NotifyURL}}" />
        <input type="hidden" name="amount" value="{{.Amount}}" />
        <input type="hidden" name="item_name" value="{{.ItemName}}" />
    </form>
</body>
<script>
    document.forms[0].submit();
</script>
</html>
`))

type checkoutPage struct {
	CheckoutConfig
	Fields map[string]string
}

// Payment handles POST /payment: an auto-submitting form posting the
// caller's fields plus the merchant configuration to the gateway process
// URL.
func (h Handle) Payment(w http.ResponseWriter, r *http.Request) {
	fields := map[string]string{}
	if err := render.DecodeJSON(r.Body, &fields); err != nil && !errors.Is(err, io.EOF) {
		render.Status(r, http.StatusBadRequest)
		render.PlainText(w, r, "Invalid Body")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err := checkoutTemplate.Execute(w, checkoutPage{
		CheckoutConfig: h.checkout,
		Fields:         fields,
	})
	if err != nil {
		slog.Error("Failed rendering checkout form", "error", err)
	}
}

// Routes mounts the payment gateway endpoints.
func Routes(r chi.Router, handle Handle) {
	r.Post("/payfast/callback", handle.Notify)
	r.Post("/notify_url", handle.Notify)
	r.Post("/payment", handle.Payment)
}
