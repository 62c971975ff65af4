package subscription

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// PaymentNotification is the subset of the gateway ITN payload the
// reconciler acts on.
type PaymentNotification struct {
	PfPaymentID   string `json:"pf_payment_id"`
	PaymentStatus string `json:"payment_status"`
	ItemName      string `json:"item_name"`
	EmailAddress  string `json:"email_address"`
	AmountGross   string `json:"amount_gross"`
	BillingDate   string `json:"billing_date"`
}

// StatusComplete is the only payment status that mutates subscription state.
const StatusComplete = "COMPLETE"

// ParseNotification decodes an ITN payload. The gateway posts
// form-encoded bodies; the hosted sandbox form relays JSON. Both are
// accepted, keyed off the request content type.
func ParseNotification(body []byte, contentType string) (*PaymentNotification, error) {
	var n PaymentNotification

	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(body, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
		}
		return &n, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}
	n.PfPaymentID = values.Get("pf_payment_id")
	n.PaymentStatus = values.Get("payment_status")
	n.ItemName = values.Get("item_name")
	n.EmailAddress = values.Get("email_address")
	n.AmountGross = values.Get("amount_gross")
	n.BillingDate = values.Get("billing_date")
	return &n, nil
}
