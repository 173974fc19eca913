package adapter

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slotbook/service-booking/pkg/domain"
)

// DefaultSignatureTolerance bounds how old a webhook timestamp may be.
const DefaultSignatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks a Stripe-Signature header
// ("t=<unix>,v1=<hex>") against the raw payload. The signed message is
// "<t>.<payload>" with HMAC-SHA256 over the shared secret.
func VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if header == "" {
		return domain.NewSignatureError("missing signature header")
	}

	var timestamp int64
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return domain.NewSignatureError("malformed signature timestamp")
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return domain.NewSignatureError("malformed signature header")
	}

	age := time.Since(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return domain.NewSignatureError("signature timestamp outside tolerance")
	}

	expected := computeSignature(timestamp, payload, secret)
	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return domain.NewSignatureError("signature mismatch")
}

// SignPayload produces a valid Stripe-Signature header for the payload.
// Used by the mock flow and by tests to construct verifiable deliveries.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	sig := computeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(sig))
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}

// webhookPayload is the wire shape of a payment intent event.
type webhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Metadata struct {
				BookingID string `json:"bookingId"`
			} `json:"metadata"`
			Charges struct {
				Data []struct {
					ReceiptURL string `json:"receipt_url"`
				} `json:"data"`
			} `json:"charges"`
		} `json:"object"`
	} `json:"data"`
}

// parseWebhookEvent extracts the fields the lifecycle manager needs from a
// verified payload.
func parseWebhookEvent(payload []byte) (WebhookEvent, error) {
	var wp webhookPayload
	if err := json.Unmarshal(payload, &wp); err != nil {
		return WebhookEvent{}, domain.NewSignatureError("malformed event payload")
	}

	event := WebhookEvent{
		ID:        wp.ID,
		Type:      wp.Type,
		IntentID:  wp.Data.Object.ID,
		BookingID: wp.Data.Object.Metadata.BookingID,
	}
	if len(wp.Data.Object.Charges.Data) > 0 {
		event.ReceiptURL = wp.Data.Object.Charges.Data[0].ReceiptURL
	}
	return event, nil
}
