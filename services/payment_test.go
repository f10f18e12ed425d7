package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	secret := "whsec_test"

	if !VerifyWebhookSignature(body, signBody(body, secret), secret) {
		t.Error("a correctly signed body should verify")
	}

	if VerifyWebhookSignature(body, signBody(body, "other_secret"), secret) {
		t.Error("a signature from a different secret must not verify")
	}

	tampered := []byte(`{"event":"payment.captured","payload":{"amount":1}}`)
	if VerifyWebhookSignature(tampered, signBody(body, secret), secret) {
		t.Error("a signature over a different body must not verify")
	}

	if VerifyWebhookSignature(body, "", secret) {
		t.Error("an empty signature must not verify")
	}
	if VerifyWebhookSignature(body, signBody(body, ""), "") {
		t.Error("an empty secret must not verify anything")
	}
}

func TestHandleWebhookVerificationDisabled(t *testing.T) {
	svc := &PaymentService{
		logSvc:        &LogService{},
		webhookSecret: "whsec_test",
		verifyWebhook: false,
	}

	// With verification off, an unsigned event is still accepted.
	if err := svc.HandleWebhook([]byte(`{"event":"order.paid"}`), ""); err != nil {
		t.Errorf("unsigned event with verification off: %v", err)
	}
}

func TestHandleWebhookVerificationEnabled(t *testing.T) {
	secret := "whsec_test"
	svc := &PaymentService{
		logSvc:        &LogService{},
		webhookSecret: secret,
		verifyWebhook: true,
	}

	body := []byte(`{"event":"order.paid"}`)

	if err := svc.HandleWebhook(body, signBody(body, secret)); err != nil {
		t.Errorf("signed event: %v", err)
	}

	err := svc.HandleWebhook(body, "bad-signature")
	if err == nil {
		t.Fatal("bad signature should be rejected when verification is on")
	}
}

func TestHandleWebhookRejectsMalformedPayload(t *testing.T) {
	svc := &PaymentService{
		logSvc:        &LogService{},
		verifyWebhook: false,
	}

	if err := svc.HandleWebhook([]byte("not json"), ""); err == nil {
		t.Fatal("malformed payload should be rejected")
	}
}
