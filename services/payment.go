package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// PaymentService is a read-only client over the payment gateway's
// reporting API; the finance dashboard lists payments and orders
// through it. Missing credentials degrade these endpoints at call
// time, not at startup.
type PaymentService struct {
	context.DefaultService

	logSvc *LogService

	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	verifyWebhook bool

	httpClient *http.Client
}

const PAYMENT_SVC = "payment_svc"

func (svc PaymentService) Id() string {
	return PAYMENT_SVC
}

func (svc *PaymentService) Configure(ctx *context.Context) error {
	svc.baseURL = os.Getenv("PAYMENT_GATEWAY_URL")
	if svc.baseURL == "" {
		svc.baseURL = "https://api.razorpay.com/v1"
	}
	svc.keyID = os.Getenv("PAYMENT_KEY_ID")
	svc.keySecret = os.Getenv("PAYMENT_KEY_SECRET")
	svc.webhookSecret = os.Getenv("PAYMENT_WEBHOOK_SECRET")

	// TODO: webhook signature verification is intentionally off until
	// the webhook secret rotation is settled with the trust's finance
	// owner; flip PAYMENT_WEBHOOK_VERIFY=true once that lands.
	svc.verifyWebhook = os.Getenv("PAYMENT_WEBHOOK_VERIFY") == "true"

	svc.httpClient = &http.Client{Timeout: 15 * time.Second}

	return svc.DefaultService.Configure(ctx)
}

func (svc *PaymentService) Start() error {
	svc.logSvc = svc.Service(LOG_SVC).(*LogService)
	return nil
}

// ==================== REPORTING READS ====================

func (svc *PaymentService) ListPayments(q dto.PaymentReportQuery) (*dto.GatewayPaymentList, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.NewValidationError(dto.FormatValidationErrors(err))
	}

	var out dto.GatewayPaymentList
	if err := svc.fetch("/payments", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (svc *PaymentService) ListOrders(q dto.PaymentReportQuery) (*dto.GatewayOrderList, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.NewValidationError(dto.FormatValidationErrors(err))
	}

	var out dto.GatewayOrderList
	if err := svc.fetch("/orders", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (svc *PaymentService) fetch(path string, q dto.PaymentReportQuery, out interface{}) error {
	if svc.keyID == "" || svc.keySecret == "" {
		return shared.NewInternalError(errors.New("gateway credentials not configured"),
			"Payment reporting is not available")
	}

	params := url.Values{}
	if q.From > 0 {
		params.Set("from", strconv.FormatInt(q.From, 10))
	}
	if q.To > 0 {
		params.Set("to", strconv.FormatInt(q.To, 10))
	}
	if q.Count > 0 {
		params.Set("count", strconv.Itoa(q.Count))
	}
	if q.Skip > 0 {
		params.Set("skip", strconv.Itoa(q.Skip))
	}

	reqURL := svc.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return svc.gatewayFailure(path, err)
	}
	req.SetBasicAuth(svc.keyID, svc.keySecret)

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return svc.gatewayFailure(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return svc.gatewayFailure(path,
			fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return svc.gatewayFailure(path, err)
	}
	return nil
}

func (svc *PaymentService) gatewayFailure(path string, err error) error {
	svc.logSvc.Error(PAYMENT_SVC, "Payment gateway request failed", map[string]interface{}{
		"path":  path,
		"error": err.Error(),
	})
	return shared.NewInternalError(err, "Something went wrong")
}

// ==================== WEBHOOK ====================

// VerifyWebhookSignature checks the gateway's HMAC-SHA256 signature
// over the raw body.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleWebhook accepts a gateway event. Signature verification is a
// known, deliberate gap while disabled (see Configure); events are
// logged either way so the finance dashboard stays auditable.
func (svc *PaymentService) HandleWebhook(body []byte, signature string) error {
	if svc.verifyWebhook {
		if !VerifyWebhookSignature(body, signature, svc.webhookSecret) {
			svc.logSvc.Warn(PAYMENT_SVC, "Webhook signature mismatch", map[string]interface{}{
				"signature": signature,
			})
			return shared.NewUnauthorizedError(errors.New("invalid webhook signature"),
				"Invalid signature")
		}
	}

	var event struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return shared.NewBadRequestError(err, "Invalid webhook payload")
	}

	svc.logSvc.Warn(PAYMENT_SVC, "Gateway webhook received", map[string]interface{}{
		"event":    event.Event,
		"verified": svc.verifyWebhook,
	})
	return nil
}
