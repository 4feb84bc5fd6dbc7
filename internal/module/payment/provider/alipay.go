package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/alipay"
	"github.com/google/uuid"

	"github.com/clickcart/server/internal/module/order"
)

// IdentifierAlipay is the registry key for the Alipay adapter.
const IdentifierAlipay = "ALIPAY"

// AlipayConfig holds Alipay adapter configuration.
type AlipayConfig struct {
	AppID           string
	PrivateKey      string // RSA2 private key (PEM format)
	AlipayPublicKey string // Alipay public key for verification (PEM format)
	IsProd          bool
	NotifyURL       string
	ReturnURL       string
}

// AlipayAdapter implements Adapter using Alipay page pay.
type AlipayAdapter struct {
	client *alipay.Client
	config *AlipayConfig
}

// NewAlipayAdapter creates a new Alipay adapter.
func NewAlipayAdapter(config *AlipayConfig) (*AlipayAdapter, error) {
	client, err := alipay.NewClient(config.AppID, config.PrivateKey, config.IsProd)
	if err != nil {
		return nil, fmt.Errorf("create alipay client: %w", err)
	}
	client.SetNotifyUrl(config.NotifyURL)
	if config.ReturnURL != "" {
		client.SetReturnUrl(config.ReturnURL)
	}

	return &AlipayAdapter{client: client, config: config}, nil
}

// Identifier returns the provider identifier.
func (a *AlipayAdapter) Identifier() string {
	return IdentifierAlipay
}

// Initiate creates an Alipay page pay order. The order ID doubles as the
// out_trade_no so the asynchronous notify can be correlated back.
func (a *AlipayAdapter) Initiate(ctx context.Context, req *SessionRequest) (*SessionDetails, error) {
	expiresAt := time.Now().Add(req.TTL)

	bm := make(gopay.BodyMap)
	bm.Set("out_trade_no", req.OrderID.String())
	bm.Set("total_amount", req.Amount.StringFixed(2))
	bm.Set("subject", fmt.Sprintf("Order %s", req.OrderNo))
	bm.Set("timeout_express", fmt.Sprintf("%dm", int(req.TTL.Minutes())))
	bm.Set("product_code", "FAST_INSTANT_TRADE_PAY")

	payURL, err := a.client.TradePagePay(ctx, bm)
	if err != nil {
		return nil, fmt.Errorf("create page pay: %w", err)
	}

	return &SessionDetails{
		SessionID: req.OrderID.String(),
		URL:       payURL,
		ExpiresAt: expiresAt,
	}, nil
}

// HandleWebhook parses and verifies an Alipay asynchronous notify
// (form-urlencoded) and translates the trade status.
func (a *AlipayAdapter) HandleWebhook(ctx context.Context, body []byte, _ http.Header) (*WebhookResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	notify, err := alipay.ParseNotifyToBodyMap(req)
	if err != nil {
		return nil, fmt.Errorf("parse notify: %w", err)
	}

	ok, err := alipay.VerifySign(a.config.AlipayPublicKey, notify)
	if err != nil {
		return nil, fmt.Errorf("verify signature: %w", err)
	}
	if !ok {
		return nil, errors.New("invalid signature")
	}

	orderID, err := uuid.Parse(notify.Get("out_trade_no"))
	if err != nil {
		return nil, fmt.Errorf("parse order reference %q: %w", notify.Get("out_trade_no"), err)
	}

	tradeStatus := notify.Get("trade_status")
	return &WebhookResult{
		OrderID:       orderID,
		Status:        mapAlipayTradeStatus(tradeStatus),
		TransactionID: notify.Get("trade_no"),
		EventID:       notify.Get("notify_id"),
		EventType:     tradeStatus,
	}, nil
}

// mapAlipayTradeStatus maps an Alipay trade status to the canonical set.
// Anything unrecognized maps to UNKNOWN, never to a guess.
func mapAlipayTradeStatus(status string) order.PaymentStatus {
	switch status {
	case "WAIT_BUYER_PAY":
		return order.PaymentStatusPending
	case "TRADE_SUCCESS", "TRADE_FINISHED":
		return order.PaymentStatusSucceeded
	case "TRADE_CLOSED":
		return order.PaymentStatusCanceled
	default:
		return order.PaymentStatusUnknown
	}
}
