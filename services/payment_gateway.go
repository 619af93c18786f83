package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// PaymentOrder is an order created at the payment provider
type PaymentOrder struct {
	ID       string `json:"razorpay_order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// PaymentGateway creates provider orders and verifies payment callbacks
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*PaymentOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// RazorpayGateway is the Razorpay implementation of PaymentGateway
type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

// NewRazorpayGateway creates a RazorpayGateway
func NewRazorpayGateway(keyID, secret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, secret),
		keyID:  keyID,
		secret: secret,
	}
}

// CreateOrder creates a Razorpay order. Razorpay expects the amount in the
// currency's minor unit.
func (g *RazorpayGateway) CreateOrder(_ context.Context, amount decimal.Decimal, currency, receipt string) (*PaymentOrder, error) {
	minor := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	data := map[string]interface{}{
		"amount":          minor,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}
	return &PaymentOrder{
		ID:       fmt.Sprintf("%v", order["id"]),
		Amount:   minor,
		Currency: currency,
		KeyID:    g.keyID,
	}, nil
}

// VerifySignature checks the HMAC-SHA256 of "orderID|paymentID"
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(SignPayment(g.secret, orderID, paymentID)), []byte(signature))
}

// SignPayment computes the Razorpay payment signature
func SignPayment(secret, orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}
