package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolhub_backend/internals/features/finance/payments/model"
)

// MidtransNotification is the subset of the HTTP notification body we act on.
type MidtransNotification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	SettlementTime    string `json:"settlement_time"`
}

type PaymentResponse struct {
	PaymentID     uuid.UUID           `json:"payment_id"`
	SchoolID      uuid.UUID           `json:"school_id"`
	Plan          string              `json:"plan"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency"`
	Status        model.PaymentStatus `json:"status"`
	Provider      string              `json:"provider"`
	OrderID       string              `json:"order_id"`
	SnapToken     *string             `json:"snap_token,omitempty"`
	RedirectURL   *string             `json:"redirect_url,omitempty"`
	GatewayStatus *string             `json:"gateway_status,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func FromModel(p *model.SubscriptionPaymentModel) PaymentResponse {
	return PaymentResponse{
		PaymentID:     p.PaymentID,
		SchoolID:      p.PaymentSchoolID,
		Plan:          p.PaymentPlan,
		Amount:        p.PaymentAmount,
		Currency:      p.PaymentCurrency,
		Status:        p.PaymentStatus,
		Provider:      p.PaymentProvider,
		OrderID:       p.PaymentExternalID,
		SnapToken:     p.PaymentSnapToken,
		RedirectURL:   p.PaymentRedirectURL,
		GatewayStatus: p.PaymentGatewayStatus,
		PaidAt:        p.PaymentPaidAt,
		CreatedAt:     p.PaymentCreatedAt,
	}
}

func FromModelList(ps []model.SubscriptionPaymentModel) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for i := range ps {
		out = append(out, FromModel(&ps[i]))
	}
	return out
}

// NotificationResult is what the webhook answers; Midtrans only checks the status code.
type NotificationResult struct {
	Status            string               `json:"status"`
	Reason            string               `json:"reason,omitempty"`
	PaymentID         *uuid.UUID           `json:"payment_id,omitempty"`
	PaymentStatus     *model.PaymentStatus `json:"payment_status,omitempty"`
	TransactionStatus string               `json:"transaction_status,omitempty"`
}
