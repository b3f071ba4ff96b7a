// file: internals/features/finance/payments/model/subscription_payment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusExpired   PaymentStatus = "expired"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsFinal: no further webhook may move the payment.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed || s == PaymentStatusExpired || s == PaymentStatusCancelled
}

const PaymentProviderMidtrans = "midtrans"

// SubscriptionPaymentModel is one checkout for a school's plan.
type SubscriptionPaymentModel struct {
	PaymentID       uuid.UUID  `gorm:"type:uuid;primaryKey;column:payment_id" json:"payment_id"`
	PaymentSchoolID uuid.UUID  `gorm:"type:uuid;not null;index;column:payment_school_id" json:"payment_school_id"`
	PaymentUserID   *uuid.UUID `gorm:"type:uuid;column:payment_user_id" json:"payment_user_id,omitempty"`

	PaymentPlan     string          `gorm:"type:varchar(50);not null;column:payment_plan" json:"payment_plan"`
	PaymentAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;column:payment_amount" json:"payment_amount"`
	PaymentCurrency string          `gorm:"type:varchar(3);not null;column:payment_currency" json:"payment_currency"`

	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null;index;column:payment_status" json:"payment_status"`
	PaymentProvider string        `gorm:"type:varchar(20);not null;column:payment_provider" json:"payment_provider"`

	// Order id sent to the gateway.
	PaymentExternalID  string  `gorm:"type:varchar(80);not null;uniqueIndex:uq_subscription_payments_external;column:payment_external_id" json:"payment_external_id"`
	PaymentSnapToken   *string `gorm:"type:text;column:payment_snap_token" json:"payment_snap_token,omitempty"`
	PaymentRedirectURL *string `gorm:"type:text;column:payment_redirect_url" json:"payment_redirect_url,omitempty"`

	PaymentGatewayStatus *string        `gorm:"type:varchar(40);column:payment_gateway_status" json:"payment_gateway_status,omitempty"`
	PaymentGatewayRaw    datatypes.JSON `gorm:"column:payment_gateway_raw" json:"-"`
	PaymentPaidAt        *time.Time     `gorm:"column:payment_paid_at" json:"payment_paid_at,omitempty"`

	PaymentCreatedAt time.Time `gorm:"autoCreateTime;column:payment_created_at" json:"payment_created_at"`
	PaymentUpdatedAt time.Time `gorm:"autoUpdateTime;column:payment_updated_at" json:"payment_updated_at"`
}

func (SubscriptionPaymentModel) TableName() string { return "subscription_payments" }

func (p *SubscriptionPaymentModel) BeforeCreate(tx *gorm.DB) error {
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = PaymentStatusPending
	}
	if p.PaymentProvider == "" {
		p.PaymentProvider = PaymentProviderMidtrans
	}
	return nil
}
