// file: internals/features/finance/payments/model/payment_gateway_events_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GatewayEventStatus string

const (
	GatewayEventReceived  GatewayEventStatus = "received"
	GatewayEventProcessed GatewayEventStatus = "processed"
	GatewayEventIgnored   GatewayEventStatus = "ignored"
	GatewayEventFailed    GatewayEventStatus = "failed"
)

// PaymentGatewayEventModel logs every webhook call, valid or not, for replay.
type PaymentGatewayEventModel struct {
	GatewayEventID        uuid.UUID  `gorm:"type:uuid;primaryKey;column:gateway_event_id" json:"gateway_event_id"`
	GatewayEventPaymentID *uuid.UUID `gorm:"type:uuid;index;column:gateway_event_payment_id" json:"gateway_event_payment_id,omitempty"`

	GatewayEventProvider   string  `gorm:"type:varchar(20);not null;column:gateway_event_provider" json:"gateway_event_provider"`
	GatewayEventType       *string `gorm:"type:varchar(40);column:gateway_event_type" json:"gateway_event_type,omitempty"`
	GatewayEventExternalID *string `gorm:"type:varchar(80);index;column:gateway_event_external_id" json:"gateway_event_external_id,omitempty"`

	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload" json:"gateway_event_payload"`
	GatewayEventSignature *string        `gorm:"type:text;column:gateway_event_signature" json:"gateway_event_signature,omitempty"`

	GatewayEventStatus      GatewayEventStatus `gorm:"type:varchar(20);not null;column:gateway_event_status" json:"gateway_event_status"`
	GatewayEventError       *string            `gorm:"type:text;column:gateway_event_error" json:"gateway_event_error,omitempty"`
	GatewayEventProcessedAt *time.Time         `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at,omitempty"`

	GatewayEventCreatedAt time.Time `gorm:"autoCreateTime;column:gateway_event_created_at" json:"gateway_event_created_at"`
}

func (PaymentGatewayEventModel) TableName() string { return "payment_gateway_events" }

func (e *PaymentGatewayEventModel) BeforeCreate(tx *gorm.DB) error {
	if e.GatewayEventID == uuid.Nil {
		e.GatewayEventID = uuid.New()
	}
	if e.GatewayEventStatus == "" {
		e.GatewayEventStatus = GatewayEventReceived
	}
	return nil
}
