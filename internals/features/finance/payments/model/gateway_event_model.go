package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentGatewayEventModel: log notifikasi gateway, satu baris per order_id.
// Status processed = sudah dibukukan, notifikasi ulang diabaikan.
type PaymentGatewayEventModel struct {
	GatewayEventID        uuid.UUID      `gorm:"column:gateway_event_id;type:uuid;primaryKey" json:"gateway_event_id"`
	GatewayEventOrderID   string         `gorm:"column:gateway_event_order_id;size:100;not null;uniqueIndex:uq_gateway_event_order" json:"gateway_event_order_id"`
	GatewayEventPaymentID *uuid.UUID     `gorm:"column:gateway_event_payment_id;type:uuid;index" json:"gateway_event_payment_id,omitempty"`
	GatewayEventTxStatus  string         `gorm:"column:gateway_event_tx_status;size:30" json:"gateway_event_tx_status"`
	GatewayEventFraud     string         `gorm:"column:gateway_event_fraud;size:30" json:"gateway_event_fraud"`
	GatewayEventGross     float64        `gorm:"column:gateway_event_gross;type:numeric(12,2);not null;default:0" json:"gateway_event_gross"`
	GatewayEventStatus    string         `gorm:"column:gateway_event_status;size:20;not null;default:'received'" json:"gateway_event_status"` // received | processed | ignored | failed
	GatewayEventError     *string        `gorm:"column:gateway_event_error;type:text" json:"gateway_event_error,omitempty"`
	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload" json:"gateway_event_payload"`

	GatewayEventCreatedAt time.Time `gorm:"column:gateway_event_created_at;autoCreateTime" json:"gateway_event_created_at"`
	GatewayEventUpdatedAt time.Time `gorm:"column:gateway_event_updated_at;autoUpdateTime" json:"gateway_event_updated_at"`
}

func (PaymentGatewayEventModel) TableName() string { return "payment_gateway_events" }

func (m *PaymentGatewayEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.GatewayEventID == uuid.Nil {
		m.GatewayEventID = uuid.New()
	}
	return nil
}
