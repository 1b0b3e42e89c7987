package model

import (
	"time"

	"github.com/google/uuid"

	"go-timeclock/internal/sales"
)

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentQR    PaymentMethod = "qr"
	PaymentOther PaymentMethod = "other"
)

// SalesTransaction is one sale rung up at the register. AttributedEmail is
// nil for sales credited to the shop as a whole.
type SalesTransaction struct {
	BaseModel
	AttributedEmail   *string       `gorm:"type:varchar(255);index" json:"attributed_email,omitempty" validate:"omitempty,email"`
	PaymentMethod     PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method" validate:"required,oneof=cash card qr other"`
	Amount            int64         `gorm:"not null" json:"amount" validate:"required,gt=0"`
	OccurredAt        time.Time     `gorm:"not null;index" json:"occurred_at"`
	RegisterSessionID *uuid.UUID    `gorm:"type:uuid;index" json:"register_session_id,omitempty"`
	Note              string        `gorm:"type:text" json:"note,omitempty"`
}

func (SalesTransaction) TableName() string {
	return "sales_transactions"
}

func (t *SalesTransaction) ToTransactionRecord() sales.TransactionRecord {
	return sales.TransactionRecord{
		ID:              t.ID.String(),
		AttributionKey:  t.AttributedEmail,
		PaymentCategory: string(t.PaymentMethod),
		Amount:          t.Amount,
		OccurredAt:      t.OccurredAt,
	}
}

// ToTransactionRecords converts a query result for the sales summary.
func ToTransactionRecords(txs []SalesTransaction) []sales.TransactionRecord {
	records := make([]sales.TransactionRecord, len(txs))
	for i := range txs {
		records[i] = txs[i].ToTransactionRecord()
	}
	return records
}
