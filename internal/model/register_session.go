package model

import "time"

// RegisterSession is one opening-to-closing period of the cash register.
// The expected cash and its difference are filled in on close.
type RegisterSession struct {
	BaseModel
	OpenedByEmail string     `gorm:"type:varchar(255);not null" json:"opened_by_email"`
	ClosedByEmail string     `gorm:"type:varchar(255)" json:"closed_by_email,omitempty"`
	OpenedAt      time.Time  `gorm:"not null;index" json:"opened_at"`
	ClosedAt      *time.Time `gorm:"index" json:"closed_at,omitempty"`
	OpeningCash   int64      `gorm:"not null" json:"opening_cash" validate:"gte=0"`
	CashSales     int64      `json:"cash_sales"`
	ExpectedCash  *int64     `json:"expected_cash,omitempty"`
	CountedCash   *int64     `json:"counted_cash,omitempty"`
	Difference    *int64     `json:"difference,omitempty"`
	Note          string     `gorm:"type:text" json:"note,omitempty"`
}

func (RegisterSession) TableName() string {
	return "register_sessions"
}

func (s *RegisterSession) IsOpen() bool {
	return s.ClosedAt == nil
}
