package models

import (
	"time"
)

// Outcomes recorded for a webhook delivery.
const (
	OutcomeInserted     = "inserted"
	OutcomeUpdated      = "updated"
	OutcomeIgnored      = "ignored"
	OutcomeUnauthorized = "unauthorized"
	OutcomeRateLimited  = "rate_limited"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

// Represents one webhook delivery attempt
type DeliveryLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
	Endpoint       string    `gorm:"type:varchar(20);index" json:"endpoint"`
	Outcome        string    `gorm:"type:varchar(20);index" json:"outcome"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMs int       `json:"response_time_ms"`
	SourceAddress  string    `json:"source_address"`
	UserAgent      string    `json:"user_agent"`
}

func (DeliveryLog) TableName() string {
	return "delivery_logs"
}
