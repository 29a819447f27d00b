package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Inquiry is a lead submitted through the inquiry webhook. Within the dedupe
// window there is at most one row per (phone, utm_campaign).
type Inquiry struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CustomerName string         `gorm:"type:varchar(100)" json:"customer_name"`
	Phone        string         `gorm:"type:varchar(20);index:idx_inquiries_dedupe,priority:1" json:"phone"`
	ProductName  string         `gorm:"type:varchar(100)" json:"product_name"`
	UTMCampaign  string         `gorm:"column:utm_campaign;type:varchar(100);index:idx_inquiries_dedupe,priority:2" json:"utm_campaign"`
	SourceURL    string         `gorm:"type:text" json:"source_url"`
	InquiryDate  datatypes.Date `gorm:"not null" json:"inquiry_date"`
	Birthday     string         `gorm:"type:varchar(20)" json:"birthday"`
	Sex          string         `gorm:"type:varchar(10)" json:"sex"`
	Request      string         `gorm:"type:text" json:"request"`
	CreatedAt    time.Time      `gorm:"index:idx_inquiries_dedupe,priority:3,sort:desc" json:"created_at"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Inquiry) TableName() string {
	return "inquiries"
}
