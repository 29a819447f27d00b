package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecruitInquiry is a job application submitted through the recruit webhook.
// It is deduplicated on phone alone.
type RecruitInquiry struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"type:varchar(100)" json:"name"`
	Phone       string         `gorm:"type:varchar(20);index:idx_recruit_dedupe,priority:1" json:"phone"`
	Age         string         `gorm:"type:varchar(20)" json:"age"`
	Area        string         `gorm:"type:varchar(100)" json:"area"`
	Career      string         `gorm:"type:text" json:"career"`
	Request     string         `gorm:"type:text" json:"request"`
	RefererPage string         `gorm:"type:text" json:"referer_page"`
	UTMCampaign string         `gorm:"column:utm_campaign;type:varchar(100)" json:"utm_campaign"`
	SourceURL   string         `gorm:"type:text" json:"source_url"`
	InquiryDate datatypes.Date `gorm:"not null" json:"inquiry_date"`
	CreatedAt   time.Time      `gorm:"index:idx_recruit_dedupe,priority:2,sort:desc" json:"created_at"`
}

func (r *RecruitInquiry) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (RecruitInquiry) TableName() string {
	return "recruit_inquiries"
}
