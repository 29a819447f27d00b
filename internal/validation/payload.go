package validation

// InquiryPayload is the body accepted by the lead-inquiry webhook. Every field
// is optional; a present field must be a string within its bound.
type InquiryPayload struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	Product     *string `json:"product" binding:"omitempty,max=100"`
	UTMCampaign *string `json:"utm_campaign" binding:"omitempty,max=100"`
	SourceURL   *string `json:"source_url" binding:"omitempty,max=2000"`
	Date        *string `json:"date" binding:"omitnil,datetime=2006-01-02"`
	Birthday    *string `json:"birthday" binding:"omitempty,max=20"`
	Sex         *string `json:"sex" binding:"omitempty,max=10"`
	Request     *string `json:"request" binding:"omitempty,max=5000"`
}

// RecruitPayload is the body accepted by the recruit webhook.
type RecruitPayload struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	Age         *string `json:"age" binding:"omitempty,max=20"`
	Area        *string `json:"area" binding:"omitempty,max=100"`
	Career      *string `json:"career" binding:"omitempty,max=5000"`
	Request     *string `json:"request" binding:"omitempty,max=5000"`
	RefererPage *string `json:"referer_page" binding:"omitempty,max=2000"`
	UTMCampaign *string `json:"utm_campaign" binding:"omitempty,max=100"`
	SourceURL   *string `json:"source_url" binding:"omitempty,max=2000"`
	Date        *string `json:"date" binding:"omitnil,datetime=2006-01-02"`
}

// Normalize returns the payload as a map holding every field, nil where the
// field was absent.
func (p InquiryPayload) Normalize() map[string]*string {
	return map[string]*string{
		"name":         p.Name,
		"phone":        p.Phone,
		"product":      p.Product,
		"utm_campaign": p.UTMCampaign,
		"source_url":   p.SourceURL,
		"date":         p.Date,
		"birthday":     p.Birthday,
		"sex":          p.Sex,
		"request":      p.Request,
	}
}

func (p RecruitPayload) Normalize() map[string]*string {
	return map[string]*string{
		"name":         p.Name,
		"phone":        p.Phone,
		"age":          p.Age,
		"area":         p.Area,
		"career":       p.Career,
		"request":      p.Request,
		"referer_page": p.RefererPage,
		"utm_campaign": p.UTMCampaign,
		"source_url":   p.SourceURL,
		"date":         p.Date,
	}
}
