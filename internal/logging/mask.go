package logging

import (
	"go.uber.org/zap"

	"github.com/aman-churiwal/inquiry-webhook/internal/validation"
)

const birthdayPlaceholder = "****-**-**"

// MaskPhone keeps the first three and the last four characters and replaces
// every other digit with '*'. Separators are kept so the shape stays readable.
func MaskPhone(phone string) string {
	runes := []rune(phone)
	if len(runes) <= 7 {
		out := make([]rune, len(runes))
		for i, r := range runes {
			out[i] = maskDigit(r)
		}
		return string(out)
	}
	for i := 3; i < len(runes)-4; i++ {
		runes[i] = maskDigit(runes[i])
	}
	return string(runes)
}

func maskDigit(r rune) rune {
	if r >= '0' && r <= '9' {
		return '*'
	}
	return r
}

func MaskBirthday(birthday string) string {
	if birthday == "" {
		return ""
	}
	return birthdayPlaceholder
}

// InquiryFields renders an inquiry payload as log fields with phone and
// birthday masked.
func InquiryFields(p validation.InquiryPayload) []zap.Field {
	return []zap.Field{
		zap.String("name", deref(p.Name)),
		zap.String("phone", MaskPhone(deref(p.Phone))),
		zap.String("product", deref(p.Product)),
		zap.String("utm_campaign", deref(p.UTMCampaign)),
		zap.String("source_url", deref(p.SourceURL)),
		zap.String("date", deref(p.Date)),
		zap.String("birthday", MaskBirthday(deref(p.Birthday))),
		zap.String("sex", deref(p.Sex)),
		zap.Int("request_len", len([]rune(deref(p.Request)))),
	}
}

// RecruitFields is InquiryFields for the recruit payload.
func RecruitFields(p validation.RecruitPayload) []zap.Field {
	return []zap.Field{
		zap.String("name", deref(p.Name)),
		zap.String("phone", MaskPhone(deref(p.Phone))),
		zap.String("age", deref(p.Age)),
		zap.String("area", deref(p.Area)),
		zap.String("utm_campaign", deref(p.UTMCampaign)),
		zap.String("referer_page", deref(p.RefererPage)),
		zap.String("source_url", deref(p.SourceURL)),
		zap.String("date", deref(p.Date)),
		zap.Int("career_len", len([]rune(deref(p.Career)))),
		zap.Int("request_len", len([]rune(deref(p.Request)))),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
