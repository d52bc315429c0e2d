package models

import (
	"regexp"
	"strings"
)

// SmsRecipient is a candidate extracted from a delivery slip photo.
type SmsRecipient struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Selected bool   `json:"selected"`
}

var phonePattern = regexp.MustCompile(`\+?\d[\d\s-]{7,}`)

var phoneNoise = strings.NewReplacer(" ", "", "\t", "", "-", "", "+", "")

// ExtractRecipients scans recognized text line by line and returns every line
// that carries both a phone-like number and a non-empty name, in input order.
// Matches are permissive on purpose: OCR output is noisy and the user reviews
// the list before sending.
func ExtractRecipients(text string) []SmsRecipient {
	var results []SmsRecipient
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		match := phonePattern.FindString(line)
		if match == "" {
			continue
		}

		name := strings.TrimSpace(strings.ReplaceAll(line, match, ""))
		if name == "" {
			continue
		}

		results = append(results, SmsRecipient{
			Name:     name,
			Phone:    phoneNoise.Replace(match),
			Selected: true,
		})
	}
	return results
}
