// Package intent recognises structured customer intents in free-text chat messages.
//
// Extraction and classification are pure functions: they never fail, hold no
// state and are safe for concurrent use.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// PhoneNumberDigits is the length of a valid customer phone number
const PhoneNumberDigits = 11

var (
	orderNumberPattern = regexp.MustCompile(`[A-Z]{2}\d{8}`)

	// 11 consecutive digits, or 11 digits grouped 3-4-4 / 4-4-3 with optional hyphen or space separators
	phoneNumberPattern = regexp.MustCompile(`\d{11}|\d{3}[-\s]?\d{4}[-\s]?\d{4}|\d{4}[-\s]?\d{4}[-\s]?\d{3}`)

	orderItemPattern     = regexp.MustCompile(`(?i)([^()]+)\s*\((\d+)\s*(?:pack|packs|can|cans|bottle|bottles)\)`)
	orderQuantityPattern = regexp.MustCompile(`(?i)\(\d+\s*(?:pack|packs|can|cans|bottle|bottles)\)`)

	// "and", then an optional order phrase such as "I want" or "please buy"
	orderLeadIn = regexp.MustCompile(`(?i)^(?:and\s+)?(?:(?:please\s+)?(?:i\s+)?(?:(?:would\s+like|want|need)\s+to\s+)?(?:order|buy|purchase|want|need|get)\b\s*:?\s*)?`)
)

// ExtractOrderNumber returns the first order number (two capital letters and
// eight digits) in text.
func ExtractOrderNumber(text string) (string, bool) {
	match := orderNumberPattern.FindString(text)
	return match, match != ""
}

// ExtractReason returns the text following the first occurrence of orderNumber,
// trimmed. It is empty when nothing follows or orderNumber is not in text.
func ExtractReason(text, orderNumber string) string {
	if orderNumber == "" {
		return ""
	}
	idx := strings.Index(text, orderNumber)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(orderNumber):])
}

// ExtractPhoneNumber returns the digits of the first phone number in text.
// The result always has exactly PhoneNumberDigits digits.
func ExtractPhoneNumber(text string) (string, bool) {
	match := phoneNumberPattern.FindString(text)
	if match == "" {
		return "", false
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match)
	if len(digits) != PhoneNumberDigits {
		return "", false
	}
	return digits, true
}

// ExtractOrderItems returns every "Name (quantity unit)" entry in text, left to
// right. Units are limited to pack(s), can(s) and bottle(s); anything else is
// ignored. Repeated names are kept as separate entries.
func ExtractOrderItems(text string) []domain.OrderItem {
	matches := orderItemPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	items := make([]domain.OrderItem, 0, len(matches))
	for _, m := range matches {
		qty, err := strconv.Atoi(m[2])
		if err != nil || qty <= 0 {
			continue
		}
		name := cleanItemName(m[1])
		if name == "" {
			continue
		}
		items = append(items, domain.OrderItem{Name: name, Quantity: qty})
	}
	return items
}

// HasOrderQuantity reports whether text contains a "(quantity unit)" group
func HasOrderQuantity(text string) bool {
	return orderQuantityPattern.MatchString(text)
}

func cleanItemName(raw string) string {
	name := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;:&-", r)
	})
	name = orderLeadIn.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
