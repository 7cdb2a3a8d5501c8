package gateway

import "strings"

// NormalizePhone reduces a raw phone entry to the digits the gateway
// expects. National numbers (10 or 11 digits) get the seller's country
// calling code prefixed; longer numbers are assumed to carry one already.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	countryCode = strings.TrimSpace(countryCode)
	if countryCode != "" && (len(digits) == 10 || len(digits) == 11) {
		digits = countryCode + digits
	}
	return digits
}
