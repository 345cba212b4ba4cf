package security

import "strings"

const maskString = "****"

// MaskSecret redacts an API credential for echoing in API responses.
// Keys longer than 8 characters keep the first and last 4; shorter keys keep
// only the last 4 behind the mask. Empty input stays empty.
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	if len(secret) > 8 {
		return secret[:4] + maskString + secret[len(secret)-4:]
	}
	if len(secret) <= 4 {
		return maskString + secret
	}
	return maskString + secret[len(secret)-4:]
}
