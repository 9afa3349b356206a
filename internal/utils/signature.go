package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign generates an HMAC-SHA256 signature for exported statements
func Sign(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks a statement signature in constant time
func VerifySignature(data []byte, signature, secret string) bool {
	expected, err := hex.DecodeString(Sign(data, secret))
	if err != nil {
		return false
	}
	actual, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, actual)
}
