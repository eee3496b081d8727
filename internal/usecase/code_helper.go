package usecase

import (
	"crypto/rand"
	"io"
)

// generateCode creates a secure, random, human-readable redemption code.
// Format: IPTV-XXXX-XXXX
func generateCode() (string, error) {
	// A character set that avoids ambiguous characters like O/0, I/1, l.
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 8

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}

	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}

	return "IPTV-" + string(buffer[0:4]) + "-" + string(buffer[4:8]), nil
}
