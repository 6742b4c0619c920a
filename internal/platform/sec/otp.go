// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// GenerateNumericCode returns a uniformly distributed string of n decimal digits.
func GenerateNumericCode(n int) (string, error) {
	code := make([]byte, 0, n)
	buffer := make([]byte, n)

	for len(code) < n {
		if _, err := rand.Read(buffer); err != nil {
			return "", fmt.Errorf("sec: failed to read entropy: %w", err)
		}

		// Bytes >= 250 are rejected to keep every digit equally likely
		for _, b := range buffer {
			if b >= 250 {
				continue
			}
			code = append(code, '0'+b%10)
			if len(code) == n {
				break
			}
		}
	}

	return string(code), nil
}

// HashCode returns the hex SHA-256 digest of a one-time code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// DigestsMatch compares two code digests in constant time.
func DigestsMatch(submittedHash, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(submittedHash), []byte(storedHash)) == 1
}
