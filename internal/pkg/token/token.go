// Package token generates the opaque identifiers attached to orders.
// Both tokens are crypto-random so neither is guessable from order content.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O/1/I

// NewOrderNumber returns a human-readable unique order number,
// e.g. "ORD-20260831-K7KQ2M8Z".
func NewOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), string(buf)), nil
}

// NewTransactionID returns the reconciliation key shared with the payment
// gateway: 32 hex characters, no embedded structure.
func NewTransactionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
