package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenerateOrderNo builds the human-readable order identifier shown to
// customers, e.g. ORD-20250114-7F3A9C.
func GenerateOrderNo(now time.Time) string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(b)))
}

// GenerateReceipt builds a gateway receipt id: prefix + base36 timestamp +
// random suffix, truncated to the gateway's 40-char limit.
func GenerateReceipt(prefix string, now time.Time) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	receipt := fmt.Sprintf("%s_%s_%s", prefix, strconv.FormatInt(now.Unix(), 36), hex.EncodeToString(b))
	if len(receipt) > 40 {
		receipt = receipt[:40]
	}
	return receipt
}

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}
