package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the host is broken; fall back to time bits
		// so ID generation never blocks a donation.
		return strings.ToUpper(fmt.Sprintf("%0*x", n, time.Now().UnixNano()))[:n]
	}
	return strings.ToUpper(hex.EncodeToString(buf))[:n]
}

// GenerateTransactionNo returns a donation transaction reference of the form
// DON-<epoch-ms>-<8 hex chars>.
func GenerateTransactionNo() string {
	return fmt.Sprintf("DON-%d-%s", time.Now().UnixMilli(), randomHex(8))
}

// GenerateReceiptNo returns a receipt reference of the form
// RCP-<epoch-ms>-<8 hex chars>.
func GenerateReceiptNo() string {
	return fmt.Sprintf("RCP-%d-%s", time.Now().UnixMilli(), randomHex(8))
}

// GenerateFileSuffix returns a short hex tag appended to generated upload
// filenames so two uploads in the same millisecond cannot collide.
func GenerateFileSuffix() string {
	return randomHex(4)
}

// NormalizePhone strips the Tanzanian country code from a subscriber number.
// "+255769080629", "255769080629" and "769080629" all come back "769080629".
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.ReplaceAll(p, " ", "")
	p = strings.TrimPrefix(p, "+")
	p = strings.TrimPrefix(p, "255")
	p = strings.TrimPrefix(p, "0")
	return p
}

// InternationalPhone renders a local subscriber number in 255-prefixed form,
// which is what the gateway initiation APIs expect.
func InternationalPhone(phone string) string {
	return "255" + NormalizePhone(phone)
}
