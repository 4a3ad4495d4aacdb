package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateTransactionID returns a unique id for a settled payment, e.g.
// TXN-1A2B3C4D5E6F.
func GenerateTransactionID() string {
	return fmt.Sprintf("TXN-%s", randomSuffix())
}

// GeneratePendingReference returns the placeholder id a payment carries
// between approval and settlement.
func GeneratePendingReference() string {
	return fmt.Sprintf("PENDING-%s", randomSuffix())
}

func randomSuffix() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(hex[:12])
}
