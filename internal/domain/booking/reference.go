package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const referenceChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const referenceSuffixLen = 4

// GenerateReference creates a booking reference in the format
// "BK-YYYYMMDD-XXXX", where the date is the UTC creation date and the suffix
// is drawn from the 36-symbol uppercase-alphanumeric alphabet. Uniqueness is
// enforced by the caller against the store.
func GenerateReference(createdAt time.Time) (string, error) {
	suffix := make([]byte, referenceSuffixLen)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		suffix[i] = referenceChars[n.Int64()]
	}
	return fmt.Sprintf("BK-%s-%s", createdAt.UTC().Format("20060102"), suffix), nil
}
