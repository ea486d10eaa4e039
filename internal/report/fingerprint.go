package report

import (
	"encoding/hex"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"

	"saaspulse/pkg/contracts/domain"
)

// Fingerprint returns a BLAKE2b-256 digest of the table contents. Record
// order does not affect the result.
func Fingerprint(table *domain.Table) string {
	lines := make([]string, 0, table.Len())
	for _, r := range table.Records() {
		lines = append(lines, r.CustomerID+"\x1f"+
			r.ChargeTimestamp.UTC().Format(time.RFC3339Nano)+"\x1f"+
			r.Amount.String())
	}
	sort.Strings(lines)

	h, _ := blake2b.New256(nil)
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
