package equity

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/etnz/equity/date"
)

// hashTransactions returns a 16-byte blake3 content hash of sorted, normalized
// transactions and the valuation day. Any change in the transactions changes
// the key.
func hashTransactions(txs []Transaction, today date.Date) string {
	h := blake3.New()
	fmt.Fprintf(h, "asof=%s\n", today)
	for _, tx := range txs {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s\n", tx.Date, tx.Type, tx.Ticker, tx.Quantity.String(), tx.Price.String(), tx.Fees.String())
	}
	buf := make([]byte, 16)
	if _, err := h.Digest().Read(buf); err != nil {
		// the digest is an infinite xof reader, it cannot fail.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
