package domain

import "time"

// TransactionRecord is one entry of the recent-signature history. Time is
// zero when the chain has not reported a block time for the slot yet.
type TransactionRecord struct {
	Signature string
	Slot      uint64
	Time      time.Time
}

func (r TransactionRecord) ShortSignature() string {
	return shortenOpaque(r.Signature)
}

func (r TransactionRecord) FormatTime() string {
	if r.Time.IsZero() {
		return "-"
	}

	return r.Time.Format("2006-01-02 15:04:05")
}
