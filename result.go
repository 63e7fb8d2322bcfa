package mailreach

import "time"

// BatchResult is the outcome of RunBatch. Records are in submission order,
// blanks excluded. Aggregates are computed after every record is final.
type BatchResult struct {
	ID      string          `json:"id"`
	Records []AddressRecord `json:"records"`

	TotalSubmitted     int     `json:"totalSubmitted"`
	UniqueCount        int     `json:"uniqueCount"`
	DuplicateCount     int     `json:"duplicateCount"`
	DeliverableCount   int     `json:"deliverableCount"`
	RiskyCount         int     `json:"riskyCount"`
	DeliverablePercent float64 `json:"deliverablePercent"`

	// Units is what the caller has to debit for this batch. Duplicates
	// are charged.
	Units int `json:"units"`

	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Deliverable returns the records whose recipient was accepted.
func (r BatchResult) Deliverable() []AddressRecord {
	var out []AddressRecord
	for _, rec := range r.Records {
		if rec.SMTPDeliverable {
			out = append(out, rec)
		}
	}
	return out
}

// Risky returns the records classified as risky.
func (r BatchResult) Risky() []AddressRecord {
	var out []AddressRecord
	for _, rec := range r.Records {
		if rec.IsRisky {
			out = append(out, rec)
		}
	}
	return out
}
