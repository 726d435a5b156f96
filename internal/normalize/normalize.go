// Package normalize cleans raw board records into a consistent shape:
// parsed dates, numeric amounts with currency units, and canonical category
// labels. Normalization never fails; unparseable fields degrade to absent
// and are counted in the batch quality flags.
package normalize

import (
	"strings"
	"time"

	"github.com/kalambet/boardbi/internal/monday"
)

// Record is a cleaned board item. Absent values are signaled by the Has*
// flags; a zero Amount with HasAmount=false must never be summed as zero.
// Raw retains the original fields for fallback display.
type Record struct {
	ID            string
	Name          string
	Group         string
	Date          time.Time
	HasDate       bool
	Amount        float64
	Currency      string
	HasAmount     bool
	Category      string
	CategoryKnown bool
	Status        string
	Client        string
	Raw           map[string]string
}

// Quality aggregates per-batch data-quality counts. Degradations are
// recorded here rather than surfaced as errors on individual records.
type Quality struct {
	Total           int
	MissingDate     int
	MissingAmount   int
	UnknownCategory int
}

// MissingPercent returns the share of the three tracked fields that were
// absent across the batch, as a percentage.
func (q Quality) MissingPercent() float64 {
	if q.Total == 0 {
		return 0
	}
	tracked := 3 * q.Total
	missing := q.MissingDate + q.MissingAmount + q.UnknownCategory
	return float64(missing) / float64(tracked) * 100
}

// Batch is the output of normalizing a fetched dataset.
type Batch struct {
	Records []Record
	Quality Quality
}

// Normalizer holds the configured synonym table and primary currency.
// The zero value is not usable; construct with New.
type Normalizer struct {
	synonyms        map[string]string
	primaryCurrency string
}

// New creates a Normalizer. Empty arguments fall back to the default
// synonym table and INR.
func New(synonyms map[string]string, primaryCurrency string) *Normalizer {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	if primaryCurrency == "" {
		primaryCurrency = "INR"
	}
	folded := make(map[string]string, len(synonyms))
	for k, v := range synonyms {
		folded[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &Normalizer{synonyms: folded, primaryCurrency: primaryCurrency}
}

// Canonical maps a raw categorical value to its canonical label. Unrecognized
// values pass through as their trimmed original; the second return reports
// whether the value was found in the synonym table.
func (n *Normalizer) Canonical(raw string) (string, bool) {
	trimmed := strings.Join(strings.Fields(raw), " ")
	if trimmed == "" {
		return "unknown", false
	}
	if canon, ok := n.synonyms[strings.ToLower(trimmed)]; ok {
		return canon, true
	}
	return trimmed, false
}

// NormalizeRecord cleans a single board record using the resolved column
// role binding. Pure: the same input always yields the same output.
func (n *Normalizer) NormalizeRecord(rec monday.BoardRecord, binding monday.RoleBinding) Record {
	out := Record{
		ID:       rec.ID,
		Name:     rec.Name,
		Group:    rec.Group,
		Category: "unknown",
		Raw:      rec.Fields,
	}

	if label := binding.Label(monday.RoleDate); label != monday.Unmapped {
		if t, ok := ParseDate(rec.Fields[label]); ok {
			out.Date = t
			out.HasDate = true
		}
	}
	if label := binding.Label(monday.RoleAmount); label != monday.Unmapped {
		if amt, ok := ParseAmount(rec.Fields[label], n.primaryCurrency); ok {
			out.Amount = amt.Value
			out.Currency = amt.Currency
			out.HasAmount = true
		}
	}
	if label := binding.Label(monday.RoleCategory); label != monday.Unmapped {
		if raw := rec.Fields[label]; raw != "" {
			out.Category, out.CategoryKnown = n.Canonical(raw)
		}
	}
	if label := binding.Label(monday.RoleStatus); label != monday.Unmapped {
		if raw := rec.Fields[label]; raw != "" {
			out.Status, _ = n.Canonical(raw)
		}
	}
	if label := binding.Label(monday.RoleClient); label != monday.Unmapped {
		out.Client = strings.TrimSpace(rec.Fields[label])
	}

	return out
}

// NormalizeBatch cleans a fetched dataset and tallies data-quality flags.
func (n *Normalizer) NormalizeBatch(records []monday.BoardRecord, binding monday.RoleBinding) Batch {
	batch := Batch{
		Records: make([]Record, 0, len(records)),
		Quality: Quality{Total: len(records)},
	}
	for _, rec := range records {
		norm := n.NormalizeRecord(rec, binding)
		if !norm.HasDate {
			batch.Quality.MissingDate++
		}
		if !norm.HasAmount {
			batch.Quality.MissingAmount++
		}
		if !norm.CategoryKnown {
			batch.Quality.UnknownCategory++
		}
		batch.Records = append(batch.Records, norm)
	}
	return batch
}
