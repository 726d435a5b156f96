// Package summarize reduces a normalized dataset into grouped aggregates and
// a bounded record sample sized to fit a language-model prompt budget. It is
// domain-agnostic: question-specific reasoning belongs to the model, which
// receives the full summary regardless of question content.
package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kalambet/boardbi/internal/normalize"
)

const defaultMaxTokens = 4000

// GroupAggregate is the sum and count of records sharing one group key.
// Records with no parseable amount are counted in Absent and excluded from
// Sum; absent and zero are never conflated.
type GroupAggregate struct {
	Key    string
	Sum    float64
	Count  int
	Absent int
}

// Summary is the ephemeral per-request reduction of one dataset.
type Summary struct {
	Name       string
	Total      int
	ByCategory []GroupAggregate
	ByStatus   []GroupAggregate
	Sample     []normalize.Record
	// Sampled is true when the record sample was truncated to fit the
	// token budget; false means the full dataset is included.
	Sampled bool
	Quality normalize.Quality
}

// Summarizer renders dataset summaries within a token budget.
type Summarizer struct {
	MaxTokens int
}

// New creates a Summarizer with the given prompt-token budget for a single
// dataset. If maxTokens <= 0 the default (4000) is used.
func New(maxTokens int) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Summarizer{MaxTokens: maxTokens}
}

// Summarize aggregates a batch by category and status and selects a record
// sample that keeps the rendered summary within the token budget.
func (s *Summarizer) Summarize(name string, batch normalize.Batch) Summary {
	sum := Summary{
		Name:       name,
		Total:      len(batch.Records),
		ByCategory: aggregate(batch.Records, func(r normalize.Record) string { return r.Category }),
		ByStatus:   aggregate(batch.Records, func(r normalize.Record) string { return r.Status }),
		Quality:    batch.Quality,
	}

	// Stable sort by date descending; records without a date sort last so
	// the sample favors recent activity.
	sample := make([]normalize.Record, len(batch.Records))
	copy(sample, batch.Records)
	sort.SliceStable(sample, func(i, j int) bool {
		a, b := sample[i], sample[j]
		if a.HasDate != b.HasDate {
			return a.HasDate
		}
		return a.Date.After(b.Date)
	})

	// Halt sampling once the rendered summary would exceed the budget.
	base := EstimateTokens(renderAggregates(sum))
	remaining := s.MaxTokens - base
	for _, rec := range sample {
		line := renderRecord(rec)
		tokens := EstimateTokens(line)
		if tokens > remaining {
			sum.Sampled = true
			break
		}
		sum.Sample = append(sum.Sample, rec)
		remaining -= tokens
	}

	return sum
}

// aggregate groups records by key, summing parseable amounts and counting
// absent ones separately. Output is ordered by descending sum, ties broken
// by key ascending. Records with an empty key are skipped.
func aggregate(records []normalize.Record, keyOf func(normalize.Record) string) []GroupAggregate {
	byKey := make(map[string]*GroupAggregate)
	for _, rec := range records {
		key := keyOf(rec)
		if key == "" {
			continue
		}
		agg, ok := byKey[key]
		if !ok {
			agg = &GroupAggregate{Key: key}
			byKey[key] = agg
		}
		agg.Count++
		if rec.HasAmount {
			agg.Sum += rec.Amount
		} else {
			agg.Absent++
		}
	}

	out := make([]GroupAggregate, 0, len(byKey))
	for _, agg := range byKey {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sum != out[j].Sum {
			return out[i].Sum > out[j].Sum
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Render produces the textual context block handed to the language model.
func (s Summary) Render() string {
	var sb strings.Builder
	sb.WriteString(renderAggregates(s))
	if len(s.Sample) > 0 {
		if s.Sampled {
			fmt.Fprintf(&sb, "\nSample (%d most recent of %d records):\n", len(s.Sample), s.Total)
		} else {
			fmt.Fprintf(&sb, "\nAll %d records:\n", s.Total)
		}
		for _, rec := range s.Sample {
			sb.WriteString(renderRecord(rec))
		}
	}
	return sb.String()
}

func renderAggregates(s Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s ===\n", strings.ToUpper(s.Name))
	if s.Total == 0 {
		sb.WriteString("No data available.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Total records: %d\n", s.Total)

	writeGroups := func(label string, groups []GroupAggregate) {
		if len(groups) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s:\n", label)
		for _, g := range groups {
			fmt.Fprintf(&sb, "  - %s: total=%.0f, count=%d", g.Key, g.Sum, g.Count)
			if g.Absent > 0 {
				fmt.Fprintf(&sb, " (%d without amount)", g.Absent)
			}
			sb.WriteString("\n")
		}
	}
	writeGroups("By category", s.ByCategory)
	writeGroups("By status", s.ByStatus)

	q := s.Quality
	fmt.Fprintf(&sb, "\nData quality: %d/%d missing dates, %d/%d missing amounts, %d/%d unrecognized categories\n",
		q.MissingDate, q.Total, q.MissingAmount, q.Total, q.UnknownCategory, q.Total)
	return sb.String()
}

func renderRecord(rec normalize.Record) string {
	parts := []string{rec.Name}
	if rec.HasDate {
		parts = append(parts, rec.Date.Format("2006-01-02"))
	}
	if rec.HasAmount {
		parts = append(parts, fmt.Sprintf("%.0f %s", rec.Amount, rec.Currency))
	}
	if rec.Category != "" && rec.Category != "unknown" {
		parts = append(parts, rec.Category)
	}
	if rec.Status != "" {
		parts = append(parts, rec.Status)
	}
	if rec.Client != "" {
		parts = append(parts, rec.Client)
	}
	return "  - " + strings.Join(parts, " | ") + "\n"
}

// EstimateTokens provides a rough token count using 4 chars per token heuristic.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
