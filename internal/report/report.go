// Package report renders the markdown leadership update: pipeline overview,
// stage and sector tables, operational summary, data-quality notes, and
// takeaways, ready for founder-level consumption.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kalambet/boardbi/internal/normalize"
)

const topClientsLimit = 10

// Generate builds the leadership update from the two normalized datasets.
func Generate(work, deals normalize.Batch, now time.Time) string {
	var sections []string
	sections = append(sections, fmt.Sprintf("# Leadership Update — %s\n", now.Format("January 2, 2006")))

	sections = append(sections, pipelineOverview(deals)...)
	sections = append(sections, operationalSummary(work)...)
	sections = append(sections, qualityNotes(work, deals)...)
	sections = append(sections, takeaways(work, deals)...)

	sections = append(sections, "\n---\n_Report auto-generated by boardbi_")
	return strings.Join(sections, "\n")
}

func pipelineOverview(deals normalize.Batch) []string {
	out := []string{"## Pipeline Overview\n"}
	if len(deals.Records) == 0 {
		return append(out, "_No deals data available._\n")
	}

	total := len(deals.Records)
	out = append(out, fmt.Sprintf("- **Total Deals**: %d", total))

	sum, count := sumAmounts(deals.Records)
	if count > 0 {
		out = append(out,
			fmt.Sprintf("- **Total Pipeline Value**: ₹%s", formatAmount(sum)),
			fmt.Sprintf("- **Average Deal Size**: ₹%s", formatAmount(sum/float64(count))),
		)
	}

	if stages := countBy(deals.Records, func(r normalize.Record) string { return r.Status }); len(stages) > 0 {
		out = append(out, "\n### Deal Stage Distribution\n", "| Stage | Count | % |", "|-------|------:|--:|")
		for _, g := range stages {
			out = append(out, fmt.Sprintf("| %s | %d | %.0f%% |", g.key, g.count, float64(g.count)/float64(total)*100))
		}
	}

	sectors := countBy(deals.Records, func(r normalize.Record) string { return r.Category })
	if len(sectors) > 0 {
		out = append(out, "\n### Sector Breakdown\n", "| Sector | Deals |", "|--------|------:|")
		for _, g := range sectors {
			out = append(out, fmt.Sprintf("| %s | %d |", g.key, g.count))
		}

		// Revenue by sector, strictly descending by sum; ties break by
		// sector name ascending.
		revenue := sumBy(deals.Records, func(r normalize.Record) string { return r.Category })
		if len(revenue) > 0 {
			out = append(out, "\n### Revenue by Sector\n", "| Sector | Revenue |", "|--------|--------:|")
			for _, g := range revenue {
				out = append(out, fmt.Sprintf("| %s | ₹%s |", g.key, formatAmount(g.sum)))
			}
		}
	}

	return out
}

func operationalSummary(work normalize.Batch) []string {
	out := []string{"\n## Operational Summary\n"}
	if len(work.Records) == 0 {
		return append(out, "_No work orders data available._\n")
	}

	out = append(out, fmt.Sprintf("- **Total Work Orders**: %d", len(work.Records)))

	if statuses := countBy(work.Records, func(r normalize.Record) string { return r.Status }); len(statuses) > 0 {
		out = append(out, "\n### Project Status\n", "| Status | Count |", "|--------|------:|")
		for _, g := range statuses {
			out = append(out, fmt.Sprintf("| %s | %d |", g.key, g.count))
		}
	}

	if clients := countBy(work.Records, func(r normalize.Record) string { return r.Client }); len(clients) > 0 {
		if len(clients) > topClientsLimit {
			clients = clients[:topClientsLimit]
		}
		out = append(out, "\n### Top Clients (by Work Orders)\n", "| Client | Projects |", "|--------|--------:|")
		for _, g := range clients {
			out = append(out, fmt.Sprintf("| %s | %d |", g.key, g.count))
		}
	}

	return out
}

func qualityNotes(work, deals normalize.Batch) []string {
	out := []string{"\n## Data Quality Notes\n"}
	var issues []string
	for _, ds := range []struct {
		label string
		batch normalize.Batch
	}{{"Deals", deals}, {"Work Orders", work}} {
		if len(ds.batch.Records) == 0 {
			issues = append(issues, fmt.Sprintf("- %s: no data loaded", ds.label))
			continue
		}
		if pct := ds.batch.Quality.MissingPercent(); pct > 10 {
			issues = append(issues, fmt.Sprintf("- %s: %.0f%% of tracked fields are missing or unparseable", ds.label, pct))
		}
	}
	if len(issues) == 0 {
		return append(out, "- Data quality looks good across both boards.")
	}
	return append(out, issues...)
}

func takeaways(work, deals normalize.Batch) []string {
	out := []string{"\n## Key Takeaways\n"}
	var items []string

	if byStage := sumBy(deals.Records, func(r normalize.Record) string { return r.Status }); len(byStage) > 0 && byStage[0].sum > 0 {
		items = append(items, fmt.Sprintf("Highest pipeline value is in **%s** stage (₹%s)",
			byStage[0].key, formatAmount(byStage[0].sum)))
	}
	if bySector := countBy(deals.Records, func(r normalize.Record) string { return r.Category }); len(bySector) > 0 {
		items = append(items, fmt.Sprintf("**%s** leads in deal count (%d deals)", bySector[0].key, bySector[0].count))
	}

	active := 0
	for _, r := range work.Records {
		if r.Status == "In Progress" {
			active++
		}
	}
	if active > 0 {
		items = append(items, fmt.Sprintf("%d work orders currently in progress", active))
	}

	if len(items) == 0 {
		items = append(items, "Insufficient structured data to generate automated takeaways")
	}
	for _, item := range items {
		out = append(out, "- "+item)
	}
	return out
}

type group struct {
	key   string
	count int
	sum   float64
}

// countBy tallies records per key, ordered by count descending then key
// ascending. Empty and unknown keys are skipped.
func countBy(records []normalize.Record, keyOf func(normalize.Record) string) []group {
	return groupRecords(records, keyOf, func(a, b group) bool {
		if a.count != b.count {
			return a.count > b.count
		}
		return a.key < b.key
	})
}

// sumBy totals parseable amounts per key, ordered by sum descending then key
// ascending. Records without an amount contribute to count only.
func sumBy(records []normalize.Record, keyOf func(normalize.Record) string) []group {
	return groupRecords(records, keyOf, func(a, b group) bool {
		if a.sum != b.sum {
			return a.sum > b.sum
		}
		return a.key < b.key
	})
}

func groupRecords(records []normalize.Record, keyOf func(normalize.Record) string, less func(a, b group) bool) []group {
	byKey := make(map[string]*group)
	for _, r := range records {
		key := strings.TrimSpace(keyOf(r))
		if key == "" || key == "unknown" {
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
		}
		g.count++
		if r.HasAmount {
			g.sum += r.Amount
		}
	}
	out := make([]group, 0, len(byKey))
	for _, g := range byKey {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func sumAmounts(records []normalize.Record) (float64, int) {
	var sum float64
	count := 0
	for _, r := range records {
		if r.HasAmount {
			sum += r.Amount
			count++
		}
	}
	return sum, count
}

// formatAmount renders a value with thousands separators (western grouping).
func formatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := fmt.Sprintf("%.0f", v)
	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}
