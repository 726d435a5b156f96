package report

import (
	"strings"
	"testing"
	"time"

	"github.com/kalambet/boardbi/internal/normalize"
)

var reportNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func deal(category, status string, amount float64, hasAmount bool) normalize.Record {
	return normalize.Record{
		Name:      "deal",
		Category:  category,
		Status:    status,
		Amount:    amount,
		HasAmount: hasAmount,
		Currency:  "INR",
	}
}

func workOrder(client, status string) normalize.Record {
	return normalize.Record{Name: "wo", Client: client, Status: status}
}

func TestGenerate_PipelineOverview(t *testing.T) {
	deals := normalize.Batch{
		Records: []normalize.Record{
			deal("Energy", "Negotiation", 250000, true),
			deal("Energy", "Won", 750000, true),
			deal("Telecom", "Negotiation", 0, false),
		},
		Quality: normalize.Quality{Total: 3, MissingAmount: 1},
	}

	out := Generate(normalize.Batch{}, deals, reportNow)

	if !strings.Contains(out, "# Leadership Update — June 15, 2024") {
		t.Errorf("missing dated title:\n%s", out)
	}
	if !strings.Contains(out, "- **Total Deals**: 3") {
		t.Errorf("missing deal count:\n%s", out)
	}
	// Only the two parseable amounts are totaled and averaged.
	if !strings.Contains(out, "- **Total Pipeline Value**: ₹1,000,000") {
		t.Errorf("missing pipeline value:\n%s", out)
	}
	if !strings.Contains(out, "- **Average Deal Size**: ₹500,000") {
		t.Errorf("missing average deal size:\n%s", out)
	}
	if !strings.Contains(out, "| Negotiation | 2 | 67% |") {
		t.Errorf("missing stage distribution:\n%s", out)
	}
}

func TestGenerate_RevenueBySectorOrdering(t *testing.T) {
	deals := normalize.Batch{Records: []normalize.Record{
		deal("Mining", "Won", 100, true),
		deal("Energy", "Won", 500, true),
		deal("Telecom", "Won", 500, true),
	}}

	out := Generate(normalize.Batch{}, deals, reportNow)

	// Descending by revenue, ties broken alphabetically.
	energy := strings.Index(out, "| Energy | ₹500 |")
	telecom := strings.Index(out, "| Telecom | ₹500 |")
	mining := strings.Index(out, "| Mining | ₹100 |")
	if energy < 0 || telecom < 0 || mining < 0 {
		t.Fatalf("revenue rows missing:\n%s", out)
	}
	if !(energy < telecom && telecom < mining) {
		t.Errorf("revenue rows out of order (energy=%d telecom=%d mining=%d)", energy, telecom, mining)
	}
}

func TestGenerate_OperationalSummaryTopClients(t *testing.T) {
	var records []normalize.Record
	for i := range 12 {
		records = append(records, workOrder(string(rune('A'+i)), "In Progress"))
	}
	records = append(records, workOrder("A", "Done"), workOrder("A", "Done"))
	work := normalize.Batch{Records: records}

	out := Generate(work, normalize.Batch{}, reportNow)

	if !strings.Contains(out, "- **Total Work Orders**: 14") {
		t.Errorf("missing work order count:\n%s", out)
	}
	if !strings.Contains(out, "| A | 3 |") {
		t.Errorf("top client A missing:\n%s", out)
	}
	// 12 distinct clients, table capped at 10.
	if got := strings.Count(out[strings.Index(out, "Top Clients"):], "\n| "); got != 10+1 { // header row plus 10 clients
		t.Errorf("top clients rows = %d, want 11 including header separator context:\n%s", got, out)
	}
}

func TestGenerate_QualityNotes(t *testing.T) {
	deals := normalize.Batch{
		Records: []normalize.Record{deal("Energy", "Won", 100, true)},
		Quality: normalize.Quality{Total: 10, MissingDate: 4},
	}
	out := Generate(normalize.Batch{}, deals, reportNow)
	if !strings.Contains(out, "- Work Orders: no data loaded") {
		t.Errorf("missing empty-dataset note:\n%s", out)
	}
	if !strings.Contains(out, "missing or unparseable") {
		t.Errorf("missing quality issue for deals:\n%s", out)
	}

	clean := normalize.Batch{
		Records: []normalize.Record{deal("Energy", "Won", 100, true)},
		Quality: normalize.Quality{Total: 1},
	}
	out = Generate(clean, clean, reportNow)
	if !strings.Contains(out, "Data quality looks good") {
		t.Errorf("expected clean quality note:\n%s", out)
	}
}

func TestGenerate_Takeaways(t *testing.T) {
	deals := normalize.Batch{Records: []normalize.Record{
		deal("Energy", "Negotiation", 800, true),
		deal("Energy", "Won", 200, true),
		deal("Telecom", "Won", 300, true),
	}}
	work := normalize.Batch{Records: []normalize.Record{
		workOrder("Acme", "In Progress"),
		workOrder("Globex", "In Progress"),
		workOrder("Initech", "Done"),
	}}

	out := Generate(work, deals, reportNow)

	if !strings.Contains(out, "Highest pipeline value is in **Negotiation** stage (₹800)") {
		t.Errorf("missing stage takeaway:\n%s", out)
	}
	if !strings.Contains(out, "**Energy** leads in deal count (2 deals)") {
		t.Errorf("missing sector takeaway:\n%s", out)
	}
	if !strings.Contains(out, "2 work orders currently in progress") {
		t.Errorf("missing in-progress takeaway:\n%s", out)
	}
}

func TestGenerate_EmptyDatasets(t *testing.T) {
	out := Generate(normalize.Batch{}, normalize.Batch{}, reportNow)
	if !strings.Contains(out, "_No deals data available._") {
		t.Errorf("missing empty deals placeholder:\n%s", out)
	}
	if !strings.Contains(out, "_No work orders data available._") {
		t.Errorf("missing empty work orders placeholder:\n%s", out)
	}
	if !strings.Contains(out, "Insufficient structured data") {
		t.Errorf("missing fallback takeaway:\n%s", out)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		250000:   "250,000",
		12500000: "12,500,000",
		-4500:    "-4,500",
	}
	for in, want := range cases {
		if got := formatAmount(in); got != want {
			t.Errorf("formatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
