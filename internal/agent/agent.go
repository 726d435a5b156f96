// Package agent orchestrates the BI assistant: board discovery, cached data
// loading, context summarization, and conversation with the language model.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/boardbi/internal/dataset"
	"github.com/kalambet/boardbi/internal/gemini"
	"github.com/kalambet/boardbi/internal/monday"
	"github.com/kalambet/boardbi/internal/normalize"
	"github.com/kalambet/boardbi/internal/report"
	"github.com/kalambet/boardbi/internal/summarize"
)

// Dataset keys in the cache.
const (
	KeyWorkOrders = "work_orders"
	KeyDeals      = "deals"
)

const systemPrompt = `You are a Business Intelligence assistant for a company that uses Monday.com to manage Work Orders and Deals.

Your role:
- Answer founder-level business questions clearly and concisely
- Provide insights about revenue, pipeline health, sectoral performance, and operational metrics
- When data is incomplete or messy, acknowledge it and provide the best available answer
- Ask clarifying questions when a query is ambiguous
- Use tables, bullet points, and bold text for readability
- Include specific numbers and percentages when possible
- Always mention data caveats (e.g., "Note: 15% of deal values are missing")

You receive structured data summaries from the system. Use them to answer the user's question.
Do NOT make up numbers. Only use what is provided in the data context.
Format monetary values with the ₹ symbol and commas.
When you don't have enough data to answer, say so clearly and suggest what data might help.`

// BoardClient abstracts the Monday.com client for testing.
type BoardClient interface {
	FindBoardByName(ctx context.Context, name string) (monday.Board, error)
	FetchItems(ctx context.Context, boardID string) ([]monday.BoardRecord, []monday.Column, error)
	CheckHealth(ctx context.Context) monday.Health
}

// Generator abstracts the language model for testing.
type Generator interface {
	Generate(ctx context.Context, system string, history []gemini.Message) (string, error)
}

// Deps holds everything the agent needs. LLM may be nil when no API key is
// configured; chat then degrades with a configuration message.
type Deps struct {
	Boards     BoardClient
	LLM        Generator
	Cache      *dataset.Cache
	Normalizer *normalize.Normalizer
	Summarizer *summarize.Summarizer

	WorkOrdersID   string
	DealsID        string
	WorkOrdersName string
	DealsName      string
}

// Agent serves chat, report, refresh, and health operations. Safe for
// concurrent use; the conversation history is the only guarded state beyond
// the cache's own locking.
type Agent struct {
	deps    Deps
	session string

	mu           sync.Mutex
	workOrdersID string
	dealsID      string
	history      []gemini.Message
}

const (
	maxHistory  = 40
	keepHistory = 20
)

// New creates an Agent. Board IDs left empty in deps are discovered by name
// on first use.
func New(deps Deps) *Agent {
	if deps.WorkOrdersName == "" {
		deps.WorkOrdersName = "work order"
	}
	if deps.DealsName == "" {
		deps.DealsName = "deal"
	}
	return &Agent{
		deps:         deps,
		session:      uuid.New().String(),
		workOrdersID: deps.WorkOrdersID,
		dealsID:      deps.DealsID,
	}
}

// boardID resolves the board ID for a dataset, discovering it by name when
// not configured. Discovery failure is a configuration error: it is reported
// once per call, never retried with backoff.
func (a *Agent) boardID(ctx context.Context, key string) (string, error) {
	a.mu.Lock()
	id := a.workOrdersID
	name := a.deps.WorkOrdersName
	if key == KeyDeals {
		id = a.dealsID
		name = a.deps.DealsName
	}
	a.mu.Unlock()

	if id != "" {
		return id, nil
	}

	board, err := a.deps.Boards.FindBoardByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("discovering %s board: %w", key, err)
	}
	slog.Info("board discovered", "dataset", key, "board", board.Name, "id", board.ID)

	a.mu.Lock()
	if key == KeyDeals {
		a.dealsID = board.ID
	} else {
		a.workOrdersID = board.ID
	}
	a.mu.Unlock()
	return board.ID, nil
}

// loadDataset returns the normalized batch for one dataset, fetching and
// normalizing through the cache on miss or expiry.
func (a *Agent) loadDataset(ctx context.Context, key string) (normalize.Batch, error) {
	id, err := a.boardID(ctx, key)
	if err != nil {
		return normalize.Batch{}, err
	}

	return a.deps.Cache.Get(ctx, key, func(ctx context.Context) (normalize.Batch, error) {
		records, columns, err := a.deps.Boards.FetchItems(ctx, id)
		if err != nil {
			return normalize.Batch{}, err
		}
		binding := monday.ResolveRoles(columns)
		return a.deps.Normalizer.NormalizeBatch(records, binding), nil
	})
}

// LoadData loads both datasets concurrently. Per-dataset failures degrade to
// a stale batch when one exists; every degradation is reported as a caveat.
func (a *Agent) LoadData(ctx context.Context) (work, deals normalize.Batch, caveats []string) {
	var (
		mu      sync.Mutex
		g, gCtx = errgroup.WithContext(ctx)
	)

	load := func(key string, dst *normalize.Batch) func() error {
		return func() error {
			batch, err := a.loadDataset(gCtx, key)
			if err == nil {
				*dst = batch
				return nil
			}

			caveat := fmt.Sprintf("%s data unavailable: %v", key, err)
			if stale, age, ok := a.deps.Cache.Stale(key); ok {
				*dst = stale
				caveat = fmt.Sprintf("%s data is %s stale (refresh failed: %v)", key, age.Round(time.Second), err)
			}
			slog.Warn("dataset load degraded", "dataset", key, "error", err)

			mu.Lock()
			caveats = append(caveats, caveat)
			mu.Unlock()
			return nil
		}
	}

	g.Go(load(KeyWorkOrders, &work))
	g.Go(load(KeyDeals, &deals))
	g.Wait()
	return work, deals, caveats
}

// Chat answers a user question using summarized board data. Failures never
// escape as errors: upstream or model trouble produces an apologetic,
// user-readable message instead.
func (a *Agent) Chat(ctx context.Context, message string) string {
	if a.deps.LLM == nil {
		return "Gemini API key not configured. Set GEMINI_API_KEY to enable chat."
	}

	work, deals, caveats := a.LoadData(ctx)
	dataContext := a.buildDataContext(work, deals, caveats)

	augmented := fmt.Sprintf(
		"User Question: %s\n\n--- DATA CONTEXT ---\n%s\n--- END DATA CONTEXT ---\n\n"+
			"Answer the user's question based on the data above. "+
			"Be specific, use numbers, and mention any data quality caveats.",
		message, dataContext,
	)

	a.mu.Lock()
	history := append(append([]gemini.Message{}, a.history...), gemini.Message{Role: "user", Content: augmented})
	a.mu.Unlock()

	answer, err := a.deps.LLM.Generate(ctx, systemPrompt, history)
	if err != nil {
		slog.Error("completion failed", "session", a.session, "error", err)
		var rl *gemini.RateLimitError
		if errors.As(err, &rl) {
			return "The language model is rate limited right now. Please wait a moment and try again."
		}
		return "Sorry, I could not generate a response right now. Please try again shortly."
	}

	a.mu.Lock()
	a.history = append(history, gemini.Message{Role: "model", Content: answer})
	if len(a.history) > maxHistory {
		a.history = a.history[len(a.history)-keepHistory:]
	}
	a.mu.Unlock()

	return answer
}

// buildDataContext renders both dataset summaries plus any load caveats.
func (a *Agent) buildDataContext(work, deals normalize.Batch, caveats []string) string {
	var sb strings.Builder
	sb.WriteString(a.deps.Summarizer.Summarize("deals data", deals).Render())
	sb.WriteString("\n")
	sb.WriteString(a.deps.Summarizer.Summarize("work orders data", work).Render())
	if len(caveats) > 0 {
		sb.WriteString("\nData loading issues:\n")
		for _, c := range caveats {
			sb.WriteString("- " + c + "\n")
		}
	}
	return sb.String()
}

// Report generates the markdown leadership update from current data.
func (a *Agent) Report(ctx context.Context) string {
	work, deals, caveats := a.LoadData(ctx)
	out := report.Generate(work, deals, time.Now())
	if len(caveats) > 0 {
		out += "\n\n> " + strings.Join(caveats, " | ")
	}
	return out
}

// Refresh drops all cached datasets so the next request refetches.
func (a *Agent) Refresh() string {
	a.deps.Cache.InvalidateAll()
	slog.Info("data cache cleared", "session", a.session)
	return "Data cache cleared. Next query will fetch fresh data from Monday.com."
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status           string        `json:"status"`
	Monday           monday.Health `json:"monday"`
	GeminiConfigured bool          `json:"gemini_configured"`
	WorkOrdersBoard  string        `json:"work_orders_board"`
	DealsBoard       string        `json:"deals_board"`
}

// Health verifies the Monday.com connection and reports board configuration.
func (a *Agent) Health(ctx context.Context) HealthStatus {
	a.mu.Lock()
	workID, dealsID := a.workOrdersID, a.dealsID
	a.mu.Unlock()

	status := HealthStatus{
		Status:           "healthy",
		Monday:           a.deps.Boards.CheckHealth(ctx),
		GeminiConfigured: a.deps.LLM != nil,
		WorkOrdersBoard:  orNotConfigured(workID),
		DealsBoard:       orNotConfigured(dealsID),
	}
	return status
}

func orNotConfigured(id string) string {
	if id == "" {
		return "not configured"
	}
	return id
}
