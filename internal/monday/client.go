package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.monday.com/v2"
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond

	// boardsPageLimit bounds the discovery query; itemsPageLimit is the
	// page size for cursor pagination.
	boardsPageLimit = 50
	itemsPageLimit  = 500
)

// Client issues GraphQL queries against the Monday.com API with retry on
// transient failures.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	pageLimit  int
}

// NewClient creates a Client authenticating with the given API token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		pageLimit: itemsPageLimit,
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// transientError marks a failure worth retrying: rate limits, 5xx responses,
// network timeouts, and GraphQL complexity/rate-limit errors.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	_, ok := err.(*transientError)
	return ok
}

// execute runs one GraphQL query, retrying transient failures with
// exponential backoff up to the attempt ceiling. Non-transient failures
// (auth, malformed query) fail immediately.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out *gqlResponse) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshaling query: %w", err)
	}

	var lastErr error
	for attempt := range maxRetries {
		err := c.doQuery(ctx, body, out)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}

		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(float64(initialBackoff) * math.Pow(2, float64(attempt)))
			slog.Debug("monday request failed, retrying", "attempt", attempt+1, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return &UpstreamError{Attempts: maxRetries, Err: lastErr}
}

func (c *Client) doQuery(ctx context.Context, body []byte, out *gqlResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors and timeouts are transient unless the caller gave up.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &transientError{err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return &transientError{err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		respBody, _ := io.ReadAll(resp.Body)
		return &apiError{msg: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))}
	}

	*out = gqlResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &transientError{err: fmt.Errorf("decoding response: %w", err)}
	}

	if len(out.Errors) > 0 {
		msgs := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			msgs[i] = e.Message
		}
		joined := strings.Join(msgs, "; ")
		lower := strings.ToLower(joined)
		// The platform signals rate limiting through GraphQL errors too.
		if strings.Contains(lower, "rate limit") || strings.Contains(lower, "complexity") {
			return &transientError{err: &apiError{msg: joined}}
		}
		return &apiError{msg: joined}
	}

	return nil
}

const boardsQuery = `query ($limit: Int!) {
	boards(limit: $limit) {
		id
		name
		board_kind
		columns {
			id
			title
			type
		}
	}
}`

// ListBoards fetches all boards visible to the token.
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	var resp gqlResponse
	if err := c.execute(ctx, boardsQuery, map[string]any{"limit": boardsPageLimit}, &resp); err != nil {
		return nil, err
	}

	boards := make([]Board, len(resp.Data.Boards))
	for i, b := range resp.Data.Boards {
		boards[i] = Board{ID: b.ID, Name: b.Name, Kind: b.Kind, Columns: b.Columns}
	}
	return boards, nil
}

// FindBoardByName locates a board whose name contains the given string,
// case-insensitively. When several boards match, the one with the lowest
// platform-assigned ID wins.
func (c *Client) FindBoardByName(ctx context.Context, name string) (Board, error) {
	boards, err := c.ListBoards(ctx)
	if err != nil {
		return Board{}, err
	}

	needle := strings.ToLower(name)
	var match *Board
	for i := range boards {
		if !strings.Contains(strings.ToLower(boards[i].Name), needle) {
			continue
		}
		if match == nil || lessBoardID(boards[i].ID, match.ID) {
			match = &boards[i]
		}
	}
	if match == nil {
		return Board{}, fmt.Errorf("%w: no board name contains %q", ErrBoardNotFound, name)
	}
	return *match, nil
}

// lessBoardID orders IDs numerically when both parse, lexically otherwise.
func lessBoardID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

const itemsFirstPageQuery = `query ($boardID: [ID!], $limit: Int!) {
	boards(ids: $boardID) {
		id
		name
		columns {
			id
			title
			type
		}
		items_page(limit: $limit) {
			cursor
			items {
				id
				name
				group {
					id
					title
				}
				column_values {
					id
					text
					type
				}
			}
		}
	}
}`

const itemsNextPageQuery = `query ($cursor: String!, $limit: Int!) {
	next_items_page(limit: $limit, cursor: $cursor) {
		cursor
		items {
			id
			name
			group {
				id
				title
			}
			column_values {
				id
				text
				type
			}
		}
	}
}`

// FetchItems retrieves every item on a board, following the platform cursor
// until exhausted. All pages are accumulated before returning. Column values
// are keyed by column display label, falling back to the opaque column ID
// when metadata is missing.
func (c *Client) FetchItems(ctx context.Context, boardID string) ([]BoardRecord, []Column, error) {
	var resp gqlResponse
	vars := map[string]any{"boardID": []string{boardID}, "limit": c.pageLimit}
	if err := c.execute(ctx, itemsFirstPageQuery, vars, &resp); err != nil {
		return nil, nil, err
	}
	if len(resp.Data.Boards) == 0 {
		return nil, nil, fmt.Errorf("%w: board %s", ErrBoardNotFound, boardID)
	}

	board := resp.Data.Boards[0]
	columns := board.Columns
	labels := make(map[string]string, len(columns))
	for _, col := range columns {
		labels[col.ID] = col.Title
	}

	fetchedAt := time.Now()
	var records []BoardRecord
	appendItems := func(items []gqlItem) {
		for _, it := range items {
			records = append(records, toRecord(it, labels, fetchedAt))
		}
	}

	cursor := ""
	if board.ItemsPage != nil {
		appendItems(board.ItemsPage.Items)
		cursor = board.ItemsPage.Cursor
	}

	for cursor != "" {
		var next gqlResponse
		vars := map[string]any{"cursor": cursor, "limit": c.pageLimit}
		if err := c.execute(ctx, itemsNextPageQuery, vars, &next); err != nil {
			return nil, nil, err
		}
		if next.Data.NextItemsPage == nil {
			break
		}
		appendItems(next.Data.NextItemsPage.Items)
		cursor = next.Data.NextItemsPage.Cursor
	}

	slog.Debug("fetched board items", "board", boardID, "items", len(records))
	return records, columns, nil
}

func toRecord(it gqlItem, labels map[string]string, fetchedAt time.Time) BoardRecord {
	rec := BoardRecord{
		ID:        it.ID,
		Name:      it.Name,
		Fields:    make(map[string]string, len(it.ColumnValues)),
		FetchedAt: fetchedAt,
	}
	if it.Group != nil {
		rec.Group = it.Group.Title
	}
	for _, cv := range it.ColumnValues {
		label, ok := labels[cv.ID]
		if !ok {
			label = cv.ID
		}
		if cv.Text != "" {
			rec.Fields[label] = cv.Text
		}
	}
	return rec
}

// CheckHealth verifies the Monday.com connection and counts visible boards.
func (c *Client) CheckHealth(ctx context.Context) Health {
	boards, err := c.ListBoards(ctx)
	if err != nil {
		return Health{Status: "disconnected", Error: err.Error()}
	}
	return Health{Status: "connected", BoardsFound: len(boards)}
}
