package monday

import "time"

// Board is a named dataset on the Monday.com platform.
type Board struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    string   `json:"board_kind"`
	Columns []Column `json:"columns"`
}

// Column is board column metadata. IDs are opaque platform identifiers;
// only the display title carries meaning for role mapping.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// BoardRecord is one item from a board. Fields maps column display labels
// to the raw user-entered text. Immutable once fetched.
type BoardRecord struct {
	ID        string
	Name      string
	Group     string
	Fields    map[string]string
	FetchedAt time.Time
}

// Health reports the reachability of the Monday.com API.
type Health struct {
	Status      string `json:"status"`
	BoardsFound int    `json:"boards_found"`
	Error       string `json:"error,omitempty"`
}

// graphQL wire types

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   gqlData    `json:"data"`
	Errors []gqlError `json:"errors"`
}

type gqlData struct {
	Boards        []gqlBoard    `json:"boards"`
	NextItemsPage *gqlItemsPage `json:"next_items_page"`
}

type gqlBoard struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Kind      string        `json:"board_kind"`
	Columns   []Column      `json:"columns"`
	ItemsPage *gqlItemsPage `json:"items_page"`
}

type gqlItemsPage struct {
	Cursor string    `json:"cursor"`
	Items  []gqlItem `json:"items"`
}

type gqlItem struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Group        *gqlGroup        `json:"group"`
	ColumnValues []gqlColumnValue `json:"column_values"`
}

type gqlGroup struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type gqlColumnValue struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}
