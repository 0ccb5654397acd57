package page

import "sync"

// Row is one trending stocks table row.
type Row struct {
	Ticker    string `json:"ticker"`
	QuoteURL  string `json:"quote_url"`
	Comments  string `json:"comments"`
	Sentiment string `json:"sentiment"`
	Glyph     string `json:"glyph"`
}

// Table is the trending stocks table body.
type Table struct {
	mu       sync.Mutex
	rows     []Row
	replaced int
}

// NewTable creates an empty table body.
func NewTable() *Table {
	return &Table{}
}

// ReplaceRows removes all rows and appends rows in order.
func (t *Table) ReplaceRows(rows []Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append([]Row(nil), rows...)
	t.replaced++
}

// Rows returns the current rows.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Row(nil), t.rows...)
}

// Loaded reports whether rows were ever rendered.
func (t *Table) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replaced > 0
}
