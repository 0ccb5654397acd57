package page

import "sync"

// StockForm holds the ticker input and range select values.
type StockForm struct {
	mu     sync.Mutex
	ticker string
	rng    string
}

// Set writes both fields.
func (f *StockForm) Set(ticker, rng string) {
	f.mu.Lock()
	f.ticker, f.rng = ticker, rng
	f.mu.Unlock()
}

// SetTicker writes the ticker field only.
func (f *StockForm) SetTicker(ticker string) {
	f.mu.Lock()
	f.ticker = ticker
	f.mu.Unlock()
}

// Values returns the raw field values.
func (f *StockForm) Values() (ticker, rng string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticker, f.rng
}
