package page

import (
	"fmt"
	"sync"

	"github.com/bobmcallan/vox-portal/internal/models"
	"golang.org/x/text/cases"
)

// Detail is the shared breed info panel.
type Detail struct {
	Visible     bool   `json:"visible"`
	Name        string `json:"name"`
	Temperament string `json:"temperament"`
	LifeSpan    string `json:"life_span"`
}

// SelectFunc is notified when a breed button is activated.
type SelectFunc func(index int, breed models.Breed)

// BreedBrowser is the breed button container plus its detail panel.
// Activation listeners are explicit subscriptions; Teardown releases them all.
type BreedBrowser struct {
	mu     sync.Mutex
	breeds []models.Breed
	detail Detail

	nextSub int
	subs    map[int]SelectFunc
}

// NewBreedBrowser creates an empty browser.
func NewBreedBrowser() *BreedBrowser {
	return &BreedBrowser{subs: make(map[int]SelectFunc)}
}

// Replace swaps the buttons for one per breed, labelled by name, in order.
func (b *BreedBrowser) Replace(breeds []models.Breed) {
	b.mu.Lock()
	b.breeds = append([]models.Breed(nil), breeds...)
	b.mu.Unlock()
}

// Labels returns the visible button labels in order.
func (b *BreedBrowser) Labels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	labels := make([]string, len(b.breeds))
	for i, br := range b.breeds {
		labels[i] = br.Name
	}
	return labels
}

// Breeds returns the records behind the buttons.
func (b *BreedBrowser) Breeds() []models.Breed {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Breed(nil), b.breeds...)
}

// Click activates button i: the detail panel is overwritten with record i
// and made visible, then subscribers are notified.
func (b *BreedBrowser) Click(i int) error {
	b.mu.Lock()
	if i < 0 || i >= len(b.breeds) {
		n := len(b.breeds)
		b.mu.Unlock()
		return fmt.Errorf("breed button %d out of range (%d buttons)", i, n)
	}
	breed := b.breeds[i]
	b.detail = Detail{
		Visible:     true,
		Name:        breed.Name,
		Temperament: breed.DisplayTemperament(),
		LifeSpan:    breed.LifeSpan,
	}
	subs := make([]SelectFunc, 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(i, breed)
	}
	return nil
}

// ClickLabel activates the first button whose label matches token
// case-insensitively. No match is a silent no-op.
func (b *BreedBrowser) ClickLabel(token string) (int, bool) {
	i := MatchLabel(b.Labels(), token)
	if i < 0 {
		return -1, false
	}
	return i, b.Click(i) == nil
}

// Detail returns the panel contents.
func (b *BreedBrowser) Detail() Detail {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.detail
}

// Subscribe registers fn for activations and returns its unsubscribe func.
func (b *BreedBrowser) Subscribe(fn SelectFunc) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Subscribers counts live subscriptions.
func (b *BreedBrowser) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Teardown releases every subscription.
func (b *BreedBrowser) Teardown() {
	b.mu.Lock()
	b.subs = make(map[int]SelectFunc)
	b.mu.Unlock()
}

// MatchLabel returns the index of the first label equal to token under
// Unicode case folding, or -1.
func MatchLabel(labels []string, token string) int {
	fold := cases.Fold()
	want := fold.String(token)
	for i, l := range labels {
		if fold.String(l) == want {
			return i
		}
	}
	return -1
}
