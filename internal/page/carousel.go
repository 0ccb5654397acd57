package page

import "sync"

// Carousel images are a fixed size.
const (
	ImageWidthPx  = 200
	ImageMarginPx = 10
)

// Image is one carousel image element.
type Image struct {
	Src      string `json:"src"`
	WidthPx  int    `json:"width_px"`
	MarginPx int    `json:"margin_px"`
}

// Carousel is the dog image container.
type Carousel struct {
	mu     sync.Mutex
	images []Image
}

// NewCarousel creates an empty carousel.
func NewCarousel() *Carousel {
	return &Carousel{}
}

// Replace clears the carousel and adds one fixed-size image per URL, in order.
func (c *Carousel) Replace(urls []string) {
	images := make([]Image, len(urls))
	for i, u := range urls {
		images[i] = Image{Src: u, WidthPx: ImageWidthPx, MarginPx: ImageMarginPx}
	}
	c.mu.Lock()
	c.images = images
	c.mu.Unlock()
}

// Images returns the current images.
func (c *Carousel) Images() []Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Image(nil), c.images...)
}
