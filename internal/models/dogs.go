package models

// TemperamentPlaceholder is shown when a breed has no temperament.
const TemperamentPlaceholder = "No data"

// Breed is upstream breed metadata.
type Breed struct {
	Name        string `json:"name"`
	Temperament string `json:"temperament,omitempty"`
	LifeSpan    string `json:"life_span"`
}

// DisplayTemperament returns the temperament or the placeholder.
func (b Breed) DisplayTemperament() string {
	if b.Temperament == "" {
		return TemperamentPlaceholder
	}
	return b.Temperament
}

// DogImage is an opaque image URL.
type DogImage string
