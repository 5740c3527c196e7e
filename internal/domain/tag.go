package domain

// DefaultTagVocabulary is the tag catalog seeded when none is configured.
var DefaultTagVocabulary = []string{"cooking", "traveling", "outdoors"}

// Tag is an entry of the fixed tag catalog.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
