package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPart(t *testing.T) {
	tests := []struct {
		name string
		s    string
		sep  string
		idx  int
		want string
	}{
		{"second segment", "Air France - Cargo", " - ", 1, "Cargo"},
		{"first segment", "Paris, France", ",", 0, "Paris"},
		{"trims segment", "Salaire :  45k€ ", "Salaire :", 1, "45k€"},
		{"separator absent", "Non renseigné", "Salaire :", 1, ""},
		{"index past segments", "a-b", "-", 5, ""},
		{"empty input", "", "-", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPart(tt.s, tt.sep, tt.idx))
		})
	}
}
