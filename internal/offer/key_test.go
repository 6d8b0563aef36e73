package offer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ingénieur Données", "ingenieur donnees"},
		{"  Data   Engineer ", "data engineer"},
		{"DATA\tengineer", "data engineer"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in))
	}
}

func TestDedupKeyStability(t *testing.T) {
	base := Offer{
		Title:    "Data Engineer",
		Company:  "Air France",
		Location: "Paris",
		Source:   SourceAirFrance,
	}

	variants := []Offer{
		{Title: "  data ENGINEER ", Company: "air france", Location: "PARIS", Source: SourceAirFrance},
		{Title: "Data Engineer", Company: "Air  France", Location: " Paris", Source: SourceAirFrance},
	}
	for _, v := range variants {
		assert.Equal(t, base.DedupKey(), v.DedupKey())
	}

	other := base
	other.Company = "Apple"
	assert.NotEqual(t, base.DedupKey(), other.DedupKey())
}

func TestIdentityKeyMatchesOfferKey(t *testing.T) {
	o := Offer{Title: "Développeur Go", Company: "WTTJ Corp", Location: "Lyon", Source: SourceWTTJ}
	id := Identity{Title: "developpeur go", Company: "wttj corp", Location: "lyon", Source: "Welcome to the Jungle"}
	assert.Equal(t, o.DedupKey(), id.DedupKey())
}
