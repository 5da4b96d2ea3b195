package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "harvest", b: "harvest", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "harvest", b: "", want: 0.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
		{name: "one char differs", a: "abcd", b: "abce", want: 0.75},
		{name: "multibyte runes", a: "café", b: "cafe", want: 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"neil young", "neil young & crazy horse"},
		{"fixing her hair", "fixing hair"},
		{"heart of gold", "harvest moon"},
	}
	for _, p := range pairs {
		assert.InDelta(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), 1e-9)
	}
}
