package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorSerializationRoundTrip(t *testing.T) {
	original := []float32{0.5, -1.25, 3.14159, 0, math.MaxFloat32}

	blob := SerializeVector(original)
	assert.Len(t, blob, len(original)*4)

	restored := DeserializeVector(blob)
	assert.Equal(t, original, restored)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSanitizeFTSQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain", "euler step", `"euler" "step"`},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"hyphenated term", "Black-Scholes price", `"Black-Scholes" "price"`},
		{"internal quotes doubled", `say "hi"`, `"say" """hi"""`},
		{"wildcard literal", "sol*", `"sol*"`},
		{"boolean operator literal", "a AND b", `"a" "AND" "b"`},
		{"parens literal", "f(x)", `"f(x)"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFTSQuery(tt.query))
		})
	}
}

func TestBuildVectorResultsLimit(t *testing.T) {
	candidates := []candidate{
		{chunkID: 1, score: 0.9},
		{chunkID: 2, score: 0.8},
		{chunkID: 3, score: 0.7},
	}

	assert.Len(t, buildVectorResults(candidates, 2), 2)
	assert.Len(t, buildVectorResults(candidates, 10), 3)
	assert.Len(t, buildVectorResults(candidates, 0), 3)
	assert.Empty(t, buildVectorResults(nil, 5))
}
