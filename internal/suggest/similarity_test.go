// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"math"
	"reflect"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1,
		},
		{
			name: "all-zero vector is unknown, not a match",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0,
		},
		{
			name: "both all-zero",
			a:    []float32{0, 0},
			b:    []float32{0, 0},
			want: 0,
		},
		{
			name: "mismatched lengths",
			a:    []float32{1, 2},
			b:    []float32{1, 2, 3},
			want: 0,
		},
		{
			name: "empty vectors",
			a:    nil,
			b:    nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityNeverNaN(t *testing.T) {
	vectors := [][]float32{nil, {}, {0}, {0, 0}, {1}, {1, -1}}
	for _, a := range vectors {
		for _, b := range vectors {
			if got := cosineSimilarity(a, b); math.IsNaN(got) {
				t.Errorf("cosineSimilarity(%v, %v) = NaN", a, b)
			}
		}
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want []string
	}{
		{
			name: "preserves a's order",
			a:    []string{"horror", "indie", "pixel graphics"},
			b:    []string{"pixel graphics", "horror"},
			want: []string{"horror", "pixel graphics"},
		},
		{
			name: "no overlap",
			a:    []string{"horror"},
			b:    []string{"wholesome"},
			want: nil,
		},
		{
			name: "empty inputs",
			a:    nil,
			b:    []string{"horror"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intersect(tt.a, tt.b)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}
