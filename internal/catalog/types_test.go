// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"reflect"
	"testing"
)

func TestTopTags(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]int
		n    int
		want []string
	}{
		{
			name: "orders by weight descending",
			tags: map[string]int{"Horror": 10, "Indie": 5, "Pixel Graphics": 8},
			n:    3,
			want: []string{"horror", "pixel graphics", "indie"},
		},
		{
			name: "ties break alphabetically",
			tags: map[string]int{"Zombies": 5, "Atmospheric": 5, "Horror": 10},
			n:    3,
			want: []string{"horror", "atmospheric", "zombies"},
		},
		{
			name: "n larger than tag count",
			tags: map[string]int{"Horror": 10},
			n:    5,
			want: []string{"horror"},
		},
		{
			name: "truncates to n",
			tags: map[string]int{"A": 3, "B": 2, "C": 1},
			n:    2,
			want: []string{"a", "b"},
		},
		{
			name: "no tags",
			tags: nil,
			n:    5,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Game{AppID: 1, Tags: tt.tags}
			got := g.TopTags(tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopTags(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestTopTagsDeterministic(t *testing.T) {
	g := &Game{
		AppID: 1,
		Tags:  map[string]int{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1},
	}

	first := g.TopTags(5)
	for i := 0; i < 20; i++ {
		if got := g.TopTags(5); !reflect.DeepEqual(got, first) {
			t.Fatalf("TopTags not deterministic: %v vs %v", got, first)
		}
	}
}

func TestCredits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  []string
	}{
		{
			name:  "single credit",
			input: "Team Cherry",
			max:   2,
			want:  []string{"Team Cherry"},
		},
		{
			name:  "multi credit capped at max",
			input: "Studio A, Studio B, Studio C",
			max:   2,
			want:  []string{"Studio A", "Studio B"},
		},
		{
			name:  "trims whitespace",
			input: "  Studio A ,  Studio B ",
			max:   5,
			want:  []string{"Studio A", "Studio B"},
		},
		{
			name:  "drops empty entries",
			input: "Studio A,, ,Studio B",
			max:   5,
			want:  []string{"Studio A", "Studio B"},
		},
		{
			name:  "empty string",
			input: "",
			max:   2,
			want:  nil,
		},
		{
			name:  "zero max",
			input: "Studio A",
			max:   0,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Credits(tt.input, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Credits(%q, %d) = %v, want %v", tt.input, tt.max, got, tt.want)
			}
		})
	}
}
