// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import "testing"

func TestVibeConflict(t *testing.T) {
	tests := []struct {
		name      string
		source    []string
		candidate []string
		want      bool
	}{
		{
			name:      "horror vs wholesome",
			source:    []string{"horror"},
			candidate: []string{"wholesome"},
			want:      true,
		},
		{
			name:      "symmetric in the other direction",
			source:    []string{"wholesome"},
			candidate: []string{"horror"},
			want:      true,
		},
		{
			name:      "gore vs cute",
			source:    []string{"gore", "action"},
			candidate: []string{"cute", "platformer"},
			want:      true,
		},
		{
			name:      "souls-like vs casual",
			source:    []string{"souls-like"},
			candidate: []string{"casual"},
			want:      true,
		},
		{
			name:      "same cluster is not a conflict",
			source:    []string{"horror"},
			candidate: []string{"psychological horror", "gore"},
			want:      false,
		},
		{
			name:      "unrelated tags",
			source:    []string{"strategy", "4x"},
			candidate: []string{"roguelike", "deckbuilder"},
			want:      false,
		},
		{
			name:      "empty source tags",
			source:    nil,
			candidate: []string{"wholesome"},
			want:      false,
		},
		{
			name:      "empty candidate tags",
			source:    []string{"horror"},
			candidate: nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VibeConflict(tt.source, tt.candidate); got != tt.want {
				t.Errorf("VibeConflict(%v, %v) = %v, want %v", tt.source, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestVibeConflictSymmetry(t *testing.T) {
	// Every table pair must veto in both directions.
	for _, pair := range conflictTable {
		if !VibeConflict(pair.a, pair.b) {
			t.Errorf("VibeConflict(%v, %v) = false, want true", pair.a, pair.b)
		}
		if !VibeConflict(pair.b, pair.a) {
			t.Errorf("VibeConflict(%v, %v) = false, want true", pair.b, pair.a)
		}
	}
}
