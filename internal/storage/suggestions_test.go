// GameScout - Game Discovery and Similarity Suggestions
// Copyright 2026 GameScout contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"testing"
)

func enqueueAndClaim(t *testing.T, db *DB, sourceID int) {
	t.Helper()
	ctx := context.Background()

	if _, _, err := db.Enqueue(ctx, sourceID); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if _, err := db.Claim(ctx, sourceID); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
}

func TestCompletePersistsOrderedSuggestions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	enqueueAndClaim(t, db, 100)

	in := []Suggestion{
		{SourceID: 100, TargetID: 7, Reason: "same developer (Team Cherry)"},
		{SourceID: 100, TargetID: 3, Reason: "shares tags: horror, atmospheric"},
		{SourceID: 100, TargetID: 9, Reason: "mechanics similarity 84%"},
	}
	if err := db.Complete(ctx, 100, in); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	got, err := db.GetSuggestions(ctx, 100)
	if err != nil {
		t.Fatalf("GetSuggestions() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
	// Rank order must match insertion order, not target id order.
	for i, want := range []int{7, 3, 9} {
		if got[i].TargetID != want {
			t.Errorf("suggestion[%d].TargetID = %d, want %d", i, got[i].TargetID, want)
		}
	}

	job, err := db.GetJob(ctx, 100)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if job.Status != JobSucceeded {
		t.Errorf("job status = %q, want %q", job.Status, JobSucceeded)
	}
	if job.FinishedAt == nil {
		t.Error("succeeded job has no finishedAt")
	}
}

func TestCompleteReplacesPriorSet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	enqueueAndClaim(t, db, 100)

	first := []Suggestion{
		{SourceID: 100, TargetID: 1, Reason: "shares tags: a"},
		{SourceID: 100, TargetID: 2, Reason: "shares tags: b"},
	}
	if err := db.Complete(ctx, 100, first); err != nil {
		t.Fatalf("first Complete() error = %v", err)
	}

	enqueueAndClaim(t, db, 100)
	second := []Suggestion{
		{SourceID: 100, TargetID: 3, Reason: "shares tags: c"},
	}
	if err := db.Complete(ctx, 100, second); err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}

	got, err := db.GetSuggestions(ctx, 100)
	if err != nil {
		t.Fatalf("GetSuggestions() error = %v", err)
	}
	if len(got) != 1 || got[0].TargetID != 3 {
		t.Errorf("suggestions after re-run = %+v, want only target 3", got)
	}
}

func TestCompleteEmptySetSucceeds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	enqueueAndClaim(t, db, 100)

	if err := db.Complete(ctx, 100, nil); err != nil {
		t.Fatalf("Complete() with empty set error = %v", err)
	}

	job, err := db.GetJob(ctx, 100)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if job.Status != JobSucceeded {
		t.Errorf("job status = %q, want succeeded for empty result", job.Status)
	}

	has, err := db.HasSuggestions(ctx, 100)
	if err != nil {
		t.Fatalf("HasSuggestions() error = %v", err)
	}
	if has {
		t.Error("HasSuggestions() = true, want false")
	}
}

func TestCompleteRejectsEmptyReason(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	enqueueAndClaim(t, db, 100)

	err := db.Complete(ctx, 100, []Suggestion{
		{SourceID: 100, TargetID: 1, Reason: ""},
	})
	if err == nil {
		t.Fatal("Complete() error = nil, want rejection of empty reason")
	}

	// The rejected transaction must not have marked the job succeeded.
	job, getErr := db.GetJob(ctx, 100)
	if getErr != nil {
		t.Fatalf("GetJob() error = %v", getErr)
	}
	if job.Status != JobRunning {
		t.Errorf("job status = %q, want still running after rollback", job.Status)
	}
}

func TestHasSuggestions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	has, err := db.HasSuggestions(ctx, 100)
	if err != nil {
		t.Fatalf("HasSuggestions() error = %v", err)
	}
	if has {
		t.Error("HasSuggestions() = true for unknown source, want false")
	}

	enqueueAndClaim(t, db, 100)
	if err := db.Complete(ctx, 100, []Suggestion{
		{SourceID: 100, TargetID: 1, Reason: "same publisher (Annapurna)"},
	}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	has, err = db.HasSuggestions(ctx, 100)
	if err != nil {
		t.Fatalf("HasSuggestions() error = %v", err)
	}
	if !has {
		t.Error("HasSuggestions() = false after Complete, want true")
	}
}
