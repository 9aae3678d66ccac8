package reviews

import (
	"context"
	"testing"

	"github.com/ziadkadry99/sharai/internal/db"
	"github.com/ziadkadry99/sharai/internal/session"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestSaveAndList(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	valid := false

	if err := store.SaveReview(ctx, "s1", session.Review{
		TermID:             "t2",
		UserModifiedText:   "reviewed",
		ReviewedSuggestion: "reviewed",
		IsValid:            &valid,
		Status:             "warning",
		Issue:              "gharar",
		Reference:          "AAOIFI 5",
	}); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}
	if err := store.SaveReview(ctx, "s1", session.Review{TermID: "t1", ReviewedSuggestion: "other"}); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}
	if err := store.SaveReview(ctx, "s2", session.Review{TermID: "t1", ReviewedSuggestion: "elsewhere"}); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}

	got, err := store.Reviews(ctx, "s1")
	if err != nil {
		t.Fatalf("Reviews: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reviews, want 2", len(got))
	}
	if got[0].TermID != "t1" || got[0].IsValid != nil {
		t.Errorf("first review = %+v, want t1 without validity", got[0])
	}
	r := got[1]
	if r.TermID != "t2" || r.ReviewedSuggestion != "reviewed" || r.Status != "warning" {
		t.Errorf("second review = %+v", r)
	}
	if r.IsValid == nil || *r.IsValid {
		t.Errorf("IsValid = %v, want false", r.IsValid)
	}
	if r.Issue != "gharar" || r.Reference != "AAOIFI 5" {
		t.Errorf("issue/reference = %q/%q", r.Issue, r.Reference)
	}
	if r.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be filled in")
	}
}

func TestSaveReplacesEarlierReview(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	store.SaveReview(ctx, "s1", session.Review{TermID: "t1", ReviewedSuggestion: "first", Status: "warning"})
	store.SaveReview(ctx, "s1", session.Review{TermID: "t1", ReviewedSuggestion: "second", Status: "compliant"})

	got, err := store.Reviews(ctx, "s1")
	if err != nil {
		t.Fatalf("Reviews: %v", err)
	}
	if len(got) != 1 || got[0].ReviewedSuggestion != "second" || got[0].Status != "compliant" {
		t.Errorf("Reviews = %+v, want only the second review", got)
	}
}

func TestSaveRejectsEmptyIDs(t *testing.T) {
	store := setupStore(t)
	if err := store.SaveReview(context.Background(), "", session.Review{TermID: "t1"}); err == nil {
		t.Error("expected error for empty session id")
	}
	if err := store.SaveReview(context.Background(), "s1", session.Review{}); err == nil {
		t.Error("expected error for empty term id")
	}
}

func TestDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	for _, id := range []string{"t1", "t2", "t3"} {
		if err := store.SaveReview(ctx, "s1", session.Review{TermID: id, ReviewedSuggestion: id}); err != nil {
			t.Fatalf("SaveReview: %v", err)
		}
	}
	store.SaveReview(ctx, "s2", session.Review{TermID: "t1", ReviewedSuggestion: "kept"})

	if err := store.DeleteReview(ctx, "s1", "t2"); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	got, _ := store.Reviews(ctx, "s1")
	if len(got) != 2 || got[0].TermID != "t1" || got[1].TermID != "t3" {
		t.Errorf("after DeleteReview = %+v", got)
	}

	n, err := store.DeleteReviews(ctx, "s1")
	if err != nil {
		t.Fatalf("DeleteReviews: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	if got, _ := store.Reviews(ctx, "s2"); len(got) != 1 {
		t.Errorf("other session lost its review: %+v", got)
	}
}
