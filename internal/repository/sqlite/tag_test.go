package sqlite

import (
	"context"
	"testing"
)

func TestGetOrCreateByName_CreatesOnce(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagRepo(db)
	ctx := context.Background()

	first, err := tags.GetOrCreateByName(ctx, "python")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("GetOrCreateByName() did not set an ID")
	}

	second, err := tags.GetOrCreateByName(ctx, "python")
	if err != nil {
		t.Fatalf("GetOrCreateByName() second call error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call returned ID %s, want existing %s", second.ID, first.ID)
	}

	all, err := tags.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(List()) = %d, want exactly one tag record", len(all))
	}
}

func TestAttach_Idempotent(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)
	tags := NewTagRepo(db)
	ctx := context.Background()

	card := createTestCard(t, cards, "q")
	tag, err := tags.GetOrCreateByName(ctx, "go")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}

	if err := tags.Attach(ctx, card.ID, tag.ID); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	// Attaching the same pair again must be a no-op, not an error.
	if err := tags.Attach(ctx, card.ID, tag.ID); err != nil {
		t.Fatalf("Attach() second call error = %v", err)
	}

	got, err := tags.ListByCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("ListByCard() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len(ListByCard()) = %d, want 1", len(got))
	}
}

func TestTagList_OrderedByName(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagRepo(db)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := tags.GetOrCreateByName(ctx, name); err != nil {
			t.Fatalf("GetOrCreateByName(%q) error = %v", name, err)
		}
	}

	got, err := tags.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Errorf("got[%d].Name = %s, want %s", i, got[i].Name, want[i])
		}
	}
}
