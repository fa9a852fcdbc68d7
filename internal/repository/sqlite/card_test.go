package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/levkina/flashdeck/internal/apperror"
	"github.com/levkina/flashdeck/internal/model"
	"github.com/levkina/flashdeck/internal/repository"
)

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestCard(t *testing.T, cards *CardRepo, question string) *model.Card {
	t.Helper()
	card := &model.Card{Question: question, Answer: "an answer"}
	if err := cards.Create(context.Background(), card); err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

func TestCardCreate(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)

	card := &model.Card{
		Question: "What does a slice header contain?",
		Answer:   "A pointer, a length and a capacity.",
	}
	if err := cards.Create(context.Background(), card); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if card.ID == "" {
		t.Error("Create() did not set card.ID")
	}
	if card.UploadDate.IsZero() {
		t.Error("Create() did not set card.UploadDate")
	}
}

func TestCardCreate_WithCategory(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)
	categories := NewCategoryRepo(db)

	cat := &model.Category{Name: "Go"}
	if err := categories.Create(context.Background(), cat); err != nil {
		t.Fatalf("creating category: %v", err)
	}

	card := &model.Card{Question: "q", Answer: "a", CategoryID: cat.ID}
	if err := cards.Create(context.Background(), card); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := cards.GetByID(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Category == nil || got.Category.Name != "Go" {
		t.Errorf("Category = %+v, want name %q", got.Category, "Go")
	}
}

func TestCardGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)

	_, err := cards.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestCardGetByID_LoadsTags(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)
	tags := NewTagRepo(db)

	card := createTestCard(t, cards, "q")
	for _, name := range []string{"go", "slices"} {
		tag, err := tags.GetOrCreateByName(context.Background(), name)
		if err != nil {
			t.Fatalf("GetOrCreateByName(%q) error = %v", name, err)
		}
		if err := tags.Attach(context.Background(), card.ID, tag.ID); err != nil {
			t.Fatalf("Attach() error = %v", err)
		}
	}

	got, err := cards.GetByID(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("len(Tags) = %d, want 2", len(got.Tags))
	}
	// ListByCard orders by name.
	if got.Tags[0].Name != "go" || got.Tags[1].Name != "slices" {
		t.Errorf("Tags = %v, want [go slices]", got.Tags)
	}
}

func TestCardList_SortByAddsAscending(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)
	ctx := context.Background()

	a := createTestCard(t, cards, "a")
	b := createTestCard(t, cards, "b")
	c := createTestCard(t, cards, "c")

	// adds: a=2, b=0, c=1
	for i := 0; i < 2; i++ {
		if _, err := cards.IncrementAdds(ctx, a.ID); err != nil {
			t.Fatalf("IncrementAdds() error = %v", err)
		}
	}
	if _, err := cards.IncrementAdds(ctx, c.ID); err != nil {
		t.Fatalf("IncrementAdds() error = %v", err)
	}

	got, err := cards.List(ctx, repository.CardListOptions{
		SortBy: repository.SortByAdds,
		Order:  repository.OrderAsc,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantOrder := []string{b.ID, c.ID, a.ID}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("got[%d].ID = %s, want %s (questions: %s %s %s)",
				i, got[i].ID, want, got[0].Question, got[1].Question, got[2].Question)
		}
	}
}

func TestCardList_DefaultSortNewestFirst(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)

	first := createTestCard(t, cards, "first")
	second := createTestCard(t, cards, "second")

	got, err := cards.List(context.Background(), repository.CardListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("default order = [%s %s], want newest first [%s %s]",
			got[0].Question, got[1].Question, "second", "first")
	}
}

func TestCardListByTag(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)
	tags := NewTagRepo(db)
	ctx := context.Background()

	tagged := createTestCard(t, cards, "tagged")
	createTestCard(t, cards, "untagged")

	tag, err := tags.GetOrCreateByName(ctx, "go")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}
	if err := tags.Attach(ctx, tagged.ID, tag.ID); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	got, err := cards.ListByTag(ctx, tag.ID)
	if err != nil {
		t.Fatalf("ListByTag() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != tagged.ID {
		t.Errorf("ListByTag() = %v, want only the tagged card", got)
	}
}

func TestCardIncrementViews(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)
	ctx := context.Background()

	card := createTestCard(t, cards, "q")

	views, err := cards.IncrementViews(ctx, card.ID)
	if err != nil {
		t.Fatalf("IncrementViews() error = %v", err)
	}
	if views != 1 {
		t.Errorf("views = %d, want 1", views)
	}

	views, err = cards.IncrementViews(ctx, card.ID)
	if err != nil {
		t.Fatalf("IncrementViews() error = %v", err)
	}
	if views != 2 {
		t.Errorf("views = %d, want 2", views)
	}
}

func TestCardIncrementViews_NotFound(t *testing.T) {
	db := newTestDB(t)
	cards := NewCardRepo(db)

	_, err := cards.IncrementViews(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("IncrementViews() error = %v, want ErrNotFound", err)
	}
}
