// Package service contains the business logic layer.
//
// Handlers parse HTTP and render templates; services enforce the rules
// (validation, tag normalization, sort parameter handling) and talk to
// the repository interfaces. Nothing in this package knows about HTTP,
// and nothing in it touches SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/levkina/flashdeck/internal/apperror"
	"github.com/levkina/flashdeck/internal/model"
	"github.com/levkina/flashdeck/internal/repository"
	"github.com/levkina/flashdeck/internal/validate"
)

const (
	MaxQuestionLength = 300
	MaxAnswerLength   = 20000
)

// CardService handles card creation, catalog listing, and the two
// display counters.
type CardService struct {
	cards      repository.CardRepository
	tags       repository.TagRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

// NewCardService creates a CardService. The repositories are interfaces
// so tests can inject in-memory fakes.
func NewCardService(
	cards repository.CardRepository,
	tags repository.TagRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *CardService {
	return &CardService{
		cards:      cards,
		tags:       tags,
		categories: categories,
		logger:     logger,
	}
}

// Create validates a card submission and persists it with its tag
// associations.
//
// All validation runs before the first write, so a failed submission
// leaves no rows behind. Persistence then happens in two steps: the card
// is inserted first to obtain its ID, and each normalized tag name is
// looked up or created and attached to it. The tag loop is not wrapped in
// a transaction; a failure partway through leaves the card persisted with
// the associations that succeeded so far.
func (s *CardService) Create(ctx context.Context, question, answer, categoryID, rawTags string) (*model.Card, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperror.ValidationFailed("question", "question is required")
	}
	if len(question) > MaxQuestionLength {
		return nil, apperror.ValidationFailed("question",
			fmt.Sprintf("question must be %d characters or less", MaxQuestionLength))
	}

	if answer == "" {
		return nil, apperror.ValidationFailed("answer", "answer is required")
	}
	if len(answer) > MaxAnswerLength {
		return nil, apperror.ValidationFailed("answer",
			fmt.Sprintf("answer must be %d characters or less", MaxAnswerLength))
	}
	if err := validate.CodeBlocks(answer); err != nil {
		return nil, apperror.ValidationFailed("answer", err.Error())
	}

	if err := validate.TagString(rawTags); err != nil {
		return nil, apperror.ValidationFailed("tags", err.Error())
	}
	tagNames := validate.NormalizeTags(rawTags)

	categoryID = strings.TrimSpace(categoryID)
	if categoryID != "" {
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			return nil, apperror.ValidationFailed("category", "unknown category")
		}
	}

	card := &model.Card{
		Question:   question,
		Answer:     answer,
		CategoryID: categoryID,
	}
	if err := s.cards.Create(ctx, card); err != nil {
		s.logger.Error("failed to create card",
			slog.String("question", question),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating card: %w", err)
	}

	for _, name := range tagNames {
		tag, err := s.tags.GetOrCreateByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving tag %q for card %s: %w", name, card.ID, err)
		}
		if err := s.tags.Attach(ctx, card.ID, tag.ID); err != nil {
			return nil, fmt.Errorf("attaching tag %q to card %s: %w", name, card.ID, err)
		}
		card.Tags = append(card.Tags, *tag)
	}

	s.logger.Info("card created",
		slog.String("id", card.ID),
		slog.Int("tags", len(card.Tags)),
	)

	return card, nil
}

// CreateCategory adds a category for the card form's select input.
func (s *CardService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "category name is required")
	}

	existing, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	for _, c := range existing {
		if c.Name == name {
			return nil, apperror.Conflict("category", name)
		}
	}

	category := &model.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	s.logger.Info("category created", slog.String("id", category.ID), slog.String("name", name))
	return category, nil
}

// CheckAnswer runs the code block checks on answer text without
// persisting anything. The preview endpoint uses it so the form and the
// preview agree on what is malformed.
func (s *CardService) CheckAnswer(answer string) error {
	if err := validate.CodeBlocks(answer); err != nil {
		return apperror.ValidationFailed("answer", err.Error())
	}
	return nil
}

// List returns the catalog, sorted per the raw query parameters.
//
// An unrecognized sort value silently falls back to the upload date;
// any order value other than "asc" means descending. This mirrors the
// catalog URL contract: /cards/catalog?sort=adds&order=asc.
func (s *CardService) List(ctx context.Context, sort, order string) ([]model.Card, error) {
	opts := repository.CardListOptions{
		SortBy: repository.SortByUploadDate,
		Order:  repository.OrderDesc,
	}

	switch repository.SortField(sort) {
	case repository.SortByViews:
		opts.SortBy = repository.SortByViews
	case repository.SortByAdds:
		opts.SortBy = repository.SortByAdds
	case repository.SortByUploadDate:
		opts.SortBy = repository.SortByUploadDate
	}

	if order == "asc" {
		opts.Order = repository.OrderAsc
	}

	cards, err := s.cards.List(ctx, opts)
	if err != nil {
		s.logger.Error("failed to list cards", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing cards: %w", err)
	}

	return cards, nil
}

// GetByID returns a card for the detail page and bumps its view counter.
func (s *CardService) GetByID(ctx context.Context, id string) (*model.Card, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "card ID is required")
	}

	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := s.cards.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	card.Views = views

	return card, nil
}

// AddToDeck bumps a card's adds counter and returns the new value.
func (s *CardService) AddToDeck(ctx context.Context, id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, apperror.ValidationFailed("id", "card ID is required")
	}

	adds, err := s.cards.IncrementAdds(ctx, id)
	if err != nil {
		return 0, err
	}

	s.logger.Info("card added to deck", slog.String("id", id), slog.Int64("adds", adds))
	return adds, nil
}

// ListByTag returns the cards carrying a tag, newest first.
func (s *CardService) ListByTag(ctx context.Context, tagID string) ([]model.Card, error) {
	cards, err := s.cards.ListByTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("listing cards by tag: %w", err)
	}
	return cards, nil
}

// ListByCategory returns the cards in a category, newest first.
func (s *CardService) ListByCategory(ctx context.Context, categoryID string) ([]model.Card, error) {
	cards, err := s.cards.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing cards by category: %w", err)
	}
	return cards, nil
}

// Categories returns all categories for the card form's select input.
func (s *CardService) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// Tags returns all tags for the catalog sidebar.
func (s *CardService) Tags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}
