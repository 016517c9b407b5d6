package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"lms-service/internal/apperr"
	"lms-service/internal/cache"
	"lms-service/internal/models"
	"lms-service/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Stages      []string `json:"stages"`
	Status      string   `json:"status"`
}

// CategoryUpdateInput is the partial-merge payload for updates. A nil Stages
// slice means "not supplied".
type CategoryUpdateInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Stages      []string `json:"stages"`
	Status      *string  `json:"status"`
}

// CategoryListQuery mirrors the public list endpoint's query parameters.
type CategoryListQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// CategoryPage is the cacheable result of a list query.
type CategoryPage struct {
	Categories []models.StageCategoryView `json:"categories"`
	Total      int64                      `json:"total"`
}

type StageCategoryService struct {
	categories CategoryStore
	lookups    LookupStore
	cache      *cache.Cache
	events     EventSink
	log        zerolog.Logger
}

func NewStageCategoryService(categories CategoryStore, lookups LookupStore, c *cache.Cache, events EventSink, log zerolog.Logger) *StageCategoryService {
	return &StageCategoryService{categories: categories, lookups: lookups, cache: c, events: events, log: log}
}

func (s *StageCategoryService) publish(eventType string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(eventType, payload); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}

func (s *StageCategoryService) invalidateCache(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx); err != nil {
		s.log.Warn().Err(err).Msg("category cache invalidation failed")
	}
}

// List returns one page of categories with member stages resolved. Results
// are served from the read cache when present.
func (s *StageCategoryService) List(ctx context.Context, query CategoryListQuery) (*CategoryPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 50
	}

	cacheKey := fmt.Sprintf("list:p=%d:l=%d:st=%s:q=%s", query.Page, query.Limit, query.Status, query.Search)
	var cached CategoryPage
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	filter := repository.CategoryFilter{Status: query.Status, Search: query.Search}
	skip := int64(query.Page-1) * int64(query.Limit)
	categories, err := s.categories.FindPage(ctx, filter, skip, int64(query.Limit))
	if err != nil {
		return nil, err
	}
	total, err := s.categories.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	views, err := s.resolveStages(ctx, categories)
	if err != nil {
		return nil, err
	}

	page := &CategoryPage{Categories: views, Total: total}
	if err := s.cache.Set(ctx, cacheKey, page); err != nil {
		s.log.Warn().Err(err).Msg("category cache set failed")
	}
	return page, nil
}

func (s *StageCategoryService) Get(ctx context.Context, id string) (*models.StageCategoryView, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Category not found")
	}

	cacheKey := "get:" + id
	var cached models.StageCategoryView
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	category, err := s.categories.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.NotFound("Category not found")
	}

	views, err := s.resolveStages(ctx, []models.StageCategory{*category})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, &views[0]); err != nil {
		s.log.Warn().Err(err).Msg("category cache set failed")
	}
	return &views[0], nil
}

// validateStageIDs deduplicates the submitted set, preserving order, and
// verifies every id resolves to an existing Stage.
func (s *StageCategoryService) validateStageIDs(ctx context.Context, ids []string) ([]primitive.ObjectID, error) {
	seen := map[string]struct{}{}
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, raw := range ids {
		if raw == "" {
			continue
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}

		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, apperr.Validation("Stage not found: %s", raw)
		}
		stage, err := s.lookups.Stage(ctx, oid)
		if err != nil {
			return nil, err
		}
		if stage == nil {
			return nil, apperr.Validation("Stage not found: %s", raw)
		}
		unique = append(unique, oid)
	}
	return unique, nil
}

func (s *StageCategoryService) Create(ctx context.Context, in CategoryInput) (*models.StageCategoryView, error) {
	if in.Name == "" {
		return nil, apperr.Validation("Name is required")
	}

	// Early duplicate exit; the unique index catches concurrent creates.
	existing, err := s.categories.FindByName(ctx, in.Name, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Duplicate("Category name already exists")
	}

	stageIDs, err := s.validateStageIDs(ctx, in.Stages)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusActive
	}
	now := time.Now().UTC()
	category := &models.StageCategory{
		Name:        in.Name,
		Description: in.Description,
		Stages:      stageIDs,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := category.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	if err := s.categories.Insert(ctx, category); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.publish("category.created", bson.M{"id": category.ID.Hex(), "name": category.Name})

	views, err := s.resolveStages(ctx, []models.StageCategory{*category})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *StageCategoryService) Update(ctx context.Context, id string, in CategoryUpdateInput) (*models.StageCategoryView, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Category not found")
	}

	set := bson.M{}
	if in.Name != nil && *in.Name != "" {
		if utf8.RuneCountInString(*in.Name) > 100 {
			return nil, apperr.Validation("Category name should be less than 100 characters")
		}
		conflict, err := s.categories.FindByName(ctx, *in.Name, oid)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, apperr.Duplicate("Category name already exists")
		}
		set["name"] = *in.Name
	}
	if in.Description != nil {
		if utf8.RuneCountInString(*in.Description) > 300 {
			return nil, apperr.Validation("Description should be less than 300 characters")
		}
		set["description"] = *in.Description
	}
	if in.Status != nil && *in.Status != "" {
		if *in.Status != models.StatusActive && *in.Status != models.StatusInactive {
			return nil, apperr.Validation("status must be active or inactive")
		}
		set["status"] = *in.Status
	}
	if in.Stages != nil {
		stageIDs, err := s.validateStageIDs(ctx, in.Stages)
		if err != nil {
			return nil, err
		}
		set["stages"] = stageIDs
	}
	set["updated_at"] = time.Now().UTC()

	updated, err := s.categories.Update(ctx, oid, set)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Category not found")
	}

	s.invalidateCache(ctx)
	s.publish("category.updated", bson.M{"id": id})

	views, err := s.resolveStages(ctx, []models.StageCategory{*updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes the category. Member stages are grouping references only and
// are never deleted or modified.
func (s *StageCategoryService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("Category not found")
	}
	deleted, err := s.categories.Delete(ctx, oid)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Category not found")
	}

	s.invalidateCache(ctx)
	s.publish("category.deleted", bson.M{"id": id})
	return nil
}

// resolveStages builds category views with member stage name/status resolved
// in one batched lookup.
func (s *StageCategoryService) resolveStages(ctx context.Context, categories []models.StageCategory) ([]models.StageCategoryView, error) {
	if len(categories) == 0 {
		return []models.StageCategoryView{}, nil
	}

	idSet := map[primitive.ObjectID]struct{}{}
	for _, c := range categories {
		for _, id := range c.Stages {
			idSet[id] = struct{}{}
		}
	}

	stageByID := map[primitive.ObjectID]models.Stage{}
	if len(idSet) > 0 {
		stages, err := s.lookups.StagesByIDs(ctx, keys(idSet))
		if err != nil {
			return nil, err
		}
		for _, st := range stages {
			stageByID[st.ID] = st
		}
	}

	views := make([]models.StageCategoryView, 0, len(categories))
	for _, c := range categories {
		refs := make([]models.CategoryStageRef, 0, len(c.Stages))
		for _, id := range c.Stages {
			st := stageByID[id]
			refs = append(refs, models.CategoryStageRef{ID: id, Name: st.Name, Status: st.Status})
		}
		views = append(views, models.StageCategoryView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Stages:      refs,
			Status:      c.Status,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		})
	}
	return views, nil
}
