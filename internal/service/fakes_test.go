package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"lms-service/internal/apperr"
	"lms-service/internal/models"
	"lms-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store fakes backing the service tests.

type fakeQuestionStore struct {
	questions []*models.ExamQuestion
}

func (f *fakeQuestionStore) matches(q *models.ExamQuestion, filter repository.QuestionFilter) bool {
	if filter.Stage != nil && q.Stage != *filter.Stage {
		return false
	}
	if filter.Subject != nil && q.Subject != *filter.Subject {
		return false
	}
	if filter.Course != nil && q.Course != *filter.Course {
		return false
	}
	if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
		return false
	}
	if filter.IsActive != nil && q.IsActive != *filter.IsActive {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(q.Question), needle) &&
			!strings.Contains(strings.ToLower(q.Explanation), needle) {
			return false
		}
	}
	return true
}

func (f *fakeQuestionStore) filtered(filter repository.QuestionFilter) []*models.ExamQuestion {
	var out []*models.ExamQuestion
	for _, q := range f.questions {
		if f.matches(q, filter) {
			out = append(out, q)
		}
	}
	return out
}

func (f *fakeQuestionStore) Insert(_ context.Context, question *models.ExamQuestion) error {
	question.ID = primitive.NewObjectID()
	f.questions = append(f.questions, question)
	return nil
}

func (f *fakeQuestionStore) InsertMany(_ context.Context, questions []*models.ExamQuestion) error {
	for _, q := range questions {
		q.ID = primitive.NewObjectID()
		f.questions = append(f.questions, q)
	}
	return nil
}

func (f *fakeQuestionStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.ExamQuestion, error) {
	for _, q := range f.questions {
		if q.ID == id {
			clone := *q
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeQuestionStore) FindPage(_ context.Context, filter repository.QuestionFilter, sortBy string, sortOrder int, skip, limit int64) ([]models.ExamQuestion, error) {
	matched := f.filtered(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch sortBy {
		case "question":
			less = a.Question < b.Question
		case "difficulty":
			less = a.Difficulty < b.Difficulty
		case "updated_at":
			less = a.UpdatedAt.Before(b.UpdatedAt)
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if sortOrder < 0 {
			return !less
		}
		return less
	})

	var out []models.ExamQuestion
	for i := skip; i < int64(len(matched)) && int64(len(out)) < limit; i++ {
		out = append(out, *matched[i])
	}
	return out, nil
}

func (f *fakeQuestionStore) Count(_ context.Context, filter repository.QuestionFilter) (int64, error) {
	return int64(len(f.filtered(filter))), nil
}

func (f *fakeQuestionStore) FindByCourse(_ context.Context, courseID primitive.ObjectID, isActive bool) ([]models.ExamQuestion, error) {
	filter := repository.QuestionFilter{Course: &courseID, IsActive: &isActive}
	matched := f.filtered(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	out := make([]models.ExamQuestion, 0, len(matched))
	for _, q := range matched {
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeQuestionStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.ExamQuestion, error) {
	for _, q := range f.questions {
		if q.ID != id {
			continue
		}
		for key, value := range set {
			switch key {
			case "question":
				q.Question = value.(string)
			case "options":
				q.Options = value.([]string)
			case "correct_answer":
				q.CorrectAnswer = value.(int)
			case "explanation":
				q.Explanation = value.(string)
			case "image":
				q.Image = value.(string)
			case "number_of_options":
				q.NumberOfOptions = value.(int)
			case "difficulty":
				q.Difficulty = value.(string)
			case "is_active":
				q.IsActive = value.(bool)
			case "last_modified_by":
				q.LastModifiedBy = value.(primitive.ObjectID)
			case "updated_at":
				q.UpdatedAt = value.(time.Time)
			}
		}
		clone := *q
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, q := range f.questions {
		if q.ID == id {
			f.questions = append(f.questions[:i], f.questions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeQuestionStore) Summary(_ context.Context, filter repository.QuestionFilter) (models.QuestionSummary, error) {
	var summary models.QuestionSummary
	for _, q := range f.filtered(filter) {
		summary.TotalQuestions++
		switch q.Difficulty {
		case models.DifficultyEasy:
			summary.EasyQuestions++
		case models.DifficultyMedium:
			summary.MediumQuestions++
		case models.DifficultyHard:
			summary.HardQuestions++
		}
		if q.IsActive {
			summary.ActiveQuestions++
		} else {
			summary.InactiveQuestions++
		}
	}
	return summary, nil
}

func (f *fakeQuestionStore) GroupByField(_ context.Context, filter repository.QuestionFilter, field string) ([]models.GroupCount, error) {
	counts := map[primitive.ObjectID]int{}
	for _, q := range f.filtered(filter) {
		switch field {
		case "stage":
			counts[q.Stage]++
		case "subject":
			counts[q.Subject]++
		}
	}
	out := make([]models.GroupCount, 0, len(counts))
	for id, count := range counts {
		out = append(out, models.GroupCount{ID: id, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

type fakeCategoryStore struct {
	categories []*models.StageCategory
}

func (f *fakeCategoryStore) matches(c *models.StageCategory, filter repository.CategoryFilter) bool {
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			return false
		}
	}
	return true
}

func (f *fakeCategoryStore) Insert(_ context.Context, category *models.StageCategory) error {
	// emulate the unique index on name
	for _, c := range f.categories {
		if c.Name == category.Name {
			return apperr.Duplicate("Category name already exists")
		}
	}
	category.ID = primitive.NewObjectID()
	f.categories = append(f.categories, category)
	return nil
}

func (f *fakeCategoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.StageCategory, error) {
	for _, c := range f.categories {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryStore) FindByName(_ context.Context, name string, excludeID primitive.ObjectID) (*models.StageCategory, error) {
	for _, c := range f.categories {
		if c.Name == name && c.ID != excludeID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryStore) FindPage(_ context.Context, filter repository.CategoryFilter, skip, limit int64) ([]models.StageCategory, error) {
	var matched []*models.StageCategory
	for _, c := range f.categories {
		if f.matches(c, filter) {
			matched = append(matched, c)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	var out []models.StageCategory
	for i := skip; i < int64(len(matched)) && int64(len(out)) < limit; i++ {
		out = append(out, *matched[i])
	}
	return out, nil
}

func (f *fakeCategoryStore) Count(_ context.Context, filter repository.CategoryFilter) (int64, error) {
	var total int64
	for _, c := range f.categories {
		if f.matches(c, filter) {
			total++
		}
	}
	return total, nil
}

func (f *fakeCategoryStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.StageCategory, error) {
	for _, c := range f.categories {
		if c.ID != id {
			continue
		}
		if name, ok := set["name"].(string); ok {
			for _, other := range f.categories {
				if other.ID != id && other.Name == name {
					return nil, apperr.Duplicate("Category name already exists")
				}
			}
			c.Name = name
		}
		if description, ok := set["description"].(string); ok {
			c.Description = description
		}
		if status, ok := set["status"].(string); ok {
			c.Status = status
		}
		if stages, ok := set["stages"].([]primitive.ObjectID); ok {
			c.Stages = stages
		}
		if updatedAt, ok := set["updated_at"].(time.Time); ok {
			c.UpdatedAt = updatedAt
		}
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeCategoryStore) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeLookupStore struct {
	stages   map[primitive.ObjectID]models.Stage
	subjects map[primitive.ObjectID]models.Subject
	courses  map[primitive.ObjectID]models.Course
	users    map[primitive.ObjectID]models.User
}

func newFakeLookupStore() *fakeLookupStore {
	return &fakeLookupStore{
		stages:   map[primitive.ObjectID]models.Stage{},
		subjects: map[primitive.ObjectID]models.Subject{},
		courses:  map[primitive.ObjectID]models.Course{},
		users:    map[primitive.ObjectID]models.User{},
	}
}

func (f *fakeLookupStore) Stage(_ context.Context, id primitive.ObjectID) (*models.Stage, error) {
	if s, ok := f.stages[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeLookupStore) Subject(_ context.Context, id primitive.ObjectID) (*models.Subject, error) {
	if s, ok := f.subjects[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeLookupStore) Course(_ context.Context, id primitive.ObjectID) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeLookupStore) StagesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Stage, error) {
	var out []models.Stage
	for _, id := range ids {
		if s, ok := f.stages[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeLookupStore) SubjectsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Subject, error) {
	var out []models.Subject
	for _, id := range ids {
		if s, ok := f.subjects[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeLookupStore) CoursesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	var out []models.Course
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeLookupStore) UsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeEventSink struct {
	events []string
}

func (f *fakeEventSink) Publish(eventType string, _ any) error {
	f.events = append(f.events, eventType)
	return nil
}
