package service

import (
	"context"

	"lms-service/internal/models"
	"lms-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces implemented by the mongo repositories. Services depend on
// these so tests can substitute in-memory fakes.

type QuestionStore interface {
	Insert(ctx context.Context, question *models.ExamQuestion) error
	InsertMany(ctx context.Context, questions []*models.ExamQuestion) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExamQuestion, error)
	FindPage(ctx context.Context, filter repository.QuestionFilter, sortBy string, sortOrder int, skip, limit int64) ([]models.ExamQuestion, error)
	Count(ctx context.Context, filter repository.QuestionFilter) (int64, error)
	FindByCourse(ctx context.Context, courseID primitive.ObjectID, isActive bool) ([]models.ExamQuestion, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.ExamQuestion, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Summary(ctx context.Context, filter repository.QuestionFilter) (models.QuestionSummary, error)
	GroupByField(ctx context.Context, filter repository.QuestionFilter, field string) ([]models.GroupCount, error)
}

type CategoryStore interface {
	Insert(ctx context.Context, category *models.StageCategory) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.StageCategory, error)
	FindByName(ctx context.Context, name string, excludeID primitive.ObjectID) (*models.StageCategory, error)
	FindPage(ctx context.Context, filter repository.CategoryFilter, skip, limit int64) ([]models.StageCategory, error)
	Count(ctx context.Context, filter repository.CategoryFilter) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.StageCategory, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type LookupStore interface {
	Stage(ctx context.Context, id primitive.ObjectID) (*models.Stage, error)
	Subject(ctx context.Context, id primitive.ObjectID) (*models.Subject, error)
	Course(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	StagesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Stage, error)
	SubjectsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Subject, error)
	CoursesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// EventSink receives domain events on successful mutations. May be nil-backed;
// services treat publishing as fire-and-forget.
type EventSink interface {
	Publish(eventType string, payload any) error
}
