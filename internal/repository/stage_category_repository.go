package repository

import (
	"context"

	"lms-service/internal/apperr"
	"lms-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryFilter holds the optional status filter and text search for
// category list queries.
type CategoryFilter struct {
	Status string
	Search string
}

func (f CategoryFilter) toBson() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}
	return filter
}

type StageCategoryRepository struct {
	Col *mongo.Collection
}

func NewStageCategoryRepository(db *mongo.Database) *StageCategoryRepository {
	return &StageCategoryRepository{Col: db.Collection("stage_categories")}
}

// Insert persists a category. The unique index on name is the source of
// truth for uniqueness: a duplicate-key error from the store is translated
// into the user-facing duplicate-name error here, so the race loser of two
// concurrent creates still gets a 400.
func (r *StageCategoryRepository) Insert(ctx context.Context, category *models.StageCategory) error {
	res, err := r.Col.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Duplicate("Category name already exists")
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		category.ID = oid
	}
	return nil
}

func (r *StageCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.StageCategory, error) {
	var category models.StageCategory
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// FindByName checks the uniqueness pre-condition. excludeID skips the record
// being renamed; pass primitive.NilObjectID for creates.
func (r *StageCategoryRepository) FindByName(ctx context.Context, name string, excludeID primitive.ObjectID) (*models.StageCategory, error) {
	filter := bson.M{"name": name}
	if excludeID != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	var category models.StageCategory
	err := r.Col.FindOne(ctx, filter).Decode(&category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *StageCategoryRepository) FindPage(ctx context.Context, filter CategoryFilter, skip, limit int64) ([]models.StageCategory, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := r.Col.Find(ctx, filter.toBson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var categories []models.StageCategory
	for cur.Next(ctx) {
		var c models.StageCategory
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, cur.Err()
}

func (r *StageCategoryRepository) Count(ctx context.Context, filter CategoryFilter) (int64, error) {
	return r.Col.CountDocuments(ctx, filter.toBson())
}

func (r *StageCategoryRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.StageCategory, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.StageCategory
	err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Duplicate("Category name already exists")
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes the category by id. It returns false when no document
// matched. Member stages are never touched.
func (r *StageCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
