package repository

import (
	"context"

	"lms-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuestionFilter is the set of optional equality filters and the substring
// search applied to list/aggregate queries.
type QuestionFilter struct {
	Stage      *primitive.ObjectID
	Subject    *primitive.ObjectID
	Course     *primitive.ObjectID
	Difficulty string
	IsActive   *bool
	Search     string
}

func (f QuestionFilter) toBson() bson.M {
	filter := bson.M{}
	if f.Stage != nil {
		filter["stage"] = *f.Stage
	}
	if f.Subject != nil {
		filter["subject"] = *f.Subject
	}
	if f.Course != nil {
		filter["course"] = *f.Course
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if f.IsActive != nil {
		filter["is_active"] = *f.IsActive
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"question": bson.M{"$regex": f.Search, "$options": "i"}},
			bson.M{"explanation": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}
	return filter
}

type ExamQuestionRepository struct {
	Col *mongo.Collection
}

func NewExamQuestionRepository(db *mongo.Database) *ExamQuestionRepository {
	return &ExamQuestionRepository{Col: db.Collection("exam_questions")}
}

func (r *ExamQuestionRepository) Insert(ctx context.Context, question *models.ExamQuestion) error {
	res, err := r.Col.InsertOne(ctx, question)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		question.ID = oid
	}
	return nil
}

func (r *ExamQuestionRepository) InsertMany(ctx context.Context, questions []*models.ExamQuestion) error {
	docs := make([]interface{}, len(questions))
	for i, q := range questions {
		docs[i] = q
	}
	res, err := r.Col.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range res.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok && i < len(questions) {
			questions[i].ID = oid
		}
	}
	return nil
}

func (r *ExamQuestionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExamQuestion, error) {
	var question models.ExamQuestion
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

// FindPage returns one page of questions matching the filter, sorted by the
// given field and direction (1 asc, -1 desc).
func (r *ExamQuestionRepository) FindPage(ctx context.Context, filter QuestionFilter, sortBy string, sortOrder int, skip, limit int64) ([]models.ExamQuestion, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: sortOrder}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := r.Col.Find(ctx, filter.toBson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var questions []models.ExamQuestion
	for cur.Next(ctx) {
		var q models.ExamQuestion
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}

func (r *ExamQuestionRepository) Count(ctx context.Context, filter QuestionFilter) (int64, error) {
	return r.Col.CountDocuments(ctx, filter.toBson())
}

func (r *ExamQuestionRepository) FindByCourse(ctx context.Context, courseID primitive.ObjectID, isActive bool) ([]models.ExamQuestion, error) {
	filter := bson.M{"course": courseID, "is_active": isActive}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var questions []models.ExamQuestion
	for cur.Next(ctx) {
		var q models.ExamQuestion
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}

func (r *ExamQuestionRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.ExamQuestion, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.ExamQuestion
	err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *ExamQuestionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Summary aggregates difficulty buckets and active/inactive counts over the
// filtered set.
func (r *ExamQuestionRepository) Summary(ctx context.Context, filter QuestionFilter) (models.QuestionSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.toBson()}},
		{{Key: "$group", Value: bson.M{
			"_id":                nil,
			"total_questions":    bson.M{"$sum": 1},
			"easy_questions":     bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$difficulty", models.DifficultyEasy}}, 1, 0}}},
			"medium_questions":   bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$difficulty", models.DifficultyMedium}}, 1, 0}}},
			"hard_questions":     bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$difficulty", models.DifficultyHard}}, 1, 0}}},
			"active_questions":   bson.M{"$sum": bson.M{"$cond": bson.A{"$is_active", 1, 0}}},
			"inactive_questions": bson.M{"$sum": bson.M{"$cond": bson.A{"$is_active", 0, 1}}},
		}}},
	}
	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.QuestionSummary{}, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var summary models.QuestionSummary
		if err := cur.Decode(&summary); err != nil {
			return models.QuestionSummary{}, err
		}
		return summary, nil
	}
	return models.QuestionSummary{}, cur.Err()
}

// GroupByField returns grouped counts for a reference field ("stage" or
// "subject"), sorted descending.
func (r *ExamQuestionRepository) GroupByField(ctx context.Context, filter QuestionFilter, field string) ([]models.GroupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.toBson()}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []models.GroupCount
	for cur.Next(ctx) {
		var gc models.GroupCount
		if err := cur.Decode(&gc); err != nil {
			return nil, err
		}
		counts = append(counts, gc)
	}
	return counts, cur.Err()
}
