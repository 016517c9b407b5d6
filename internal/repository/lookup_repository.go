package repository

import (
	"context"

	"lms-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LookupRepository reads the collaborator collections owned by the
// stage/subject/course/user modules. Existence checks and display-name
// resolution only; nothing here writes.
type LookupRepository struct {
	stages   *mongo.Collection
	subjects *mongo.Collection
	courses  *mongo.Collection
	users    *mongo.Collection
}

func NewLookupRepository(db *mongo.Database) *LookupRepository {
	return &LookupRepository{
		stages:   db.Collection("stages"),
		subjects: db.Collection("subjects"),
		courses:  db.Collection("courses"),
		users:    db.Collection("users"),
	}
}

func (r *LookupRepository) Stage(ctx context.Context, id primitive.ObjectID) (*models.Stage, error) {
	var stage models.Stage
	err := r.stages.FindOne(ctx, bson.M{"_id": id}).Decode(&stage)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &stage, nil
}

func (r *LookupRepository) Subject(ctx context.Context, id primitive.ObjectID) (*models.Subject, error) {
	var subject models.Subject
	err := r.subjects.FindOne(ctx, bson.M{"_id": id}).Decode(&subject)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &subject, nil
}

func (r *LookupRepository) Course(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var course models.Course
	err := r.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *LookupRepository) StagesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Stage, error) {
	cur, err := r.stages.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var stages []models.Stage
	for cur.Next(ctx) {
		var s models.Stage
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, cur.Err()
}

func (r *LookupRepository) SubjectsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Subject, error) {
	cur, err := r.subjects.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subjects []models.Subject
	for cur.Next(ctx) {
		var s models.Subject
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, cur.Err()
}

func (r *LookupRepository) CoursesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	cur, err := r.courses.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var courses []models.Course
	for cur.Next(ctx) {
		var c models.Course
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, cur.Err()
}

func (r *LookupRepository) UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, cur.Err()
}
