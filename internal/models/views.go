package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Read-side projections. The persisted entities keep raw ObjectID references;
// these views carry the referenced entities' display fields for responses.

type StageRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

type SubjectRef struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
}

type CourseRef struct {
	ID         primitive.ObjectID `json:"id"`
	Title      string             `json:"title"`
	Instructor string             `json:"instructor"`
}

type UserRef struct {
	ID       primitive.ObjectID `json:"id"`
	FullName string             `json:"fullName"`
	Username string             `json:"username"`
}

// ExamQuestionView is an ExamQuestion with its references resolved for display.
type ExamQuestionView struct {
	ID              primitive.ObjectID `json:"id"`
	Stage           StageRef           `json:"stage"`
	Subject         SubjectRef         `json:"subject"`
	Course          CourseRef          `json:"course"`
	Question        string             `json:"question"`
	Options         []string           `json:"options"`
	CorrectAnswer   int                `json:"correctAnswer"`
	Explanation     string             `json:"explanation"`
	Image           string             `json:"image"`
	NumberOfOptions int                `json:"numberOfOptions"`
	Difficulty      string             `json:"difficulty"`
	IsActive        bool               `json:"isActive"`
	CreatedBy       UserRef            `json:"createdBy"`
	LastModifiedBy  UserRef            `json:"lastModifiedBy"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// CategoryStageRef resolves a member stage with its status for category views.
type CategoryStageRef struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Status string             `json:"status"`
}

// StageCategoryView is a StageCategory with member stages resolved.
type StageCategoryView struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Stages      []CategoryStageRef `json:"stages"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
