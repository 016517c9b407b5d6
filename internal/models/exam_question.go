package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	MinOptions = 2
	MaxOptions = 6
)

// ExamQuestion is a single multiple-choice assessment item tied to a stage,
// subject and course.
type ExamQuestion struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Stage           primitive.ObjectID `bson:"stage" json:"stage"`
	Subject         primitive.ObjectID `bson:"subject" json:"subject"`
	Course          primitive.ObjectID `bson:"course" json:"course"`
	Question        string             `bson:"question" json:"question"`
	Options         []string           `bson:"options" json:"options"`
	CorrectAnswer   int                `bson:"correct_answer" json:"correctAnswer"`
	Explanation     string             `bson:"explanation" json:"explanation"`
	Image           string             `bson:"image" json:"image"`
	NumberOfOptions int                `bson:"number_of_options" json:"numberOfOptions"`
	Difficulty      string             `bson:"difficulty" json:"difficulty"`
	IsActive        bool               `bson:"is_active" json:"isActive"`
	CreatedBy       primitive.ObjectID `bson:"created_by" json:"createdBy"`
	LastModifiedBy  primitive.ObjectID `bson:"last_modified_by" json:"lastModifiedBy"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CorrectAnswerText returns the option the correct-answer index points at.
func (q *ExamQuestion) CorrectAnswerText() string {
	if q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options) {
		return q.Options[q.CorrectAnswer]
	}
	return ""
}

// Validate enforces the schema constraints before persistence. Length limits
// count characters, not bytes, so multibyte text is measured the way users
// see it.
func (q *ExamQuestion) Validate() error {
	if n := utf8.RuneCountInString(q.Question); n < 10 || n > 1000 {
		return fmt.Errorf("question must be between 10 and 1000 characters")
	}
	if len(q.Options) < MinOptions {
		return fmt.Errorf("at least %d options are required", MinOptions)
	}
	if len(q.Options) > MaxOptions {
		return fmt.Errorf("maximum %d options allowed", MaxOptions)
	}
	for i, opt := range q.Options {
		if n := utf8.RuneCountInString(opt); n < 1 || n > 500 {
			return fmt.Errorf("option %d must be between 1 and 500 characters", i+1)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("correct answer index must be within options range")
	}
	if utf8.RuneCountInString(q.Explanation) > 1000 {
		return fmt.Errorf("explanation should be less than 1000 characters")
	}
	if q.NumberOfOptions != len(q.Options) {
		return fmt.Errorf("number of options must match numberOfOptions field")
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("difficulty must be one of easy, medium, hard")
	}
	return nil
}

// QuestionSummary holds the aggregate counts over a filtered question set.
type QuestionSummary struct {
	TotalQuestions    int `bson:"total_questions" json:"totalQuestions"`
	EasyQuestions     int `bson:"easy_questions" json:"easyQuestions"`
	MediumQuestions   int `bson:"medium_questions" json:"mediumQuestions"`
	HardQuestions     int `bson:"hard_questions" json:"hardQuestions"`
	ActiveQuestions   int `bson:"active_questions" json:"activeQuestions"`
	InactiveQuestions int `bson:"inactive_questions" json:"inactiveQuestions"`
}

// GroupCount is one bucket of a grouped distribution, sorted descending by count.
type GroupCount struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Count int                `bson:"count" json:"count"`
}

// QuestionStatistics is the payload of the statistics operation.
type QuestionStatistics struct {
	Summary             QuestionSummary `json:"summary"`
	StageDistribution   []GroupCount    `json:"stageDistribution"`
	SubjectDistribution []GroupCount    `json:"subjectDistribution"`
}
