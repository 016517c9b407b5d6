package client

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// envelope is the service's standard response shape.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	Statistics json.RawMessage `json:"statistics"`
	Count      *int            `json:"count"`
}

type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalResults   int64 `json:"totalResults"`
	ResultsPerPage int   `json:"resultsPerPage"`
}

// QuestionRequest is the create payload for single and bulk creation.
type QuestionRequest struct {
	StageID         string   `json:"stageId"`
	SubjectID       string   `json:"subjectId"`
	CourseID        string   `json:"courseId"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	CorrectAnswer   *int     `json:"correctAnswer,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
	Image           string   `json:"image,omitempty"`
	NumberOfOptions *int     `json:"numberOfOptions,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
}

// QuestionUpdateRequest is the partial update payload; nil fields are omitted.
type QuestionUpdateRequest struct {
	Question        *string  `json:"question,omitempty"`
	Options         []string `json:"options,omitempty"`
	CorrectAnswer   *int     `json:"correctAnswer,omitempty"`
	Explanation     *string  `json:"explanation,omitempty"`
	Image           *string  `json:"image,omitempty"`
	NumberOfOptions *int     `json:"numberOfOptions,omitempty"`
	Difficulty      *string  `json:"difficulty,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

// ExamQuestion is a persisted question with raw references.
type ExamQuestion struct {
	ID              string    `json:"id"`
	Stage           string    `json:"stage"`
	Subject         string    `json:"subject"`
	Course          string    `json:"course"`
	Question        string    `json:"question"`
	Options         []string  `json:"options"`
	CorrectAnswer   int       `json:"correctAnswer"`
	Explanation     string    `json:"explanation"`
	Image           string    `json:"image"`
	NumberOfOptions int       `json:"numberOfOptions"`
	Difficulty      string    `json:"difficulty"`
	IsActive        bool      `json:"isActive"`
	CreatedBy       string    `json:"createdBy"`
	LastModifiedBy  string    `json:"lastModifiedBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type StageRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SubjectRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type CourseRef struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Instructor string `json:"instructor"`
}

type UserRef struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// ExamQuestionView is a question with references resolved for display.
type ExamQuestionView struct {
	ID              string     `json:"id"`
	Stage           StageRef   `json:"stage"`
	Subject         SubjectRef `json:"subject"`
	Course          CourseRef  `json:"course"`
	Question        string     `json:"question"`
	Options         []string   `json:"options"`
	CorrectAnswer   int        `json:"correctAnswer"`
	Explanation     string     `json:"explanation"`
	Image           string     `json:"image"`
	NumberOfOptions int        `json:"numberOfOptions"`
	Difficulty      string     `json:"difficulty"`
	IsActive        bool       `json:"isActive"`
	CreatedBy       UserRef    `json:"createdBy"`
	LastModifiedBy  UserRef    `json:"lastModifiedBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Summary holds the aggregate counts of a question set.
type Summary struct {
	TotalQuestions    int `json:"totalQuestions"`
	EasyQuestions     int `json:"easyQuestions"`
	MediumQuestions   int `json:"mediumQuestions"`
	HardQuestions     int `json:"hardQuestions"`
	ActiveQuestions   int `json:"activeQuestions"`
	InactiveQuestions int `json:"inactiveQuestions"`
}

type GroupCount struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Statistics is the payload of the statistics endpoint.
type Statistics struct {
	Summary             Summary      `json:"summary"`
	StageDistribution   []GroupCount `json:"stageDistribution"`
	SubjectDistribution []GroupCount `json:"subjectDistribution"`
}

// QuestionPage is one page of the question list with its summary.
type QuestionPage struct {
	Questions  []ExamQuestionView
	Pagination *Pagination
	Statistics Summary
}

// ListQuestionsParams are the query parameters of the question list endpoint.
type ListQuestionsParams struct {
	Page       int
	Limit      int
	StageID    string
	SubjectID  string
	CourseID   string
	Difficulty string
	IsActive   string
	Search     string
	SortBy     string
	SortOrder  string
}

func (p ListQuestionsParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	setIf(q, "stageId", p.StageID)
	setIf(q, "subjectId", p.SubjectID)
	setIf(q, "courseId", p.CourseID)
	setIf(q, "difficulty", p.Difficulty)
	setIf(q, "isActive", p.IsActive)
	setIf(q, "search", p.Search)
	setIf(q, "sortBy", p.SortBy)
	setIf(q, "sortOrder", p.SortOrder)
	return q
}

// CategoryRequest is the create payload for stage categories.
type CategoryRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Stages      []string `json:"stages,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// CategoryUpdateRequest is the partial update payload for stage categories.
type CategoryUpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Stages      []string `json:"stages,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

type CategoryStageRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// StageCategory is a category with member stages resolved.
type StageCategory struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Stages      []CategoryStageRef `json:"stages"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// CategoryPage is the category list payload with its nested pagination block.
type CategoryPage struct {
	Categories []StageCategory    `json:"categories"`
	Pagination CategoryPagination `json:"pagination"`
}

type CategoryPagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type categoryData struct {
	Category StageCategory `json:"category"`
}

// ListCategoriesParams are the query parameters of the category list endpoint.
type ListCategoriesParams struct {
	Page   int
	Limit  int
	Status string
	Search string
}

func (p ListCategoriesParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	setIf(q, "status", p.Status)
	setIf(q, "search", p.Search)
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
