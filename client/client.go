// Package client is a typed HTTP client for the LMS catalog service. It wraps
// every exam-question and stage-category endpoint, decodes the standard
// response envelope and surfaces server-side failure messages as *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out *envelope) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		if res.StatusCode >= 400 {
			return &APIError{Status: res.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if res.StatusCode >= 400 || !out.Success {
		return &APIError{Status: res.StatusCode, Code: out.Code, Message: out.Message}
	}
	return nil
}

func (c *Client) decodeData(env *envelope, dest any) error {
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, dest)
}

// ─── Exam questions ──────────────────────────────────────────────

// CreateQuestion creates a single exam question.
func (c *Client) CreateQuestion(ctx context.Context, in QuestionRequest) (*ExamQuestion, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/v1/exam-questions", nil, in, &env); err != nil {
		return nil, err
	}
	var question ExamQuestion
	if err := c.decodeData(&env, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

// ListQuestions fetches a filtered, paginated question page with its
// aggregate summary.
func (c *Client) ListQuestions(ctx context.Context, params ListQuestionsParams) (*QuestionPage, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/exam-questions", params.values(), nil, &env); err != nil {
		return nil, err
	}

	page := &QuestionPage{Pagination: env.Pagination}
	if err := c.decodeData(&env, &page.Questions); err != nil {
		return nil, err
	}
	if len(env.Statistics) > 0 {
		if err := json.Unmarshal(env.Statistics, &page.Statistics); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// GetQuestion fetches one question by id with references resolved.
func (c *Client) GetQuestion(ctx context.Context, id string) (*ExamQuestionView, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/exam-questions/"+id, nil, nil, &env); err != nil {
		return nil, err
	}
	var view ExamQuestionView
	if err := c.decodeData(&env, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateQuestion applies a partial update.
func (c *Client) UpdateQuestion(ctx context.Context, id string, in QuestionUpdateRequest) (*ExamQuestionView, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/v1/exam-questions/"+id, nil, in, &env); err != nil {
		return nil, err
	}
	var view ExamQuestionView
	if err := c.decodeData(&env, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	var env envelope
	return c.do(ctx, http.MethodDelete, "/api/v1/exam-questions/"+id, nil, nil, &env)
}

// ToggleQuestionStatus flips the active flag and returns the updated record.
func (c *Client) ToggleQuestionStatus(ctx context.Context, id string) (*ExamQuestion, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPatch, "/api/v1/exam-questions/"+id+"/toggle-status", nil, nil, &env); err != nil {
		return nil, err
	}
	var question ExamQuestion
	if err := c.decodeData(&env, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

// ListQuestionsByCourse fetches the questions of one course.
func (c *Client) ListQuestionsByCourse(ctx context.Context, courseID string, isActive bool) ([]ExamQuestionView, error) {
	query := url.Values{"isActive": {strconv.FormatBool(isActive)}}
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/exam-questions/course/"+courseID, query, nil, &env); err != nil {
		return nil, err
	}
	var views []ExamQuestionView
	if err := c.decodeData(&env, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// BulkCreateQuestions creates a batch of questions. The batch is atomic: a
// validation failure on any entry persists nothing.
func (c *Client) BulkCreateQuestions(ctx context.Context, questions []QuestionRequest) ([]ExamQuestion, error) {
	body := map[string]any{"questions": questions}
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/v1/exam-questions/bulk", nil, body, &env); err != nil {
		return nil, err
	}
	var created []ExamQuestion
	if err := c.decodeData(&env, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// QuestionStatistics fetches aggregate statistics, optionally filtered.
// Trailing empty ids are dropped from the path; an empty id before a
// set one becomes the "undefined" segment, which the server treats as
// no filter, so later ids are never silently lost.
func (c *Client) QuestionStatistics(ctx context.Context, courseID, stageID, subjectID string) (*Statistics, error) {
	parts := []string{courseID, stageID, subjectID}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	path := "/api/v1/exam-questions/statistics"
	for _, part := range parts {
		if part == "" {
			part = "undefined"
		}
		path += "/" + part
	}

	var env envelope
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	var stats Statistics
	if err := c.decodeData(&env, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ─── Stage categories ────────────────────────────────────────────

// ListCategories fetches the public category list.
func (c *Client) ListCategories(ctx context.Context, params ListCategoriesParams) (*CategoryPage, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/stage-categories", params.values(), nil, &env); err != nil {
		return nil, err
	}
	var page CategoryPage
	if err := c.decodeData(&env, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetCategory fetches one category with member stages resolved.
func (c *Client) GetCategory(ctx context.Context, id string) (*StageCategory, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/stage-categories/"+id, nil, nil, &env); err != nil {
		return nil, err
	}
	var wrapper categoryData
	if err := c.decodeData(&env, &wrapper); err != nil {
		return nil, err
	}
	return &wrapper.Category, nil
}

// CreateCategory creates a stage category.
func (c *Client) CreateCategory(ctx context.Context, in CategoryRequest) (*StageCategory, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/v1/stage-categories", nil, in, &env); err != nil {
		return nil, err
	}
	var wrapper categoryData
	if err := c.decodeData(&env, &wrapper); err != nil {
		return nil, err
	}
	return &wrapper.Category, nil
}

// UpdateCategory applies a partial update.
func (c *Client) UpdateCategory(ctx context.Context, id string, in CategoryUpdateRequest) (*StageCategory, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/v1/stage-categories/"+id, nil, in, &env); err != nil {
		return nil, err
	}
	var wrapper categoryData
	if err := c.decodeData(&env, &wrapper); err != nil {
		return nil, err
	}
	return &wrapper.Category, nil
}

// DeleteCategory removes a category. Member stages are untouched.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	var env envelope
	return c.do(ctx, http.MethodDelete, "/api/v1/stage-categories/"+id, nil, nil, &env)
}
