package service

import (
	"context"
	"fmt"
	"time"

	"lms-service/internal/apperr"
	"lms-service/internal/models"
	"lms-service/internal/repository"
	"lms-service/internal/validator"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionInput is the payload for creating a question (single or bulk).
// Pointer fields distinguish "absent" from zero values. The objectid rule
// rejects malformed reference ids at bind time; presence and existence are
// checked by the service so the error ordering matches validateInput.
type QuestionInput struct {
	StageID         string   `json:"stageId" binding:"omitempty,objectid"`
	SubjectID       string   `json:"subjectId" binding:"omitempty,objectid"`
	CourseID        string   `json:"courseId" binding:"omitempty,objectid"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	CorrectAnswer   *int     `json:"correctAnswer"`
	Explanation     string   `json:"explanation"`
	Image           string   `json:"image"`
	NumberOfOptions *int     `json:"numberOfOptions"`
	Difficulty      string   `json:"difficulty"`
}

// QuestionUpdateInput is the partial-merge payload for updates.
type QuestionUpdateInput struct {
	Question        *string  `json:"question"`
	Options         []string `json:"options"`
	CorrectAnswer   *int     `json:"correctAnswer"`
	Explanation     *string  `json:"explanation"`
	Image           *string  `json:"image"`
	NumberOfOptions *int     `json:"numberOfOptions"`
	Difficulty      *string  `json:"difficulty"`
	IsActive        *bool    `json:"isActive"`
}

// QuestionListQuery mirrors the list endpoint's query parameters.
type QuestionListQuery struct {
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

type ExamQuestionService struct {
	questions QuestionStore
	lookups   LookupStore
	events    EventSink
	log       zerolog.Logger
}

func NewExamQuestionService(questions QuestionStore, lookups LookupStore, events EventSink, log zerolog.Logger) *ExamQuestionService {
	return &ExamQuestionService{questions: questions, lookups: lookups, events: events, log: log}
}

func (s *ExamQuestionService) publish(eventType string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(eventType, payload); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}

// refIDs holds the parsed and verified entity references of a create payload.
type refIDs struct {
	stage, subject, course primitive.ObjectID
}

// validateInput runs the create-time checks shared by single and bulk create.
// label is appended to error messages in bulk mode to identify the offending
// question.
func (s *ExamQuestionService) validateInput(ctx context.Context, in QuestionInput, label string) (refIDs, error) {
	var refs refIDs

	if in.StageID == "" || in.SubjectID == "" || in.CourseID == "" || in.Question == "" || in.Options == nil || in.CorrectAnswer == nil {
		return refs, apperr.Validation("Missing required fields%s", label)
	}

	stageID, err := primitive.ObjectIDFromHex(in.StageID)
	if err != nil {
		return refs, apperr.Validation("Invalid stage ID format%s", label)
	}
	subjectID, err := primitive.ObjectIDFromHex(in.SubjectID)
	if err != nil {
		return refs, apperr.Validation("Invalid subject ID format%s", label)
	}
	courseID, err := primitive.ObjectIDFromHex(in.CourseID)
	if err != nil {
		return refs, apperr.Validation("Invalid course ID format%s", label)
	}

	stage, err := s.lookups.Stage(ctx, stageID)
	if err != nil {
		return refs, err
	}
	if stage == nil {
		return refs, apperr.NotFound("Stage not found%s", label)
	}
	subject, err := s.lookups.Subject(ctx, subjectID)
	if err != nil {
		return refs, err
	}
	if subject == nil {
		return refs, apperr.NotFound("Subject not found%s", label)
	}
	course, err := s.lookups.Course(ctx, courseID)
	if err != nil {
		return refs, err
	}
	if course == nil {
		return refs, apperr.NotFound("Course not found%s", label)
	}

	if len(in.Options) < models.MinOptions {
		return refs, apperr.Validation("At least %d options are required%s", models.MinOptions, label)
	}
	if *in.CorrectAnswer < 0 || *in.CorrectAnswer >= len(in.Options) {
		return refs, apperr.Validation("Invalid correct answer index%s", label)
	}

	refs = refIDs{stage: stageID, subject: subjectID, course: courseID}
	return refs, nil
}

// buildQuestion assembles the entity with defaults applied and schema
// validation run.
func buildQuestion(in QuestionInput, refs refIDs, actor primitive.ObjectID, now time.Time) (*models.ExamQuestion, error) {
	numberOfOptions := len(in.Options)
	if in.NumberOfOptions != nil {
		numberOfOptions = *in.NumberOfOptions
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	q := &models.ExamQuestion{
		Stage:           refs.stage,
		Subject:         refs.subject,
		Course:          refs.course,
		Question:        in.Question,
		Options:         in.Options,
		CorrectAnswer:   *in.CorrectAnswer,
		Explanation:     in.Explanation,
		Image:           in.Image,
		NumberOfOptions: numberOfOptions,
		Difficulty:      difficulty,
		IsActive:        true,
		CreatedBy:       actor,
		LastModifiedBy:  actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := q.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	return q, nil
}

func (s *ExamQuestionService) Create(ctx context.Context, actorID string, in QuestionInput) (*models.ExamQuestion, error) {
	actor, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}

	refs, err := s.validateInput(ctx, in, "")
	if err != nil {
		return nil, err
	}

	question, err := buildQuestion(in, refs, actor, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.questions.Insert(ctx, question); err != nil {
		return nil, err
	}

	s.publish("question.created", bson.M{"id": question.ID.Hex(), "course": question.Course.Hex()})
	return question, nil
}

// BulkCreate validates every entry before inserting anything, then persists
// the batch with a single InsertMany: a batch that fails validation leaves
// no partial writes behind.
func (s *ExamQuestionService) BulkCreate(ctx context.Context, actorID string, inputs []QuestionInput) ([]*models.ExamQuestion, error) {
	actor, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	if len(inputs) == 0 {
		return nil, apperr.Validation("Questions array is required")
	}

	now := time.Now().UTC()
	questions := make([]*models.ExamQuestion, 0, len(inputs))
	for _, in := range inputs {
		label := fmt.Sprintf(" for question: %s", in.Question)
		refs, err := s.validateInput(ctx, in, label)
		if err != nil {
			return nil, err
		}
		question, err := buildQuestion(in, refs, actor, now)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	if err := s.questions.InsertMany(ctx, questions); err != nil {
		return nil, err
	}

	s.publish("question.bulk_created", bson.M{"count": len(questions)})
	return questions, nil
}

// sortFields maps the API sort names onto persisted field names. Unknown
// values fall back to creation time.
var sortFields = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"question":   "question",
	"difficulty": "difficulty",
}

func (q QuestionListQuery) filter() (repository.QuestionFilter, error) {
	filter := repository.QuestionFilter{
		Difficulty: q.Difficulty,
		Search:     q.Search,
	}
	if q.StageID != "" {
		id, err := primitive.ObjectIDFromHex(q.StageID)
		if err != nil {
			return filter, apperr.Validation("Invalid stage ID format")
		}
		filter.Stage = &id
	}
	if q.SubjectID != "" {
		id, err := primitive.ObjectIDFromHex(q.SubjectID)
		if err != nil {
			return filter, apperr.Validation("Invalid subject ID format")
		}
		filter.Subject = &id
	}
	if q.CourseID != "" {
		id, err := primitive.ObjectIDFromHex(q.CourseID)
		if err != nil {
			return filter, apperr.Validation("Invalid course ID format")
		}
		filter.Course = &id
	}
	if q.IsActive != "" {
		isActive := q.IsActive == "true"
		filter.IsActive = &isActive
	}
	return filter, nil
}

// List returns one page of denormalized questions with the filtered total and
// the aggregate summary over the filtered set.
func (s *ExamQuestionService) List(ctx context.Context, query QuestionListQuery) ([]models.ExamQuestionView, int64, models.QuestionSummary, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	filter, err := query.filter()
	if err != nil {
		return nil, 0, models.QuestionSummary{}, err
	}

	sortBy, ok := sortFields[query.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortOrder := -1
	if query.SortOrder == "asc" {
		sortOrder = 1
	}

	skip := int64(query.Page-1) * int64(query.Limit)
	questions, err := s.questions.FindPage(ctx, filter, sortBy, sortOrder, skip, int64(query.Limit))
	if err != nil {
		return nil, 0, models.QuestionSummary{}, err
	}
	total, err := s.questions.Count(ctx, filter)
	if err != nil {
		return nil, 0, models.QuestionSummary{}, err
	}
	summary, err := s.questions.Summary(ctx, filter)
	if err != nil {
		return nil, 0, models.QuestionSummary{}, err
	}

	views, err := s.denormalize(ctx, questions)
	if err != nil {
		return nil, 0, models.QuestionSummary{}, err
	}
	return views, total, summary, nil
}

func (s *ExamQuestionService) GetByID(ctx context.Context, id string) (*models.ExamQuestionView, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("Invalid question ID format")
	}
	question, err := s.questions.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("Exam question not found")
	}
	views, err := s.denormalize(ctx, []models.ExamQuestion{*question})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ExamQuestionService) Update(ctx context.Context, actorID, id string, in QuestionUpdateInput) (*models.ExamQuestionView, error) {
	actor, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("Invalid question ID format")
	}

	existing, err := s.questions.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("Exam question not found")
	}

	if in.Options != nil {
		if len(in.Options) < models.MinOptions {
			return nil, apperr.Validation("At least %d options are required", models.MinOptions)
		}
		if in.CorrectAnswer != nil && (*in.CorrectAnswer < 0 || *in.CorrectAnswer >= len(in.Options)) {
			return nil, apperr.Validation("Invalid correct answer index")
		}
	}

	set := bson.M{}
	merged := *existing
	if in.Question != nil {
		merged.Question = *in.Question
		set["question"] = *in.Question
	}
	if in.Options != nil {
		merged.Options = in.Options
		set["options"] = in.Options
		// keep the declared count in step unless the caller overrides it
		if in.NumberOfOptions == nil {
			merged.NumberOfOptions = len(in.Options)
			set["number_of_options"] = len(in.Options)
		}
	}
	if in.CorrectAnswer != nil {
		merged.CorrectAnswer = *in.CorrectAnswer
		set["correct_answer"] = *in.CorrectAnswer
	}
	if in.Explanation != nil {
		merged.Explanation = *in.Explanation
		set["explanation"] = *in.Explanation
	}
	if in.Image != nil {
		merged.Image = *in.Image
		set["image"] = *in.Image
	}
	if in.NumberOfOptions != nil {
		merged.NumberOfOptions = *in.NumberOfOptions
		set["number_of_options"] = *in.NumberOfOptions
	}
	if in.Difficulty != nil {
		merged.Difficulty = *in.Difficulty
		set["difficulty"] = *in.Difficulty
	}
	if in.IsActive != nil {
		merged.IsActive = *in.IsActive
		set["is_active"] = *in.IsActive
	}

	if err := merged.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	set["last_modified_by"] = actor
	set["updated_at"] = time.Now().UTC()

	updated, err := s.questions.Update(ctx, oid, set)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Exam question not found")
	}

	s.publish("question.updated", bson.M{"id": updated.ID.Hex()})

	views, err := s.denormalize(ctx, []models.ExamQuestion{*updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ExamQuestionService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("Invalid question ID format")
	}
	existing, err := s.questions.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("Exam question not found")
	}
	if err := s.questions.Delete(ctx, oid); err != nil {
		return err
	}
	s.publish("question.deleted", bson.M{"id": id})
	return nil
}

// ToggleStatus flips the active flag. It is the only transition between the
// active and inactive states.
func (s *ExamQuestionService) ToggleStatus(ctx context.Context, actorID, id string) (*models.ExamQuestion, error) {
	actor, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperr.Validation("Invalid user ID")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("Invalid question ID format")
	}

	existing, err := s.questions.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("Exam question not found")
	}

	updated, err := s.questions.Update(ctx, oid, bson.M{
		"is_active":        !existing.IsActive,
		"last_modified_by": actor,
		"updated_at":       time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Exam question not found")
	}

	s.publish("question.status_toggled", bson.M{"id": id, "isActive": updated.IsActive})
	return updated, nil
}

func (s *ExamQuestionService) ListByCourse(ctx context.Context, courseID string, isActive bool) ([]models.ExamQuestionView, error) {
	oid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, apperr.Validation("Invalid course ID format")
	}
	questions, err := s.questions.FindByCourse(ctx, oid, isActive)
	if err != nil {
		return nil, err
	}
	return s.denormalize(ctx, questions)
}

// Statistics aggregates counts by difficulty, activity and per-stage /
// per-subject distribution for the optionally filtered set. Each provided id
// must be a well-formed 24-hex-char identifier.
func (s *ExamQuestionService) Statistics(ctx context.Context, courseID, stageID, subjectID string) (*models.QuestionStatistics, error) {
	var filter repository.QuestionFilter

	if courseID != "" && courseID != "undefined" {
		if !validator.IsObjectID(courseID) {
			return nil, apperr.InvalidID("Invalid course ID format")
		}
		id, _ := primitive.ObjectIDFromHex(courseID)
		filter.Course = &id
	}
	if stageID != "" && stageID != "undefined" {
		if !validator.IsObjectID(stageID) {
			return nil, apperr.InvalidID("Invalid stage ID format")
		}
		id, _ := primitive.ObjectIDFromHex(stageID)
		filter.Stage = &id
	}
	if subjectID != "" && subjectID != "undefined" {
		if !validator.IsObjectID(subjectID) {
			return nil, apperr.InvalidID("Invalid subject ID format")
		}
		id, _ := primitive.ObjectIDFromHex(subjectID)
		filter.Subject = &id
	}

	summary, err := s.questions.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}
	stageDist, err := s.questions.GroupByField(ctx, filter, "stage")
	if err != nil {
		return nil, err
	}
	subjectDist, err := s.questions.GroupByField(ctx, filter, "subject")
	if err != nil {
		return nil, err
	}

	return &models.QuestionStatistics{
		Summary:             summary,
		StageDistribution:   stageDist,
		SubjectDistribution: subjectDist,
	}, nil
}

// denormalize resolves stage/subject/course/creator display fields for a set
// of questions with one batched lookup per collection.
func (s *ExamQuestionService) denormalize(ctx context.Context, questions []models.ExamQuestion) ([]models.ExamQuestionView, error) {
	if len(questions) == 0 {
		return []models.ExamQuestionView{}, nil
	}

	stageIDs := map[primitive.ObjectID]struct{}{}
	subjectIDs := map[primitive.ObjectID]struct{}{}
	courseIDs := map[primitive.ObjectID]struct{}{}
	userIDs := map[primitive.ObjectID]struct{}{}
	for _, q := range questions {
		stageIDs[q.Stage] = struct{}{}
		subjectIDs[q.Subject] = struct{}{}
		courseIDs[q.Course] = struct{}{}
		userIDs[q.CreatedBy] = struct{}{}
		userIDs[q.LastModifiedBy] = struct{}{}
	}

	stages, err := s.lookups.StagesByIDs(ctx, keys(stageIDs))
	if err != nil {
		return nil, err
	}
	subjects, err := s.lookups.SubjectsByIDs(ctx, keys(subjectIDs))
	if err != nil {
		return nil, err
	}
	courses, err := s.lookups.CoursesByIDs(ctx, keys(courseIDs))
	if err != nil {
		return nil, err
	}
	users, err := s.lookups.UsersByIDs(ctx, keys(userIDs))
	if err != nil {
		return nil, err
	}

	stageByID := map[primitive.ObjectID]models.Stage{}
	for _, st := range stages {
		stageByID[st.ID] = st
	}
	subjectByID := map[primitive.ObjectID]models.Subject{}
	for _, sub := range subjects {
		subjectByID[sub.ID] = sub
	}
	courseByID := map[primitive.ObjectID]models.Course{}
	for _, co := range courses {
		courseByID[co.ID] = co
	}
	userByID := map[primitive.ObjectID]models.User{}
	for _, u := range users {
		userByID[u.ID] = u
	}

	views := make([]models.ExamQuestionView, 0, len(questions))
	for _, q := range questions {
		view := models.ExamQuestionView{
			ID:              q.ID,
			Stage:           models.StageRef{ID: q.Stage, Name: stageByID[q.Stage].Name},
			Subject:         models.SubjectRef{ID: q.Subject, Title: subjectByID[q.Subject].Title},
			Course:          models.CourseRef{ID: q.Course, Title: courseByID[q.Course].Title, Instructor: courseByID[q.Course].Instructor},
			Question:        q.Question,
			Options:         q.Options,
			CorrectAnswer:   q.CorrectAnswer,
			Explanation:     q.Explanation,
			Image:           q.Image,
			NumberOfOptions: q.NumberOfOptions,
			Difficulty:      q.Difficulty,
			IsActive:        q.IsActive,
			CreatedBy:       userRef(userByID, q.CreatedBy),
			LastModifiedBy:  userRef(userByID, q.LastModifiedBy),
			CreatedAt:       q.CreatedAt,
			UpdatedAt:       q.UpdatedAt,
		}
		views = append(views, view)
	}
	return views, nil
}

func userRef(users map[primitive.ObjectID]models.User, id primitive.ObjectID) models.UserRef {
	u := users[id]
	return models.UserRef{ID: id, FullName: u.FullName, Username: u.Username}
}

func keys(set map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
