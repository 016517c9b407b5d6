package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"lms-service/internal/apperr"
	"lms-service/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type questionFixture struct {
	store   *fakeQuestionStore
	lookups *fakeLookupStore
	events  *fakeEventSink
	svc     *ExamQuestionService

	stageID   primitive.ObjectID
	subjectID primitive.ObjectID
	courseID  primitive.ObjectID
	actorID   primitive.ObjectID
}

func newQuestionFixture() *questionFixture {
	f := &questionFixture{
		store:     &fakeQuestionStore{},
		lookups:   newFakeLookupStore(),
		events:    &fakeEventSink{},
		stageID:   primitive.NewObjectID(),
		subjectID: primitive.NewObjectID(),
		courseID:  primitive.NewObjectID(),
		actorID:   primitive.NewObjectID(),
	}
	f.lookups.stages[f.stageID] = models.Stage{ID: f.stageID, Name: "Foundation", Status: "active"}
	f.lookups.subjects[f.subjectID] = models.Subject{ID: f.subjectID, Title: "Mathematics"}
	f.lookups.courses[f.courseID] = models.Course{ID: f.courseID, Title: "Algebra I", Instructor: "Dr. Vance"}
	f.lookups.users[f.actorID] = models.User{ID: f.actorID, FullName: "Ada Admin", Username: "ada"}
	f.svc = NewExamQuestionService(f.store, f.lookups, f.events, zerolog.Nop())
	return f
}

func (f *questionFixture) validInput() QuestionInput {
	answer := 1
	return QuestionInput{
		StageID:       f.stageID.Hex(),
		SubjectID:     f.subjectID.Hex(),
		CourseID:      f.courseID.Hex(),
		Question:      "What is the value of x in 2x + 4 = 10?",
		Options:       []string{"2", "3", "4"},
		CorrectAnswer: &answer,
	}
}

func errStatus(t *testing.T, err error, want int) *apperr.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", want)
	}
	appErr := apperr.From(err)
	if appErr.Status != want {
		t.Fatalf("expected status %d, got %d (%s)", want, appErr.Status, appErr.Message)
	}
	return appErr
}

func TestCreateQuestionMissingFields(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*QuestionInput)
	}{
		{"no stage", func(in *QuestionInput) { in.StageID = "" }},
		{"no subject", func(in *QuestionInput) { in.SubjectID = "" }},
		{"no course", func(in *QuestionInput) { in.CourseID = "" }},
		{"no question", func(in *QuestionInput) { in.Question = "" }},
		{"no options", func(in *QuestionInput) { in.Options = nil }},
		{"no correct answer", func(in *QuestionInput) { in.CorrectAnswer = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.validInput()
			tc.mutate(&in)
			_, err := f.svc.Create(ctx, f.actorID.Hex(), in)
			appErr := errStatus(t, err, 400)
			if appErr.Message != "Missing required fields" {
				t.Errorf("unexpected message %q", appErr.Message)
			}
		})
	}
	if len(f.store.questions) != 0 {
		t.Errorf("expected no questions persisted, got %d", len(f.store.questions))
	}
}

func TestCreateQuestionBadReferences(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	t.Run("malformed stage id", func(t *testing.T) {
		in := f.validInput()
		in.StageID = "not-a-hex-id"
		_, err := f.svc.Create(ctx, f.actorID.Hex(), in)
		appErr := errStatus(t, err, 400)
		if appErr.Message != "Invalid stage ID format" {
			t.Errorf("unexpected message %q", appErr.Message)
		}
	})
	t.Run("unknown stage", func(t *testing.T) {
		in := f.validInput()
		in.StageID = primitive.NewObjectID().Hex()
		_, err := f.svc.Create(ctx, f.actorID.Hex(), in)
		appErr := errStatus(t, err, 404)
		if appErr.Message != "Stage not found" {
			t.Errorf("unexpected message %q", appErr.Message)
		}
	})
	t.Run("unknown course", func(t *testing.T) {
		in := f.validInput()
		in.CourseID = primitive.NewObjectID().Hex()
		_, err := f.svc.Create(ctx, f.actorID.Hex(), in)
		errStatus(t, err, 404)
	})
}

func TestCreateQuestionOptionRules(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	t.Run("too few options", func(t *testing.T) {
		in := f.validInput()
		in.Options = []string{"only one"}
		answer := 0
		in.CorrectAnswer = &answer
		_, err := f.svc.Create(ctx, f.actorID.Hex(), in)
		errStatus(t, err, 400)
	})
	t.Run("answer index past options", func(t *testing.T) {
		in := f.validInput()
		answer := 3
		in.CorrectAnswer = &answer
		_, err := f.svc.Create(ctx, f.actorID.Hex(), in)
		appErr := errStatus(t, err, 400)
		if appErr.Message != "Invalid correct answer index" {
			t.Errorf("unexpected message %q", appErr.Message)
		}
	})
	t.Run("negative answer index", func(t *testing.T) {
		in := f.validInput()
		answer := -1
		in.CorrectAnswer = &answer
		_, err := f.svc.Create(ctx, f.actorID.Hex(), in)
		errStatus(t, err, 400)
	})
	t.Run("too many options", func(t *testing.T) {
		in := f.validInput()
		in.Options = []string{"a", "b", "c", "d", "e", "f", "g"}
		_, err := f.svc.Create(ctx, f.actorID.Hex(), in)
		errStatus(t, err, 400)
	})
}

func TestCreateQuestionDefaults(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.NumberOfOptions != 3 {
		t.Errorf("numberOfOptions = %d, want 3", created.NumberOfOptions)
	}
	if created.Difficulty != models.DifficultyMedium {
		t.Errorf("difficulty = %q, want medium", created.Difficulty)
	}
	if !created.IsActive {
		t.Error("new question should be active")
	}
	if created.CreatedBy != f.actorID || created.LastModifiedBy != f.actorID {
		t.Error("creator fields not set to the acting user")
	}
	if created.CorrectAnswerText() != "3" {
		t.Errorf("correct answer text = %q, want 3", created.CorrectAnswerText())
	}
	if len(f.events.events) != 1 || f.events.events[0] != "question.created" {
		t.Errorf("events = %v, want [question.created]", f.events.events)
	}
}

func TestGetQuestionDenormalizesReferences(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := f.svc.GetByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Stage.Name != "Foundation" {
		t.Errorf("stage name = %q", view.Stage.Name)
	}
	if view.Subject.Title != "Mathematics" {
		t.Errorf("subject title = %q", view.Subject.Title)
	}
	if view.Course.Instructor != "Dr. Vance" {
		t.Errorf("course instructor = %q", view.Course.Instructor)
	}
	if view.CreatedBy.Username != "ada" {
		t.Errorf("creator username = %q", view.CreatedBy.Username)
	}
}

func TestGetQuestionErrors(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	if _, err := f.svc.GetByID(ctx, "zzz"); err == nil {
		t.Error("malformed id should fail")
	} else {
		errStatus(t, err, 400)
	}
	if _, err := f.svc.GetByID(ctx, primitive.NewObjectID().Hex()); err == nil {
		t.Error("unknown id should fail")
	} else {
		errStatus(t, err, 404)
	}
}

func TestUpdateQuestionPartialMerge(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	difficulty := models.DifficultyHard
	view, err := f.svc.Update(ctx, f.actorID.Hex(), created.ID.Hex(), QuestionUpdateInput{Difficulty: &difficulty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.Difficulty != models.DifficultyHard {
		t.Errorf("difficulty = %q, want hard", view.Difficulty)
	}
	if view.Question != created.Question {
		t.Error("untouched fields must survive a partial update")
	}
}

func TestUpdateQuestionSyncsOptionCount(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	answer := 3
	view, err := f.svc.Update(ctx, f.actorID.Hex(), created.ID.Hex(), QuestionUpdateInput{
		Options:       []string{"1", "2", "3", "4"},
		CorrectAnswer: &answer,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.NumberOfOptions != 4 {
		t.Errorf("numberOfOptions = %d, want 4 after options change", view.NumberOfOptions)
	}
	if view.CorrectAnswer != 3 {
		t.Errorf("correctAnswer = %d, want 3", view.CorrectAnswer)
	}
}

func TestUpdateQuestionRejectsBadOptions(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("single option", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.actorID.Hex(), created.ID.Hex(), QuestionUpdateInput{Options: []string{"alone"}})
		errStatus(t, err, 400)
	})
	t.Run("answer outside new options", func(t *testing.T) {
		answer := 5
		_, err := f.svc.Update(ctx, f.actorID.Hex(), created.ID.Hex(), QuestionUpdateInput{
			Options:       []string{"a", "b"},
			CorrectAnswer: &answer,
		})
		errStatus(t, err, 400)
	})
	t.Run("unknown question", func(t *testing.T) {
		q := "A perfectly reasonable question?"
		_, err := f.svc.Update(ctx, f.actorID.Hex(), primitive.NewObjectID().Hex(), QuestionUpdateInput{Question: &q})
		errStatus(t, err, 404)
	})
}

func TestToggleStatusFlipsAndRestores(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	toggled, err := f.svc.ToggleStatus(ctx, f.actorID.Hex(), created.ID.Hex())
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.IsActive {
		t.Error("first toggle should deactivate")
	}

	toggled, err = f.svc.ToggleStatus(ctx, f.actorID.Hex(), created.ID.Hex())
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsActive {
		t.Error("second toggle should restore the active flag")
	}
}

func TestDeleteQuestion(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Delete(ctx, created.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.store.questions) != 0 {
		t.Errorf("store still holds %d questions", len(f.store.questions))
	}
	if err := f.svc.Delete(ctx, created.ID.Hex()); err == nil {
		t.Error("deleting twice should report not found")
	} else {
		errStatus(t, err, 404)
	}
}

func TestListQuestionsPagination(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		in := f.validInput()
		in.Question = strings.Repeat("q", 10) + string(rune('a'+i))
		if i%2 == 0 {
			in.Difficulty = models.DifficultyEasy
		}
		if _, err := f.svc.Create(ctx, f.actorID.Hex(), in); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	views, total, summary, err := f.svc.List(ctx, QuestionListQuery{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 10 {
		t.Errorf("page size = %d, want 10", len(views))
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if summary.TotalQuestions != 25 {
		t.Errorf("summary total = %d, want 25", summary.TotalQuestions)
	}
	if summary.EasyQuestions != 13 || summary.MediumQuestions != 12 {
		t.Errorf("difficulty split = %d easy / %d medium, want 13/12", summary.EasyQuestions, summary.MediumQuestions)
	}
	if summary.ActiveQuestions != 25 || summary.InactiveQuestions != 0 {
		t.Errorf("active split = %d/%d, want 25/0", summary.ActiveQuestions, summary.InactiveQuestions)
	}

	// past the last page
	views, total, _, err = f.svc.List(ctx, QuestionListQuery{Page: 4, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 0 || total != 25 {
		t.Errorf("past-end page returned %d rows, total %d", len(views), total)
	}
}

func TestListQuestionsFilters(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	easy := f.validInput()
	easy.Question = "An easy warm-up question about addition"
	easy.Difficulty = models.DifficultyEasy
	hard := f.validInput()
	hard.Question = "A hard question about integral calculus"
	hard.Difficulty = models.DifficultyHard
	for _, in := range []QuestionInput{easy, hard} {
		if _, err := f.svc.Create(ctx, f.actorID.Hex(), in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	views, total, _, err := f.svc.List(ctx, QuestionListQuery{Difficulty: models.DifficultyHard})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(views) != 1 || views[0].Difficulty != models.DifficultyHard {
		t.Errorf("difficulty filter returned %d rows, total %d", len(views), total)
	}

	views, total, _, err = f.svc.List(ctx, QuestionListQuery{Search: "calculus"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Errorf("search filter returned %d rows, total %d", len(views), total)
	}

	if _, _, _, err := f.svc.List(ctx, QuestionListQuery{StageID: "nope"}); err == nil {
		t.Error("malformed stage filter should fail")
	} else {
		errStatus(t, err, 400)
	}
}

func TestListByCourse(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	active, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	in := f.validInput()
	in.Question = "A question that will be switched off soon"
	inactive, err := f.svc.Create(ctx, f.actorID.Hex(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.ToggleStatus(ctx, f.actorID.Hex(), inactive.ID.Hex()); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	views, err := f.svc.ListByCourse(ctx, f.courseID.Hex(), true)
	if err != nil {
		t.Fatalf("list by course: %v", err)
	}
	if len(views) != 1 || views[0].ID != active.ID {
		t.Errorf("expected only the active question, got %d rows", len(views))
	}

	views, err = f.svc.ListByCourse(ctx, f.courseID.Hex(), false)
	if err != nil {
		t.Fatalf("list by course: %v", err)
	}
	if len(views) != 1 || views[0].ID != inactive.ID {
		t.Errorf("expected only the inactive question, got %d rows", len(views))
	}
}

func TestBulkCreateAllOrNothing(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	inputs := make([]QuestionInput, 0, 4)
	for i := 0; i < 3; i++ {
		in := f.validInput()
		in.Question = "A perfectly valid bulk question number " + string(rune('1'+i))
		inputs = append(inputs, in)
	}
	bad := f.validInput()
	bad.Question = "The question with a missing answer index"
	bad.CorrectAnswer = nil
	inputs = append(inputs, bad)

	_, err := f.svc.BulkCreate(ctx, f.actorID.Hex(), inputs)
	appErr := errStatus(t, err, 400)
	if !strings.Contains(appErr.Message, "for question: The question with a missing answer index") {
		t.Errorf("error should name the offending question, got %q", appErr.Message)
	}
	if len(f.store.questions) != 0 {
		t.Errorf("a failed batch must persist nothing, found %d questions", len(f.store.questions))
	}

	created, err := f.svc.BulkCreate(ctx, f.actorID.Hex(), inputs[:3])
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if len(created) != 3 || len(f.store.questions) != 3 {
		t.Errorf("expected 3 persisted questions, got %d", len(f.store.questions))
	}
}

func TestBulkCreateEmptyBatch(t *testing.T) {
	f := newQuestionFixture()
	_, err := f.svc.BulkCreate(context.Background(), f.actorID.Hex(), nil)
	errStatus(t, err, 400)
}

func TestStatistics(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	otherStage := primitive.NewObjectID()
	f.lookups.stages[otherStage] = models.Stage{ID: otherStage, Name: "Advanced", Status: "active"}

	for i := 0; i < 3; i++ {
		in := f.validInput()
		in.Question = "A statistics seed question variant " + string(rune('a'+i))
		if i == 2 {
			in.StageID = otherStage.Hex()
			in.Difficulty = models.DifficultyHard
		}
		if _, err := f.svc.Create(ctx, f.actorID.Hex(), in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	stats, err := f.svc.Statistics(ctx, "", "", "")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Summary.TotalQuestions != 3 || stats.Summary.HardQuestions != 1 {
		t.Errorf("summary = %+v", stats.Summary)
	}
	if len(stats.StageDistribution) != 2 {
		t.Fatalf("stage buckets = %d, want 2", len(stats.StageDistribution))
	}
	if stats.StageDistribution[0].Count < stats.StageDistribution[1].Count {
		t.Error("stage distribution must be sorted by count descending")
	}

	// scoped to one stage
	stats, err = f.svc.Statistics(ctx, "", otherStage.Hex(), "")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Summary.TotalQuestions != 1 {
		t.Errorf("scoped total = %d, want 1", stats.Summary.TotalQuestions)
	}
}

func TestStatisticsIDValidation(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	_, err := f.svc.Statistics(ctx, "not-an-id", "", "")
	appErr := errStatus(t, err, 400)
	if appErr.Code != "INVALID_ID_FORMAT" {
		t.Errorf("code = %q, want INVALID_ID_FORMAT", appErr.Code)
	}
	if appErr.Message != "Invalid course ID format" {
		t.Errorf("message = %q", appErr.Message)
	}

	// the literal string "undefined" is treated as absent, not invalid
	if _, err := f.svc.Statistics(ctx, "undefined", "undefined", "undefined"); err != nil {
		t.Errorf("undefined ids should be ignored, got %v", err)
	}
}

func TestQuestionTimestampsAdvanceOnUpdate(t *testing.T) {
	f := newQuestionFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.actorID.Hex(), f.validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before := created.UpdatedAt
	time.Sleep(2 * time.Millisecond)

	explanation := "Subtract four from both sides, then halve."
	view, err := f.svc.Update(ctx, f.actorID.Hex(), created.ID.Hex(), QuestionUpdateInput{Explanation: &explanation})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !view.UpdatedAt.After(before) {
		t.Error("updatedAt should advance on update")
	}
	if !view.CreatedAt.Equal(created.CreatedAt) {
		t.Error("createdAt must not change on update")
	}
}
