package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"eduguide/logger"
	"eduguide/models"
	"eduguide/storage"
)

type fakeQuizAPI struct {
	mu        sync.Mutex
	quiz      *models.Quiz
	loadErr   error
	submitErr error
	delay     time.Duration
	submits   []models.QuizSubmission
}

func (f *fakeQuizAPI) AvailableQuiz(context.Context) (*models.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.quiz, nil
}

func (f *fakeQuizAPI) SubmitWithAI(_ context.Context, sub models.QuizSubmission) (*models.SubmissionResponse, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, sub)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.SubmissionResponse{
		Success: true,
		QuizResult: models.QuizResult{
			QuizID:         sub.QuizID,
			TotalScore:     len(sub.Answers),
			MaxScore:       10,
			Percentage:     72.5,
			ScoreBreakdown: models.ScoreBreakdown{VerbalScore: 4, TechnicalScore: 2},
		},
		AIRecommendations: models.AIRecommendations{EntranceExams: []models.EntranceExam{{ExamName: "CUET"}}},
	}, nil
}

func (f *fakeQuizAPI) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits)
}

func makeQuiz(ids []int64, timeLimit int) *models.Quiz {
	q := &models.Quiz{ID: 9, Title: "Aptitude", TimeLimit: timeLimit, PassingScore: 50}
	for _, id := range ids {
		q.Questions = append(q.Questions, models.Question{
			ID:            id,
			QuestionText:  "question",
			Options:       models.Options{A: "a", B: "b", C: "c", D: "d"},
			CorrectAnswer: models.LabelA,
			Points:        1,
		})
	}
	return q
}

func sequentialIDs(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

func loadedSession(t *testing.T, api *fakeQuizAPI, store storage.LocalStorage, opts ...QuizOption) *QuizSession {
	t.Helper()
	s := NewQuizSession(api, store, nil, opts...)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestLoadCreatesOneEmptyAnswerPerQuestion(t *testing.T) {
	for _, n := range []int{1, 5, 12} {
		api := &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(n), 30)}
		s := loadedSession(t, api, nil)

		if s.State() != QuizInProgress {
			t.Fatalf("n=%d state: want=%s got=%s", n, QuizInProgress, s.State())
		}
		answers := s.Answers()
		if len(answers) != n {
			t.Fatalf("n=%d answers: want=%d got=%d", n, n, len(answers))
		}
		for i, a := range answers {
			if a.QuestionID != int64(i+1) || a.SelectedOption != "" {
				t.Fatalf("n=%d answer[%d]: got=%+v", n, i, a)
			}
		}
		if s.AnsweredCount() != 0 {
			t.Fatalf("n=%d answered: want=0 got=%d", n, s.AnsweredCount())
		}
	}
}

func TestCountdownStartsAtTimeLimitAndTicks(t *testing.T) {
	s := loadedSession(t, &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(3), 30)}, nil)

	if got := s.Remaining(); got != 1800 {
		t.Fatalf("initial: want=1800 got=%d", got)
	}
	s.Tick(context.Background())
	if got := s.Remaining(); got != 1799 {
		t.Fatalf("after one tick: want=1799 got=%d", got)
	}
	if got := s.FormatRemaining(); got != "29:59" {
		t.Fatalf("FormatRemaining: want=%q got=%q", "29:59", got)
	}
}

func TestSelectMutatesOnlyCurrentQuestionByID(t *testing.T) {
	s := loadedSession(t, &fakeQuizAPI{quiz: makeQuiz([]int64{30, 10, 20}, 30)}, nil)

	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := s.Select(models.LabelC); err != nil {
		t.Fatalf("Select: %v", err)
	}

	for _, a := range s.Answers() {
		want := ""
		if a.QuestionID == 10 {
			want = models.LabelC
		}
		if a.SelectedOption != want {
			t.Fatalf("answer %d: want=%q got=%q", a.QuestionID, want, a.SelectedOption)
		}
	}
	q, sel, ok := s.CurrentQuestion()
	if !ok || q.ID != 10 || sel != models.LabelC {
		t.Fatalf("CurrentQuestion: id=%d sel=%q ok=%v", q.ID, sel, ok)
	}

	if err := s.Select(models.LabelA); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if got := s.AnsweredCount(); got != 1 {
		t.Fatalf("answered after reselect: want=1 got=%d", got)
	}
}

func TestSelectRejectsUnknownLabel(t *testing.T) {
	s := loadedSession(t, &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(2), 30)}, nil)
	for _, label := range []string{"", "E", "a"} {
		if err := s.Select(label); !errors.Is(err, ErrInvalidOption) {
			t.Fatalf("Select(%q): want ErrInvalidOption got=%v", label, err)
		}
	}
}

func TestNavigationClampsAndProgressIsIndependentOfAnswers(t *testing.T) {
	s := loadedSession(t, &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(4), 30)}, nil)

	if err := s.Previous(); err != nil || s.Cursor() != 0 {
		t.Fatalf("Previous at start: cursor=%d err=%v", s.Cursor(), err)
	}
	for i := 0; i < 10; i++ {
		_ = s.Next()
	}
	if s.Cursor() != 3 {
		t.Fatalf("Next clamps: want=3 got=%d", s.Cursor())
	}
	if got := s.Progress(); got != 1 {
		t.Fatalf("Progress at end: want=1 got=%v", got)
	}
	if s.AnsweredCount() != 0 {
		t.Fatalf("answered: want=0 got=%d", s.AnsweredCount())
	}
	_ = s.Previous()
	if got := s.Progress(); got != 0.75 {
		t.Fatalf("Progress: want=0.75 got=%v", got)
	}
}

func TestSubmitSendsOnlyAnsweredQuestions(t *testing.T) {
	api := &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(10), 30)}
	s := loadedSession(t, api, nil)

	for i := 0; i < 10; i++ {
		if i < 7 {
			if err := s.Select(models.LabelB); err != nil {
				t.Fatalf("Select %d: %v", i, err)
			}
		}
		_ = s.Next()
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if api.submitCount() != 1 {
		t.Fatalf("submits: want=1 got=%d", api.submitCount())
	}
	sub := api.submits[0]
	if sub.QuizID != 9 || len(sub.Answers) != 7 {
		t.Fatalf("payload: quiz=%d answers=%d", sub.QuizID, len(sub.Answers))
	}
	for _, a := range sub.Answers {
		if a.SelectedOption == "" {
			t.Fatalf("payload contains unanswered question %d", a.QuestionID)
		}
	}
}

func TestCountdownExpiryTriggersExactlyOneSubmission(t *testing.T) {
	api := &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(3), 1)}
	s := loadedSession(t, api, nil)
	ctx := context.Background()

	for i := 0; i < 59; i++ {
		s.Tick(ctx)
	}
	if api.submitCount() != 0 || s.Remaining() != 1 {
		t.Fatalf("before expiry: submits=%d remaining=%d", api.submitCount(), s.Remaining())
	}
	for i := 0; i < 5; i++ {
		s.Tick(ctx)
	}
	if api.submitCount() != 1 {
		t.Fatalf("submits: want=1 got=%d", api.submitCount())
	}
	if s.State() != QuizCompleted || s.Remaining() != 0 {
		t.Fatalf("after expiry: state=%s remaining=%d", s.State(), s.Remaining())
	}
}

func TestRunCountdownRacingManualSubmit(t *testing.T) {
	api := &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(3), 1), delay: 5 * time.Millisecond}
	s := loadedSession(t, api, nil, WithTickInterval(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.RunCountdown(ctx)
		close(done)
	}()

	time.Sleep(55 * time.Millisecond)
	err := s.Submit(ctx)
	if err != nil && !errors.Is(err, ErrNotInProgress) && !errors.Is(err, ErrQuizLocked) {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("RunCountdown did not return")
	}
	if got := api.submitCount(); got != 1 {
		t.Fatalf("submits: want=1 got=%d", got)
	}
	if s.State() != QuizCompleted {
		t.Fatalf("state: want=%s got=%s", QuizCompleted, s.State())
	}
}

func TestExpiryAfterManualSubmitIsQuiet(t *testing.T) {
	api := &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(2), 1)}
	ctx := context.Background()

	var sess *QuizSession
	var manualErr error
	core, logs := observer.New(zap.DebugLevel)
	zl := zap.New(core, zap.Hooks(func(e zapcore.Entry) error {
		// Lands a user submit between the expiry check and the automatic one.
		if e.Message == "time limit reached, submitting" {
			manualErr = sess.Submit(ctx)
		}
		return nil
	}))
	sess = NewQuizSession(api, nil, &logger.Logger{SugaredLogger: zl.Sugar()})
	if err := sess.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for i := 0; i < 60; i++ {
		sess.Tick(ctx)
	}
	if manualErr != nil {
		t.Fatalf("manual Submit: %v", manualErr)
	}
	if got := api.submitCount(); got != 1 {
		t.Fatalf("submits: want=1 got=%d", got)
	}
	if n := logs.FilterMessage("auto-submit failed").Len(); n != 0 {
		t.Fatalf("auto-submit warnings: want=0 got=%d", n)
	}
	if sess.State() != QuizCompleted {
		t.Fatalf("state: want=%s got=%s", QuizCompleted, sess.State())
	}
}

func TestRunCountdownStopsOnContextCancel(t *testing.T) {
	api := &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(1), 30)}
	s := loadedSession(t, api, nil, WithTickInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunCountdown(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("RunCountdown ignored cancellation")
	}
	if s.Remaining() >= 1800 || api.submitCount() != 0 {
		t.Fatalf("remaining=%d submits=%d", s.Remaining(), api.submitCount())
	}
}

func TestCompletedExposesDerivedValuesAndLocksAnswers(t *testing.T) {
	store := storage.NewMemoryStore()
	api := &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(2), 30)}
	s := loadedSession(t, api, store)
	ctx := context.Background()

	if _, ok := s.Percentage(); ok {
		t.Fatalf("Percentage before completion should be unavailable")
	}
	_ = s.Select(models.LabelA)
	if err := s.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if pct, ok := s.Percentage(); !ok || pct != 72.5 {
		t.Fatalf("Percentage: got=%v ok=%v", pct, ok)
	}
	if got := s.PerformanceLabel(); got != "Very Good" {
		t.Fatalf("PerformanceLabel: want=%q got=%q", "Very Good", got)
	}
	if got := s.DominantAptitude(); got != models.AptitudeVerbal {
		t.Fatalf("DominantAptitude: want=%q got=%q", models.AptitudeVerbal, got)
	}
	if !s.Passed() {
		t.Fatalf("Passed: want=true for 72.5 against 50")
	}

	if err := s.Select(models.LabelB); !errors.Is(err, ErrQuizLocked) {
		t.Fatalf("Select after completion: want ErrQuizLocked got=%v", err)
	}
	if err := s.Submit(ctx); !errors.Is(err, ErrQuizLocked) {
		t.Fatalf("Submit after completion: want ErrQuizLocked got=%v", err)
	}
	if api.submitCount() != 1 {
		t.Fatalf("submits: want=1 got=%d", api.submitCount())
	}

	var stored models.SubmissionResponse
	found, err := storage.GetJSON(ctx, store, storage.KeyLastQuizResult, &stored)
	if err != nil || !found || stored.QuizResult.Percentage != 72.5 {
		t.Fatalf("persisted result: found=%v err=%v got=%+v", found, err, stored.QuizResult)
	}
}

func TestSubmitFailureThenReload(t *testing.T) {
	api := &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(3), 30), submitErr: errors.New("backend down")}
	s := loadedSession(t, api, nil)
	ctx := context.Background()

	_ = s.Select(models.LabelD)
	if err := s.Submit(ctx); err == nil {
		t.Fatalf("Submit: want error")
	}
	if s.State() != QuizError || s.Error() != "Failed to submit quiz. Please try again." {
		t.Fatalf("after failure: state=%s error=%q", s.State(), s.Error())
	}
	if err := s.Select(models.LabelA); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("Select in error state: want ErrNotInProgress got=%v", err)
	}
	if err := s.Submit(ctx); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("resubmit in error state: want ErrNotInProgress got=%v", err)
	}

	api.mu.Lock()
	api.submitErr = nil
	api.mu.Unlock()
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.State() != QuizInProgress || s.AnsweredCount() != 0 || s.Remaining() != 1800 || s.Error() != "" {
		t.Fatalf("after reload: state=%s answered=%d remaining=%d error=%q",
			s.State(), s.AnsweredCount(), s.Remaining(), s.Error())
	}
}

func TestLoadFailureEntersErrorState(t *testing.T) {
	s := NewQuizSession(&fakeQuizAPI{loadErr: errors.New("no quiz data available")}, nil, nil)
	if err := s.Load(context.Background()); err == nil {
		t.Fatalf("Load: want error")
	}
	if s.State() != QuizError || !strings.HasPrefix(s.Error(), "Failed to load quiz:") {
		t.Fatalf("state=%s error=%q", s.State(), s.Error())
	}
	if err := s.Next(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("Next: want ErrNotInProgress got=%v", err)
	}

	empty := NewQuizSession(&fakeQuizAPI{quiz: &models.Quiz{ID: 1}}, nil, nil)
	if err := empty.Load(context.Background()); err == nil || empty.State() != QuizError {
		t.Fatalf("empty quiz: state=%s err=%v", empty.State(), err)
	}
}

func TestStateListenerSeesTransitions(t *testing.T) {
	var mu sync.Mutex
	var seen []QuizState
	listener := WithStateListener(func(st QuizState) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})
	s := loadedSession(t, &fakeQuizAPI{quiz: makeQuiz(sequentialIDs(1), 30)}, nil, listener)
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	want := []QuizState{QuizLoading, QuizInProgress, QuizSubmitting, QuizCompleted}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != len(want) {
		t.Fatalf("transitions: want=%v got=%v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions: want=%v got=%v", want, seen)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[int]string{0: "0:00", 5: "0:05", 60: "1:00", 1799: "29:59", 3601: "60:01", -3: "0:00"}
	for in, want := range cases {
		if got := FormatSeconds(in); got != want {
			t.Fatalf("FormatSeconds(%d): want=%q got=%q", in, want, got)
		}
	}
}
