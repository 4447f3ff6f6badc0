package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eduguide/logger"
	"eduguide/models"
	"eduguide/storage"
)

type QuizState string

const (
	QuizLoading    QuizState = "loading"
	QuizInProgress QuizState = "in_progress"
	QuizSubmitting QuizState = "submitting"
	QuizCompleted  QuizState = "completed"
	QuizError      QuizState = "error"
)

var (
	ErrNotInProgress = errors.New("quiz is not in progress")
	ErrQuizLocked    = errors.New("quiz is completed")
	ErrSubmitting    = errors.New("quiz submission in flight")
	ErrInvalidOption = errors.New("option must be one of A, B, C, D")
)

type QuizAPI interface {
	AvailableQuiz(ctx context.Context) (*models.Quiz, error)
	SubmitWithAI(ctx context.Context, sub models.QuizSubmission) (*models.SubmissionResponse, error)
}

type QuizOption func(*QuizSession)

// WithTickInterval sets the countdown period used by RunCountdown.
func WithTickInterval(d time.Duration) QuizOption {
	return func(s *QuizSession) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithStateListener registers fn to be called after every state change. It
// runs on the goroutine that caused the change, without locks held.
func WithStateListener(fn func(QuizState)) QuizOption {
	return func(s *QuizSession) { s.onChange = fn }
}

// QuizSession runs one attempt at a quiz: load, answer, count down, submit.
type QuizSession struct {
	mu       sync.Mutex
	api      QuizAPI
	store    storage.LocalStorage
	log      *logger.Logger
	interval time.Duration
	onChange func(QuizState)

	state     QuizState
	gen       int
	quiz      *models.Quiz
	answers   []models.Answer
	byID      map[int64]int
	cursor    int
	remaining int
	result    *models.SubmissionResponse
	errMsg    string
}

// NewQuizSession returns a session in the loading state. store may be nil,
// in which case results are not persisted.
func NewQuizSession(api QuizAPI, store storage.LocalStorage, log *logger.Logger, opts ...QuizOption) *QuizSession {
	if log == nil {
		log = logger.Nop()
	}
	s := &QuizSession{
		api:      api,
		store:    store,
		log:      log.With("component", "quiz_session"),
		interval: time.Second,
		state:    QuizLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the quiz and starts a fresh attempt. It is also the retry
// path after an error.
func (s *QuizSession) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state == QuizSubmitting {
		s.mu.Unlock()
		return ErrSubmitting
	}
	s.gen++
	gen := s.gen
	s.state = QuizLoading
	s.errMsg = ""
	s.mu.Unlock()
	s.notify(QuizLoading)

	quiz, err := s.api.AvailableQuiz(ctx)
	if err == nil && (quiz == nil || len(quiz.Questions) == 0) {
		err = errors.New("quiz has no questions")
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.state = QuizError
		s.errMsg = "Failed to load quiz: " + err.Error()
		s.mu.Unlock()
		s.log.Warn("quiz load failed", "error", err)
		s.notify(QuizError)
		return err
	}

	s.quiz = quiz
	s.answers = make([]models.Answer, len(quiz.Questions))
	s.byID = make(map[int64]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		s.answers[i] = models.Answer{QuestionID: q.ID}
		s.byID[q.ID] = i
	}
	s.cursor = 0
	s.remaining = quiz.TimeLimit * 60
	s.result = nil
	s.state = QuizInProgress
	s.mu.Unlock()

	s.log.Info("quiz loaded", "quiz_id", quiz.ID, "questions", len(quiz.Questions), "seconds", quiz.TimeLimit*60)
	s.notify(QuizInProgress)
	return nil
}

func (s *QuizSession) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Next moves the cursor forward, stopping at the last question.
func (s *QuizSession) Next() error {
	return s.move(1)
}

// Previous moves the cursor back, stopping at the first question.
func (s *QuizSession) Previous() error {
	return s.move(-1)
}

func (s *QuizSession) move(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return err
	}
	s.cursor = clamp(s.cursor+delta, 0, len(s.answers)-1)
	return nil
}

// Select records label as the answer to the current question. The answer is
// located by question id.
func (s *QuizSession) Select(label string) error {
	if !models.ValidLabel(label) {
		return ErrInvalidOption
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return err
	}
	id := s.quiz.Questions[s.cursor].ID
	s.answers[s.byID[id]].SelectedOption = label
	return nil
}

func (s *QuizSession) mutableLocked() error {
	switch s.state {
	case QuizInProgress:
		return nil
	case QuizCompleted:
		return ErrQuizLocked
	default:
		return ErrNotInProgress
	}
}

// Tick advances the countdown by one second. When it reaches zero during an
// attempt the answers are submitted as they stand.
func (s *QuizSession) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.state != QuizInProgress || s.remaining <= 0 {
		s.mu.Unlock()
		return
	}
	s.remaining--
	expired := s.remaining == 0
	s.mu.Unlock()

	if !expired {
		return
	}
	s.log.Info("time limit reached, submitting")
	if err := s.Submit(ctx); err != nil && !errors.Is(err, ErrNotInProgress) && !errors.Is(err, ErrQuizLocked) {
		s.log.Warn("auto-submit failed", "error", err)
	}
}

// RunCountdown ticks every interval until ctx is done or the attempt leaves
// the in-progress state.
func (s *QuizSession) RunCountdown(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
			if s.State() != QuizInProgress {
				return
			}
		}
	}
}

// Submit sends the answered questions. It is accepted only while the
// attempt is in progress, so a racing timeout and user submit produce one
// request.
func (s *QuizSession) Submit(ctx context.Context) error {
	s.mu.Lock()
	if err := s.mutableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	sub := models.QuizSubmission{QuizID: s.quiz.ID, Answers: answeredOnly(s.answers)}
	s.state = QuizSubmitting
	s.mu.Unlock()
	s.notify(QuizSubmitting)

	resp, err := s.api.SubmitWithAI(ctx, sub)

	s.mu.Lock()
	if err != nil {
		s.state = QuizError
		s.errMsg = "Failed to submit quiz. Please try again."
		s.mu.Unlock()
		s.log.Warn("quiz submission failed", "quiz_id", sub.QuizID, "error", err)
		s.notify(QuizError)
		return fmt.Errorf("submit quiz: %w", err)
	}
	s.result = resp
	s.state = QuizCompleted
	s.mu.Unlock()

	s.log.Info("quiz submitted", "quiz_id", sub.QuizID, "answered", len(sub.Answers),
		"percentage", resp.QuizResult.Percentage)
	if s.store != nil {
		if err := storage.SetJSON(ctx, s.store, storage.KeyLastQuizResult, resp); err != nil {
			s.log.Warn("failed to persist quiz result", "error", err)
		}
	}
	s.notify(QuizCompleted)
	return nil
}

func answeredOnly(answers []models.Answer) []models.Answer {
	out := make([]models.Answer, 0, len(answers))
	for _, a := range answers {
		if a.Answered() {
			out = append(out, a)
		}
	}
	return out
}

func (s *QuizSession) notify(state QuizState) {
	if s.onChange != nil {
		s.onChange(state)
	}
}

func (s *QuizSession) State() QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Error returns the message to show in the error state.
func (s *QuizSession) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Quiz returns the loaded quiz, or nil. Callers must not modify it.
func (s *QuizSession) Quiz() *models.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz
}

func (s *QuizSession) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// CurrentQuestion returns the question under the cursor and its selection.
func (s *QuizSession) CurrentQuestion() (models.Question, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quiz == nil || len(s.quiz.Questions) == 0 {
		return models.Question{}, "", false
	}
	q := s.quiz.Questions[s.cursor]
	return q, s.answers[s.byID[q.ID]].SelectedOption, true
}

// Answers returns a copy of the answer set in question order.
func (s *QuizSession) Answers() []models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Answer(nil), s.answers...)
}

func (s *QuizSession) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.answers {
		if a.Answered() {
			n++
		}
	}
	return n
}

// Progress is (cursor+1)/total in [0, 1]. It tracks position, not answers.
func (s *QuizSession) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.answers) == 0 {
		return 0
	}
	return float64(s.cursor+1) / float64(len(s.answers))
}

// Remaining is the countdown in seconds.
func (s *QuizSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *QuizSession) FormatRemaining() string {
	return FormatSeconds(s.Remaining())
}

// Result is the server's response once completed, or nil.
func (s *QuizSession) Result() *models.SubmissionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizCompleted {
		return nil
	}
	return s.result
}

func (s *QuizSession) Percentage() (float64, bool) {
	r := s.Result()
	if r == nil {
		return 0, false
	}
	return r.QuizResult.Percentage, true
}

func (s *QuizSession) PerformanceLabel() string {
	r := s.Result()
	if r == nil {
		return ""
	}
	if r.QuizResult.PerformanceLevel != "" {
		return r.QuizResult.PerformanceLevel
	}
	return models.PerformanceLevel(r.QuizResult.Percentage)
}

func (s *QuizSession) DominantAptitude() string {
	r := s.Result()
	if r == nil {
		return ""
	}
	if d := r.QuizResult.ScoreBreakdown.DominantAptitude; d != "" {
		return d
	}
	return r.QuizResult.ScoreBreakdown.Dominant()
}

// Passed compares the result against the quiz's passing score.
func (s *QuizSession) Passed() bool {
	pct, ok := s.Percentage()
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return pct >= float64(s.quiz.PassingScore)
}

// FormatSeconds renders seconds as m:ss.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
