package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"eduguide/models"
)

// AvailableQuiz fetches the first quiz offered to the user and parses its
// embedded questions. ErrNoQuiz means the backend offered none.
func (c *Client) AvailableQuiz(ctx context.Context) (*models.Quiz, error) {
	raw, err := c.do(ctx, http.MethodGet, "/quiz/available", nil)
	if err != nil {
		return nil, err
	}
	offered, err := decodeList[models.AvailableQuiz](raw, "available quizzes")
	if err != nil {
		return nil, err
	}
	if len(offered) == 0 {
		return nil, ErrNoQuiz
	}
	return ParseQuiz(offered[0])
}

// ParseQuiz turns the wire form of a quiz into a Quiz. It rejects payloads
// the quiz flow cannot run: unparsable or empty questionsJson, duplicate or
// zero question ids and questions without all four options.
func ParseQuiz(in models.AvailableQuiz) (*models.Quiz, error) {
	raw := strings.TrimSpace(in.QuestionsJSON)
	if raw == "" {
		return nil, &ValidationError{Field: "questionsJson", Message: "quiz has no questions"}
	}

	var stored []models.StoredQuestion
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, &ValidationError{Field: "questionsJson", Message: fmt.Sprintf("failed to parse questions: %v", err)}
	}
	if len(stored) == 0 {
		return nil, &ValidationError{Field: "questionsJson", Message: "quiz has no questions"}
	}

	quiz := &models.Quiz{
		ID:           in.QuizID,
		Title:        in.Title,
		Description:  in.Description,
		Questions:    make([]models.Question, 0, len(stored)),
		TimeLimit:    in.TimeLimit,
		PassingScore: in.PassingScore,
		Categories:   []string{},
	}
	if quiz.TimeLimit <= 0 {
		quiz.TimeLimit = models.DefaultTimeLimitMinutes
	}
	if quiz.PassingScore <= 0 {
		quiz.PassingScore = models.DefaultPassingScore
	}

	seenIDs := make(map[int64]bool, len(stored))
	seenCats := map[string]bool{}
	for i, sq := range stored {
		if sq.ID == 0 {
			return nil, &ValidationError{Field: "questionsJson", Message: fmt.Sprintf("question %d has no id", i+1)}
		}
		if seenIDs[sq.ID] {
			return nil, &ValidationError{Field: "questionsJson", Message: fmt.Sprintf("duplicate question id %d", sq.ID)}
		}
		seenIDs[sq.ID] = true
		if !sq.Options.Complete() {
			return nil, &ValidationError{Field: "questionsJson", Message: fmt.Sprintf("question %d needs four options", sq.ID)}
		}

		points := sq.Points
		if points <= 0 {
			points = 1
		}
		quiz.Questions = append(quiz.Questions, models.Question{
			ID:            sq.ID,
			QuestionText:  sq.Question,
			Options:       sq.Options,
			CorrectAnswer: sq.CorrectAnswer,
			Points:        points,
			Category:      sq.Category,
		})

		if sq.Category != "" && !seenCats[sq.Category] {
			seenCats[sq.Category] = true
			quiz.Categories = append(quiz.Categories, sq.Category)
		}
	}
	return quiz, nil
}

// SubmitWithAI submits answers and returns the scored result together with
// the generated recommendations.
func (c *Client) SubmitWithAI(ctx context.Context, sub models.QuizSubmission) (*models.SubmissionResponse, error) {
	if sub.Answers == nil {
		sub.Answers = []models.Answer{}
	}
	var resp models.SubmissionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/quiz/submit-with-ai", sub, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Message: resp.Message}
	}
	return &resp, nil
}

// Submit scores the answers without generating recommendations.
func (c *Client) Submit(ctx context.Context, sub models.QuizSubmission) (*models.QuizResult, error) {
	if sub.Answers == nil {
		sub.Answers = []models.Answer{}
	}
	var resp envelope[models.QuizResult]
	if err := c.doJSON(ctx, http.MethodPost, "/quiz/submit", sub, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// History lists the user's past results, newest first. The slice is never
// nil, even alongside an error.
func (c *Client) History(ctx context.Context) ([]models.QuizResult, error) {
	raw, err := c.do(ctx, http.MethodGet, "/quiz/history", nil)
	if err != nil {
		return []models.QuizResult{}, err
	}
	return decodeList[models.QuizResult](raw, "quiz history")
}

// StreamSummary returns the condensed recommendation for the latest attempt.
func (c *Client) StreamSummary(ctx context.Context) (*models.StreamSummary, error) {
	var resp envelope[models.StreamSummary]
	if err := c.doJSON(ctx, http.MethodGet, "/quiz/recommendations", nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	if resp.Data.RecommendedStreams == nil {
		resp.Data.RecommendedStreams = []string{}
	}
	if resp.Data.RecommendedColleges == nil {
		resp.Data.RecommendedColleges = []string{}
	}
	return &resp.Data, nil
}
