package services

import (
	"context"
	"errors"
	"fmt"

	"eduguide/models"
	"eduguide/storage"
)

var ErrNoRecommendations = errors.New("no recommendations yet: take the aptitude quiz first")

// RecommendationService reads the submission stored by the last completed
// quiz.
type RecommendationService struct {
	store storage.LocalStorage
}

func NewRecommendationService(store storage.LocalStorage) *RecommendationService {
	return &RecommendationService{store: store}
}

// Latest returns the stored submission with nil collections replaced by
// empty ones. ErrNoRecommendations means nothing has been stored.
func (s *RecommendationService) Latest(ctx context.Context) (*models.SubmissionResponse, error) {
	var resp models.SubmissionResponse
	found, err := storage.GetJSON(ctx, s.store, storage.KeyLastQuizResult, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	if !found {
		return nil, ErrNoRecommendations
	}
	normalizeSubmission(&resp)
	return &resp, nil
}

// Clear forgets the stored submission.
func (s *RecommendationService) Clear(ctx context.Context) error {
	return s.store.Remove(ctx, storage.KeyLastQuizResult)
}

func normalizeSubmission(r *models.SubmissionResponse) {
	if r.QuizResult.RecommendedStreams == nil {
		r.QuizResult.RecommendedStreams = []string{}
	}
	if r.QuizResult.RecommendedColleges == nil {
		r.QuizResult.RecommendedColleges = []string{}
	}
	if r.QuizResult.ScoreBreakdown.DominantAptitude == "" {
		r.QuizResult.ScoreBreakdown.DominantAptitude = r.QuizResult.ScoreBreakdown.Dominant()
	}
	if r.QuizResult.PerformanceLevel == "" {
		r.QuizResult.PerformanceLevel = models.PerformanceLevel(r.QuizResult.Percentage)
	}
	if r.QuizResult.CollegeTier == "" {
		r.QuizResult.CollegeTier = models.CollegeTier(r.QuizResult.Percentage)
	}

	rec := &r.AIRecommendations
	if rec.TopColleges == nil {
		rec.TopColleges = []models.College{}
	}
	if rec.AlternativeOptions == nil {
		rec.AlternativeOptions = []models.AlternativeOption{}
	}
	if rec.EntranceExams == nil {
		rec.EntranceExams = []models.EntranceExam{}
	}
	if rec.ActionPlan.Immediate == nil {
		rec.ActionPlan.Immediate = []string{}
	}
	if rec.ActionPlan.Next6Months == nil {
		rec.ActionPlan.Next6Months = []string{}
	}
	if rec.ActionPlan.NextYear == nil {
		rec.ActionPlan.NextYear = []string{}
	}
}
