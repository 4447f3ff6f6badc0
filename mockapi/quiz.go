package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduguide/models"
)

func (s *Server) availableQuiz(c *gin.Context) {
	s.mu.Lock()
	quiz := s.quiz
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Available quizzes retrieved successfully",
		"data":    []models.AvailableQuiz{quiz},
	})
}

// SetQuiz replaces the quiz served by /quiz/available and graded on submit.
func (s *Server) SetQuiz(quiz models.AvailableQuiz, questions []models.StoredQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiz = quiz
	s.questions = questions
}

func (s *Server) grade(c *gin.Context) (models.QuizResult, *user, bool) {
	var sub models.QuizSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid submission"})
		return models.QuizResult{}, nil, false
	}
	userID := c.GetInt64("user_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.QuizID != s.quiz.QuizID {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Quiz not found"})
		return models.QuizResult{}, nil, false
	}
	for _, a := range sub.Answers {
		if !models.ValidLabel(a.SelectedOption) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid option for question"})
			return models.QuizResult{}, nil, false
		}
	}

	u := s.usersByID[userID]
	result := Score(s.questions, sub.Answers)
	s.nextAttemptID++
	result.AttemptID = s.nextAttemptID
	result.QuizID = s.quiz.QuizID
	result.QuizTitle = s.quiz.Title
	result.CompletedAt = now()
	district := ""
	if u != nil {
		district = u.district
	}
	result.RecommendedColleges = recommendColleges(result.Percentage, district)

	s.attempts[userID] = append([]models.QuizResult{result}, s.attempts[userID]...)
	return result, u, true
}

func (s *Server) submitQuiz(c *gin.Context) {
	result, _, ok := s.grade(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Quiz submitted successfully. Stream recommendations generated!",
		"data":    result,
	})
}

func (s *Server) submitWithAI(c *gin.Context) {
	result, u, ok := s.grade(c)
	if !ok {
		return
	}
	district := ""
	if u != nil {
		district = u.district
	}
	c.JSON(http.StatusOK, models.SubmissionResponse{
		Success:           true,
		Message:           "Quiz submitted successfully with AI recommendations",
		QuizResult:        result,
		AIRecommendations: cannedRecommendations(result, district),
		Timestamp:         nowMillis(),
	})
}

func (s *Server) history(c *gin.Context) {
	userID := c.GetInt64("user_id")
	s.mu.Lock()
	history := append([]models.QuizResult{}, s.attempts[userID]...)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Quiz history retrieved successfully",
		"data":    history,
	})
}

func (s *Server) streamSummary(c *gin.Context) {
	userID := c.GetInt64("user_id")
	s.mu.Lock()
	history := s.attempts[userID]
	var latest *models.QuizResult
	if len(history) > 0 {
		r := history[0]
		latest = &r
	}
	s.mu.Unlock()

	if latest == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "No quiz attempts found. Please take a quiz first.",
			"data": models.StreamSummary{
				HasAttempts:       false,
				RecommendedAction: "Take an aptitude quiz to get stream recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stream recommendations retrieved successfully",
		"data": models.StreamSummary{
			HasAttempts:         true,
			LatestQuiz:          latest.QuizTitle,
			Score:               latest.TotalScore,
			Percentage:          latest.Percentage,
			PerformanceLevel:    latest.PerformanceLevel,
			CollegeTier:         latest.CollegeTier,
			RecommendedStreams:  latest.RecommendedStreams,
			RecommendedColleges: latest.RecommendedColleges,
			ScoreBreakdown:      latest.ScoreBreakdown,
			CompletedAt:         latest.CompletedAt,
		},
	})
}
