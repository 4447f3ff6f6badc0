package models

type ScoreBreakdown struct {
	MathematicalScore int    `json:"mathematicalScore"`
	VerbalScore       int    `json:"verbalScore"`
	AnalyticalScore   int    `json:"analyticalScore"`
	TechnicalScore    int    `json:"technicalScore"`
	DominantAptitude  string `json:"dominantAptitude"`
}

type QuizResult struct {
	AttemptID           int64          `json:"attemptId"`
	QuizID              int64          `json:"quizId"`
	QuizTitle           string         `json:"quizTitle"`
	TotalScore          int            `json:"totalScore"`
	MaxScore            int            `json:"maxScore"`
	Percentage          float64        `json:"percentage"`
	CompletedAt         string         `json:"completedAt"`
	ScoreBreakdown      ScoreBreakdown `json:"scoreBreakdown"`
	RecommendedStreams  []string       `json:"recommendedStreams"`
	RecommendedColleges []string       `json:"recommendedColleges"`
	CollegeTier         string         `json:"collegeTier"`
	PerformanceLevel    string         `json:"performanceLevel"`
}

// SubmissionResponse is the body of POST /quiz/submit-with-ai.
type SubmissionResponse struct {
	Success           bool              `json:"success"`
	AIRecommendations AIRecommendations `json:"aiRecommendations"`
	QuizResult        QuizResult        `json:"quizResult"`
	Message           string            `json:"message"`
	Timestamp         int64             `json:"timestamp"`
}

// StreamSummary is the data of GET /quiz/recommendations: the latest
// attempt condensed, or HasAttempts=false with a suggested action.
type StreamSummary struct {
	HasAttempts         bool           `json:"hasAttempts"`
	RecommendedAction   string         `json:"recommendedAction,omitempty"`
	LatestQuiz          string         `json:"latestQuiz,omitempty"`
	Score               int            `json:"score,omitempty"`
	Percentage          float64        `json:"percentage,omitempty"`
	PerformanceLevel    string         `json:"performanceLevel,omitempty"`
	CollegeTier         string         `json:"collegeTier,omitempty"`
	RecommendedStreams  []string       `json:"recommendedStreams,omitempty"`
	RecommendedColleges []string       `json:"recommendedColleges,omitempty"`
	ScoreBreakdown      ScoreBreakdown `json:"scoreBreakdown"`
	CompletedAt         string         `json:"completedAt,omitempty"`
}

// Aptitude names, in tie-break order.
const (
	AptitudeMathematical = "Mathematical"
	AptitudeVerbal       = "Verbal"
	AptitudeAnalytical   = "Analytical"
	AptitudeTechnical    = "Technical"
)

// Dominant returns the aptitude with the highest score. Ties go to the
// earlier of Mathematical, Verbal, Analytical, Technical.
func (b ScoreBreakdown) Dominant() string {
	best, name := b.MathematicalScore, AptitudeMathematical
	if b.VerbalScore > best {
		best, name = b.VerbalScore, AptitudeVerbal
	}
	if b.AnalyticalScore > best {
		best, name = b.AnalyticalScore, AptitudeAnalytical
	}
	if b.TechnicalScore > best {
		name = AptitudeTechnical
	}
	return name
}

func PerformanceLevel(percentage float64) string {
	switch {
	case percentage >= 85:
		return "Excellent"
	case percentage >= 70:
		return "Very Good"
	case percentage >= 55:
		return "Good"
	case percentage >= 40:
		return "Average"
	default:
		return "Needs Improvement"
	}
}

func CollegeTier(percentage float64) string {
	switch {
	case percentage >= 85:
		return "Premier"
	case percentage >= 70:
		return "Tier-1"
	case percentage >= 55:
		return "Tier-2"
	case percentage >= 40:
		return "Tier-3"
	default:
		return "Foundation"
	}
}
