package models

const (
	DefaultTimeLimitMinutes = 30
	DefaultPassingScore     = 50
)

type Quiz struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Questions    []Question `json:"questions"`
	TimeLimit    int        `json:"timeLimit"` // minutes
	PassingScore int        `json:"passingScore"`
	Categories   []string   `json:"categories"`
}

// QuestionIndex returns the position of the question with id, or -1.
func (q *Quiz) QuestionIndex(id int64) int {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// AvailableQuiz is one element of the GET /quiz/available envelope. The
// questions travel as a JSON string and are parsed on the client.
type AvailableQuiz struct {
	QuizID        int64  `json:"quizId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionsJSON string `json:"questionsJson"`
	TargetClass   string `json:"targetClass,omitempty"`
	TimeLimit     int    `json:"timeLimit,omitempty"`
	PassingScore  int    `json:"passingScore,omitempty"`
}

// StoredQuestion is the shape of a question inside questionsJson.
type StoredQuestion struct {
	ID            int64   `json:"id"`
	Question      string  `json:"question"`
	Options       Options `json:"options"`
	CorrectAnswer string  `json:"correctAnswer"`
	Points        int     `json:"points"`
	Category      string  `json:"category"`
}
