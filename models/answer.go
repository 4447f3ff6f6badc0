package models

// Answer holds the selection for one question. An empty SelectedOption
// means the question is unanswered.
type Answer struct {
	QuestionID     int64  `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

func (a Answer) Answered() bool {
	return a.SelectedOption != ""
}

type QuizSubmission struct {
	QuizID  int64    `json:"quizId"`
	Answers []Answer `json:"answers"`
}
