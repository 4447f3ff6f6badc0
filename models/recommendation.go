package models

type College struct {
	Name                string   `json:"name"`
	Location            string   `json:"location"`
	Type                string   `json:"type"`
	Tier                string   `json:"tier"`
	CoursesRecommended  []string `json:"coursesRecommended"`
	AdmissionProcess    string   `json:"admissionProcess"`
	EstimatedFees       string   `json:"estimatedFees"`
	PlacementHighlights string   `json:"placementHighlights"`
	WhyRecommended      string   `json:"whyRecommended"`
}

type AlternativeOption struct {
	Name           string `json:"name"`
	Location       string `json:"location"`
	Type           string `json:"type"`
	Specialization string `json:"specialization"`
	WhyConsider    string `json:"whyConsider"`
}

type EntranceExam struct {
	ExamName        string `json:"examName"`
	Eligibility     string `json:"eligibility"`
	PreparationTips string `json:"preparationTips"`
}

type ActionPlan struct {
	Immediate   []string `json:"immediate"`
	Next6Months []string `json:"next6Months"`
	NextYear    []string `json:"nextYear"`
}

type AIRecommendations struct {
	TopColleges        []College           `json:"topColleges"`
	AlternativeOptions []AlternativeOption `json:"alternativeOptions"`
	EntranceExams      []EntranceExam      `json:"entranceExams"`
	ActionPlan         ActionPlan          `json:"actionPlan"`
}

func (r AIRecommendations) Empty() bool {
	return len(r.TopColleges) == 0 && len(r.AlternativeOptions) == 0 && len(r.EntranceExams) == 0 &&
		len(r.ActionPlan.Immediate) == 0 && len(r.ActionPlan.Next6Months) == 0 && len(r.ActionPlan.NextYear) == 0
}
