package mockapi

import (
	"strings"

	"eduguide/models"
)

// cannedRecommendations stands in for the generative recommendation
// service. Output depends only on the result's tier, dominant aptitude and
// the user's district.
func cannedRecommendations(result models.QuizResult, district string) models.AIRecommendations {
	if strings.TrimSpace(district) == "" {
		district = "Bangalore"
	}
	stream := "Science"
	course := "B.Sc. Physics, Chemistry, Mathematics"
	switch result.ScoreBreakdown.DominantAptitude {
	case models.AptitudeVerbal:
		stream, course = "Arts", "B.A. English, Journalism"
	case models.AptitudeAnalytical:
		stream, course = "Commerce", "B.Com., BBA"
	case models.AptitudeTechnical:
		course = "B.E. Computer Science, B.Sc. Electronics"
	}

	return models.AIRecommendations{
		TopColleges: []models.College{
			{
				Name:                "Government " + stream + " College, " + district,
				Location:            district,
				Type:                "Government",
				Tier:                result.CollegeTier,
				CoursesRecommended:  []string{course},
				AdmissionProcess:    "Merit based on 12th board marks",
				EstimatedFees:       "INR 10,000 - 25,000 per year",
				PlacementHighlights: "Campus placement cell with regional recruiters",
				WhyRecommended:      "Strong " + strings.ToLower(result.ScoreBreakdown.DominantAptitude) + " aptitude fits the " + stream + " programmes offered here",
			},
			{
				Name:                "University College, " + district,
				Location:            district,
				Type:                "Government",
				Tier:                result.CollegeTier,
				CoursesRecommended:  []string{course},
				AdmissionProcess:    "University entrance counselling",
				EstimatedFees:       "INR 15,000 - 40,000 per year",
				PlacementHighlights: "Research and higher studies track record",
				WhyRecommended:      "Broad " + stream + " curriculum with flexible electives",
			},
		},
		AlternativeOptions: []models.AlternativeOption{
			{
				Name:           "Government Polytechnic, " + district,
				Location:       district,
				Type:           "Diploma",
				Specialization: "Applied " + stream,
				WhyConsider:    "Shorter programme with early employment",
			},
		},
		EntranceExams: []models.EntranceExam{
			{
				ExamName:        "CUET",
				Eligibility:     "Passed or appearing in 12th standard",
				PreparationTips: "Revise NCERT texts and practise previous papers",
			},
		},
		ActionPlan: models.ActionPlan{
			Immediate:   []string{"Shortlist colleges offering " + stream + " programmes", "Collect admission brochures"},
			Next6Months: []string{"Prepare for entrance exams", "Attend counselling sessions"},
			NextYear:    []string{"Complete admission formalities", "Explore scholarships"},
		},
	}
}
