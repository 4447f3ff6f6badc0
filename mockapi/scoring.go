package mockapi

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"eduguide/models"
)

// aptitudeOf maps a question category onto one of the four aptitudes. An
// unknown category counts toward the total only.
func aptitudeOf(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "mathematical", "mathematics", "numerical":
		return models.AptitudeMathematical
	case "verbal", "language", "english":
		return models.AptitudeVerbal
	case "analytical", "logical", "reasoning":
		return models.AptitudeAnalytical
	case "technical", "science", "physics", "chemistry":
		return models.AptitudeTechnical
	}
	return ""
}

type tally struct {
	total, max   int
	score, limit map[string]int
}

func (t tally) ratio(aptitude string) float64 {
	if t.limit[aptitude] == 0 {
		return 0
	}
	return float64(t.score[aptitude]) / float64(t.limit[aptitude])
}

// Score grades answers against questions. Answers for unknown question ids
// are ignored and a missing answer scores zero.
func Score(questions []models.StoredQuestion, answers []models.Answer) models.QuizResult {
	chosen := make(map[int64]string, len(answers))
	for _, a := range answers {
		chosen[a.QuestionID] = a.SelectedOption
	}

	t := tally{score: map[string]int{}, limit: map[string]int{}}
	for _, q := range questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		apt := aptitudeOf(q.Category)
		t.max += points
		t.limit[apt] += points
		if sel, ok := chosen[q.ID]; ok && strings.EqualFold(sel, q.CorrectAnswer) {
			t.total += points
			t.score[apt] += points
		}
	}

	breakdown := models.ScoreBreakdown{
		MathematicalScore: t.score[models.AptitudeMathematical],
		VerbalScore:       t.score[models.AptitudeVerbal],
		AnalyticalScore:   t.score[models.AptitudeAnalytical],
		TechnicalScore:    t.score[models.AptitudeTechnical],
	}
	breakdown.DominantAptitude = breakdown.Dominant()

	pct := 0.0
	if t.max > 0 {
		pct = float64(t.total) * 100 / float64(t.max)
	}

	return models.QuizResult{
		TotalScore:         t.total,
		MaxScore:           t.max,
		Percentage:         pct,
		ScoreBreakdown:     breakdown,
		RecommendedStreams: recommendStreams(t),
		CollegeTier:        models.CollegeTier(pct),
		PerformanceLevel:   models.PerformanceLevel(pct),
	}
}

type streamFit struct {
	name string
	fit  float64
}

// recommendStreams ranks Science, Commerce and Arts by weighted aptitude
// ratios and keeps up to two with a fit above 0.4. With no strong fit the
// strongest single aptitude picks the stream.
func recommendStreams(t tally) []string {
	m := t.ratio(models.AptitudeMathematical)
	v := t.ratio(models.AptitudeVerbal)
	a := t.ratio(models.AptitudeAnalytical)
	tech := t.ratio(models.AptitudeTechnical)

	fits := []streamFit{
		{"Science", m*0.4 + tech*0.4 + a*0.2},
		{"Commerce", m*0.3 + a*0.4 + v*0.3},
		{"Arts", v*0.6 + a*0.4},
	}
	sort.SliceStable(fits, func(i, j int) bool { return fits[i].fit > fits[j].fit })

	out := []string{}
	for _, f := range fits[:2] {
		if f.fit > 0.4 {
			out = append(out, fmt.Sprintf("%s (%d%% match)", f.name, int(math.Round(f.fit*100))))
		}
	}
	if len(out) > 0 {
		return out
	}

	strongest, best := models.AptitudeMathematical, m
	for _, c := range []struct {
		name  string
		ratio float64
	}{{models.AptitudeVerbal, v}, {models.AptitudeAnalytical, a}, {models.AptitudeTechnical, tech}} {
		if c.ratio > best {
			strongest, best = c.name, c.ratio
		}
	}
	switch strongest {
	case models.AptitudeMathematical, models.AptitudeTechnical:
		return []string{"Science (Based on " + strongest + " strength)"}
	case models.AptitudeAnalytical:
		return []string{"Commerce (Based on " + strongest + " strength)"}
	default:
		return []string{"Arts (Based on " + strongest + " strength)"}
	}
}

func recommendColleges(percentage float64, district string) []string {
	if strings.TrimSpace(district) == "" {
		district = "Bangalore"
	}
	switch {
	case percentage >= 85:
		return []string{"Government Science College, " + district, "University College, " + district}
	case percentage >= 70:
		return []string{"District Government College, " + district, "Regional Engineering College, " + district}
	case percentage >= 55:
		return []string{"Government Degree College, " + district, "Government Arts & Science College, " + district}
	default:
		return []string{"Government First Grade College, " + district, "Government Diploma Institute, " + district}
	}
}

func seedQuiz() (models.AvailableQuiz, []models.StoredQuestion) {
	q := func(id int64, category, text string, opts [4]string, correct string, points int) models.StoredQuestion {
		return models.StoredQuestion{
			ID:            id,
			Category:      category,
			Question:      text,
			Options:       models.Options{A: opts[0], B: opts[1], C: opts[2], D: opts[3]},
			CorrectAnswer: correct,
			Points:        points,
		}
	}
	questions := []models.StoredQuestion{
		q(1, "mathematical", "If a train travels at 60 km/h for 2 hours, how far does it travel?", [4]string{"120 km", "100 km", "140 km", "80 km"}, "A", 2),
		q(2, "mathematical", "What is 15% of 200?", [4]string{"30", "25", "35", "20"}, "A", 2),
		q(3, "mathematical", "If x + 5 = 12, what is x?", [4]string{"7", "6", "8", "5"}, "A", 2),
		q(4, "verbal", "Choose the word closest in meaning to 'ABUNDANT':", [4]string{"Scarce", "Plentiful", "Limited", "Rare"}, "B", 2),
		q(5, "verbal", "Complete the analogy: Book is to Library as _____ is to Museum", [4]string{"Art", "Building", "People", "Ticket"}, "A", 2),
		q(6, "verbal", "Which sentence is grammatically correct?", [4]string{"He don't like it", "He doesn't likes it", "He doesn't like it", "He not like it"}, "C", 2),
		q(7, "analytical", "What comes next in the series: 2, 6, 18, 54, ?", [4]string{"162", "108", "216", "150"}, "A", 3),
		q(8, "analytical", "If all roses are flowers and some flowers are red, which statement is definitely true?", [4]string{"All roses are red", "Some roses are red", "All flowers are roses", "Some roses may be red"}, "D", 3),
		q(9, "analytical", "A cube has how many faces?", [4]string{"4", "6", "8", "12"}, "B", 2),
		q(10, "technical", "What is the chemical symbol for water?", [4]string{"H2O", "CO2", "NaCl", "O2"}, "A", 2),
		q(11, "technical", "Which force keeps planets in orbit around the sun?", [4]string{"Magnetic force", "Gravitational force", "Electric force", "Nuclear force"}, "B", 2),
		q(12, "technical", "In a computer, what does CPU stand for?", [4]string{"Central Processing Unit", "Computer Personal Unit", "Central Program Unit", "Control Processing Unit"}, "A", 2),
	}

	raw, _ := json.Marshal(questions)
	return models.AvailableQuiz{
		QuizID:        1,
		Title:         "General Aptitude Assessment",
		Description:   "This quiz assesses your mathematical, verbal, analytical, and technical aptitude to recommend suitable academic streams.",
		QuestionsJSON: string(raw),
		TargetClass:   "12th",
	}, questions
}
