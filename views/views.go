// Package views renders sessions and results as terminal tables.
package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"eduguide/models"
	"eduguide/services"
)

const textWidth = 60

func newTable(title string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	if title != "" {
		tw.SetTitle(title)
	}
	return tw
}

func render(w io.Writer, tw table.Writer) error {
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

// Question renders the question under the cursor with its options, the
// current selection and the countdown.
func Question(w io.Writer, s *services.QuizSession) error {
	q, selected, ok := s.CurrentQuestion()
	if !ok {
		_, err := fmt.Fprintln(w, "No quiz loaded.")
		return err
	}
	total := len(s.Answers())

	header := fmt.Sprintf("Question %d of %d  |  %s left  |  %d answered", s.Cursor()+1, total, s.FormatRemaining(), s.AnsweredCount())
	if q.Category != "" {
		header += fmt.Sprintf("  |  %s, %d pt", q.Category, q.Points)
	}
	if _, err := fmt.Fprintf(w, "%s\n\n%s\n", header, q.QuestionText); err != nil {
		return err
	}

	tw := newTable("")
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: textWidth}})
	for _, label := range models.Labels {
		marker := label
		if label == selected {
			marker = "[" + label + "]"
		}
		tw.AppendRow(table.Row{marker, q.Options.Text(label)})
	}
	return render(w, tw)
}

// Result renders the score summary of a completed attempt.
func Result(w io.Writer, r models.QuizResult) error {
	b := r.ScoreBreakdown
	dominant := b.DominantAptitude
	if dominant == "" {
		dominant = b.Dominant()
	}
	level := r.PerformanceLevel
	if level == "" {
		level = models.PerformanceLevel(r.Percentage)
	}

	tw := newTable("Quiz Result")
	tw.AppendRows([]table.Row{
		{"Score", fmt.Sprintf("%d / %d", r.TotalScore, r.MaxScore)},
		{"Percentage", fmt.Sprintf("%.1f%%", r.Percentage)},
		{"Performance", level},
		{"Dominant aptitude", dominant},
	})
	if r.CollegeTier != "" {
		tw.AppendRow(table.Row{"College tier", r.CollegeTier})
	}
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{models.AptitudeMathematical, b.MathematicalScore},
		{models.AptitudeVerbal, b.VerbalScore},
		{models.AptitudeAnalytical, b.AnalyticalScore},
		{models.AptitudeTechnical, b.TechnicalScore},
	})
	if len(r.RecommendedStreams) > 0 {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Streams", strings.Join(r.RecommendedStreams, "\n")})
	}
	return render(w, tw)
}

// Recommendations renders the full guidance for a stored submission.
func Recommendations(w io.Writer, resp *models.SubmissionResponse) error {
	if resp == nil {
		return NoRecommendations(w)
	}
	if err := Result(w, resp.QuizResult); err != nil {
		return err
	}
	rec := resp.AIRecommendations
	if rec.Empty() {
		_, err := fmt.Fprintln(w, "No AI recommendations were returned for this attempt.")
		return err
	}

	if len(rec.TopColleges) > 0 {
		tw := newTable("Top Colleges")
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 40}})
		tw.AppendHeader(table.Row{"College", "Location", "Tier", "Why", "Fees"})
		for _, c := range rec.TopColleges {
			tw.AppendRow(table.Row{c.Name, c.Location, c.Tier, c.WhyRecommended, c.EstimatedFees})
		}
		if err := render(w, tw); err != nil {
			return err
		}
	}

	if len(rec.AlternativeOptions) > 0 {
		tw := newTable("Alternative Options")
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 40}})
		tw.AppendHeader(table.Row{"Name", "Specialization", "Why consider"})
		for _, o := range rec.AlternativeOptions {
			tw.AppendRow(table.Row{o.Name, o.Specialization, o.WhyConsider})
		}
		if err := render(w, tw); err != nil {
			return err
		}
	}

	if len(rec.EntranceExams) > 0 {
		tw := newTable("Entrance Exams")
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 40}})
		tw.AppendHeader(table.Row{"Exam", "Eligibility", "Preparation"})
		for _, e := range rec.EntranceExams {
			tw.AppendRow(table.Row{e.ExamName, e.Eligibility, e.PreparationTips})
		}
		if err := render(w, tw); err != nil {
			return err
		}
	}

	plan := rec.ActionPlan
	tw := newTable("Action Plan")
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: textWidth}})
	n := appendSteps(tw, "Immediate", plan.Immediate)
	n += appendSteps(tw, "Next 6 months", plan.Next6Months)
	n += appendSteps(tw, "Next year", plan.NextYear)
	if n == 0 {
		return nil
	}
	return render(w, tw)
}

func appendSteps(tw table.Writer, phase string, steps []string) int {
	for i, step := range steps {
		label := ""
		if i == 0 {
			label = phase
		}
		tw.AppendRow(table.Row{label, "- " + step})
	}
	return len(steps)
}

func NoRecommendations(w io.Writer) error {
	_, err := fmt.Fprintln(w, "No recommendations yet. Take the aptitude quiz to get personalized guidance.")
	return err
}

// Chat renders the message log, oldest first.
func Chat(w io.Writer, msgs []models.ChatMessage) error {
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(w, "No messages yet. Ask me anything about streams, colleges or exams.")
		return err
	}
	tw := newTable("")
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: textWidth}})
	for _, m := range msgs {
		who := "You"
		if m.MessageType != models.MessageUser {
			who = "Guide"
		}
		tw.AppendRow(table.Row{who, m.Content, shortTime(m.Timestamp)})
	}
	return render(w, tw)
}

// shortTime trims a backend timestamp to HH:MM when it has that shape.
func shortTime(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+6 {
		return ts[i+1 : i+6]
	}
	return ts
}

// Dashboard renders each section, or its error in place.
func Dashboard(w io.Writer, d *services.Dashboard) error {
	tw := newTable("Recent Attempts")
	tw.AppendHeader(table.Row{"Attempt", "Quiz", "Score", "%", "Level", "Completed"})
	switch {
	case d.HistoryErr != nil:
		tw.AppendRow(table.Row{"-", "Failed to load quiz history"})
	case len(d.History) == 0:
		tw.AppendRow(table.Row{"-", "No attempts yet"})
	}
	if d.HistoryErr == nil {
		for _, r := range d.History {
			tw.AppendRow(table.Row{r.AttemptID, r.QuizTitle, fmt.Sprintf("%d/%d", r.TotalScore, r.MaxScore),
				fmt.Sprintf("%.1f", r.Percentage), r.PerformanceLevel, r.CompletedAt})
		}
	}
	if err := render(w, tw); err != nil {
		return err
	}

	tw = newTable("Stream Summary")
	switch {
	case d.SummaryErr != nil:
		tw.AppendRow(table.Row{"Failed to load recommendations"})
	case d.Summary == nil || !d.Summary.HasAttempts:
		action := "Take the aptitude quiz"
		if d.Summary != nil && d.Summary.RecommendedAction != "" {
			action = d.Summary.RecommendedAction
		}
		tw.AppendRow(table.Row{action})
	default:
		s := d.Summary
		tw.AppendRows([]table.Row{
			{"Latest quiz", s.LatestQuiz},
			{"Percentage", fmt.Sprintf("%.1f%%", s.Percentage)},
			{"Performance", s.PerformanceLevel},
			{"College tier", s.CollegeTier},
			{"Streams", strings.Join(s.RecommendedStreams, "\n")},
		})
	}
	if err := render(w, tw); err != nil {
		return err
	}

	if d.ConvErr != nil {
		tw = newTable("Conversations")
		tw.AppendRow(table.Row{"-", "Failed to load conversations"})
		return render(w, tw)
	}
	return Conversations(w, d.Conversations)
}

func Conversations(w io.Writer, convs []models.ChatConversation) error {
	tw := newTable("Conversations")
	if len(convs) == 0 {
		tw.AppendRow(table.Row{"-", "No conversations yet"})
		return render(w, tw)
	}
	tw.AppendHeader(table.Row{"ID", "Title", "Updated"})
	for _, c := range convs {
		tw.AppendRow(table.Row{c.ConversationID, c.Title, c.UpdatedAt})
	}
	return render(w, tw)
}
