package models

// Option labels, in display order.
const (
	LabelA = "A"
	LabelB = "B"
	LabelC = "C"
	LabelD = "D"
)

var Labels = []string{LabelA, LabelB, LabelC, LabelD}

// ValidLabel reports whether label is one of the four option labels.
func ValidLabel(label string) bool {
	switch label {
	case LabelA, LabelB, LabelC, LabelD:
		return true
	}
	return false
}

type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// Text returns the option text for label, or "" for an unknown label.
func (o Options) Text(label string) string {
	switch label {
	case LabelA:
		return o.A
	case LabelB:
		return o.B
	case LabelC:
		return o.C
	case LabelD:
		return o.D
	}
	return ""
}

// Complete reports whether all four options carry text.
func (o Options) Complete() bool {
	return o.A != "" && o.B != "" && o.C != "" && o.D != ""
}

type Question struct {
	ID            int64   `json:"id"`
	QuestionText  string  `json:"questionText"`
	Options       Options `json:"options"`
	CorrectAnswer string  `json:"correctAnswer"`
	Points        int     `json:"points"`
	Category      string  `json:"category"`
}
