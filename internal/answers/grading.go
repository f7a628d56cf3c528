package answers

import "math"

// GradedAnswer is the outcome for one question key. IsNotAnswer is set when no
// letter was recorded; such keys are never IsCorrect.
type GradedAnswer struct {
	Key         QuestionKey `json:"key"`
	Selected    Letter      `json:"selected,omitempty"`
	Correct     Letter      `json:"correct,omitempty"`
	IsCorrect   bool        `json:"is_correct"`
	IsNotAnswer bool        `json:"is_not_answer"`
}

type Summary struct {
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Unanswered int     `json:"unanswered"`
	Score      float64 `json:"score"` // percentage of Total, two decimals
}

// GradeQuestion compares the recorded letters for q against its correct options.
func GradeQuestion(q Question, answers AnswerMap) []GradedAnswer {
	keys := q.Keys()
	out := make([]GradedAnswer, 0, len(keys))
	for _, key := range keys {
		options, _ := q.OptionsFor(key)
		graded := GradedAnswer{Key: key, Correct: correctLetter(options)}

		selected, ok := answers[key]
		if !ok || selected == "" {
			graded.IsNotAnswer = true
			out = append(out, graded)
			continue
		}

		graded.Selected = selected
		idx := selected.Index()
		graded.IsCorrect = idx >= 0 && idx < len(options) && options[idx].IsCorrect
		out = append(out, graded)
	}
	return out
}

// Grade grades every question in order and summarises the result.
func Grade(questions []Question, answers AnswerMap) ([]GradedAnswer, Summary) {
	var results []GradedAnswer
	var summary Summary

	for _, q := range questions {
		for _, g := range GradeQuestion(q, answers) {
			summary.Total++
			switch {
			case g.IsNotAnswer:
				summary.Unanswered++
			case g.IsCorrect:
				summary.Correct++
			default:
				summary.Incorrect++
			}
			results = append(results, g)
		}
	}

	if summary.Total > 0 {
		pct := float64(summary.Correct) / float64(summary.Total) * 100
		summary.Score = math.Round(pct*100) / 100
	}
	return results, summary
}

func correctLetter(options []Option) Letter {
	for i, o := range options {
		if o.IsCorrect {
			l, _ := LetterFromIndex(i)
			return l
		}
	}
	return ""
}
