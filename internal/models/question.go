package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/toeic-session-service/internal/answers"
)

// Question belongs to exactly one of a day or a final test.
type Question struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	DayID        *uint        `json:"day_id,omitempty" gorm:"index"`
	FinalTestID  *uint        `json:"final_test_id,omitempty" gorm:"index"`
	Order        int          `json:"order" gorm:"not null"`
	PracticeType PracticeType `json:"practice_type" gorm:"size:50"`
	Text         string       `json:"text" gorm:"type:text"`
	AudioURL     *string      `json:"audio_url,omitempty" gorm:"size:500"`
	ImageURL     *string      `json:"image_url,omitempty" gorm:"size:500"`
	Transcript   *string      `json:"transcript,omitempty" gorm:"type:text"`
	Explanation  *string      `json:"explanation,omitempty" gorm:"type:text"`

	Options      datatypes.JSON `json:"options" gorm:"type:jsonb"`       // []answers.Option
	SubQuestions datatypes.JSON `json:"sub_questions" gorm:"type:jsonb"` // []answers.SubQuestion

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// ToAnswers decodes the JSON columns into the grading representation.
func (q *Question) ToAnswers() (answers.Question, error) {
	out := answers.Question{ID: strconv.FormatUint(uint64(q.ID), 10), Text: q.Text}
	if len(q.Options) > 0 && string(q.Options) != "null" {
		if err := json.Unmarshal(q.Options, &out.Options); err != nil {
			return answers.Question{}, fmt.Errorf("question %d options: %w", q.ID, err)
		}
	}
	if len(q.SubQuestions) > 0 && string(q.SubQuestions) != "null" {
		if err := json.Unmarshal(q.SubQuestions, &out.SubQuestions); err != nil {
			return answers.Question{}, fmt.Errorf("question %d sub questions: %w", q.ID, err)
		}
	}
	return out, nil
}

// ToAnswersList converts questions in order.
func ToAnswersList(questions []Question) ([]answers.Question, error) {
	out := make([]answers.Question, 0, len(questions))
	for i := range questions {
		q, err := questions[i].ToAnswers()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
