package answers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidLetter = errors.New("invalid answer letter")
	ErrInvalidKey    = errors.New("invalid question key")
)

// Letter identifies an answer option: A for the first option, B for the second and so on.
type Letter string

// LetterFromIndex maps a zero-based option index to its letter.
func LetterFromIndex(i int) (Letter, error) {
	if i < 0 || i >= 26 {
		return "", fmt.Errorf("%w: index %d", ErrInvalidLetter, i)
	}
	return Letter(rune('A' + i)), nil
}

// Index returns the zero-based option index, or -1 when the letter is malformed.
func (l Letter) Index() int {
	if len(l) != 1 || l[0] < 'A' || l[0] > 'Z' {
		return -1
	}
	return int(l[0] - 'A')
}

func (l Letter) Valid() bool {
	return l.Index() >= 0
}

// QuestionKey addresses a question, or a sub-question when SubQuestionID is set.
type QuestionKey struct {
	QuestionID    string `json:"question_id"`
	SubQuestionID string `json:"sub_question_id,omitempty"`
}

func Key(questionID string) QuestionKey {
	return QuestionKey{QuestionID: questionID}
}

func SubKey(questionID, subQuestionID string) QuestionKey {
	return QuestionKey{QuestionID: questionID, SubQuestionID: subQuestionID}
}

// String renders the key the way clients send it: "qid" or "qid_subid".
func (k QuestionKey) String() string {
	if k.SubQuestionID == "" {
		return k.QuestionID
	}
	return k.QuestionID + "_" + k.SubQuestionID
}

// ParseKey is the inverse of String. Question ids never contain '_'.
func ParseKey(s string) (QuestionKey, error) {
	s = strings.TrimSpace(s)
	qid, sub, found := strings.Cut(s, "_")
	if qid == "" || (found && sub == "") {
		return QuestionKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return QuestionKey{QuestionID: qid, SubQuestionID: sub}, nil
}

func (k QuestionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *QuestionKey) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// AnswerMap holds the selected letter per question or sub-question.
type AnswerMap map[QuestionKey]Letter

func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ForQuestion returns the entries that belong to questionID.
func (m AnswerMap) ForQuestion(questionID string) AnswerMap {
	out := make(AnswerMap)
	for k, v := range m {
		if k.QuestionID == questionID {
			out[k] = v
		}
	}
	return out
}

// Merge copies every entry of other into m.
func (m AnswerMap) Merge(other AnswerMap) {
	for k, v := range other {
		m[k] = v
	}
}

// Option is one selectable answer. IsCorrect is only consulted when grading.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type SubQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Question is either answered directly through Options or through its SubQuestions.
type Question struct {
	ID           string        `json:"id"`
	Text         string        `json:"text"`
	Options      []Option      `json:"options,omitempty"`
	SubQuestions []SubQuestion `json:"sub_questions,omitempty"`
}

// Keys lists every answerable key of the question in display order.
func (q Question) Keys() []QuestionKey {
	if len(q.SubQuestions) == 0 {
		return []QuestionKey{Key(q.ID)}
	}
	keys := make([]QuestionKey, len(q.SubQuestions))
	for i, sq := range q.SubQuestions {
		keys[i] = SubKey(q.ID, sq.ID)
	}
	return keys
}

// OptionsFor returns the options answering key, or false when key is not part of q.
func (q Question) OptionsFor(key QuestionKey) ([]Option, bool) {
	if key.QuestionID != q.ID {
		return nil, false
	}
	if key.SubQuestionID == "" {
		if len(q.SubQuestions) > 0 {
			return nil, false
		}
		return q.Options, true
	}
	for _, sq := range q.SubQuestions {
		if sq.ID == key.SubQuestionID {
			return sq.Options, true
		}
	}
	return nil, false
}

// Redacted strips correctness flags so the question can be shown while answering.
func (q Question) Redacted() Question {
	out := q
	out.Options = redactOptions(q.Options)
	if len(q.SubQuestions) > 0 {
		out.SubQuestions = make([]SubQuestion, len(q.SubQuestions))
		for i, sq := range q.SubQuestions {
			sq.Options = redactOptions(sq.Options)
			out.SubQuestions[i] = sq
		}
	}
	return out
}

func redactOptions(in []Option) []Option {
	if in == nil {
		return nil
	}
	out := make([]Option, len(in))
	for i, o := range in {
		out[i] = Option{Text: o.Text}
	}
	return out
}
