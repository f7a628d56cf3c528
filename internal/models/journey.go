package models

import (
	"time"

	"gorm.io/gorm"
)

type ProgressStatus string

const (
	ProgressLocked     ProgressStatus = "locked"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// PracticeType names the question-rendering template used by a day.
type PracticeType string

const (
	PracticeImageDescription     PracticeType = "image_description"
	PracticeQuestionResponse     PracticeType = "question_response"
	PracticeConversation         PracticeType = "conversation"
	PracticeTalk                 PracticeType = "talk"
	PracticeIncompleteSentences  PracticeType = "incomplete_sentences"
	PracticeTextCompletion       PracticeType = "text_completion"
	PracticeReadingComprehension PracticeType = "reading_comprehension"
)

// Journey is a learner's enrolled path, made of ordered stages.
type Journey struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      string         `json:"user_id" gorm:"not null;size:255;index"`
	Title       string         `json:"title" gorm:"not null;size:200"`
	TargetScore int            `json:"target_score" gorm:"not null;default:600"`
	Status      ProgressStatus `json:"status" gorm:"default:in_progress;index"`
	StartedAt   time.Time      `json:"started_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Stages []Stage `json:"stages,omitempty" gorm:"foreignKey:JourneyID"`
}

func (Journey) TableName() string {
	return "journeys"
}

// Stage is a scored unit of a journey: several days followed by a final test.
type Stage struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	JourneyID uint           `json:"journey_id" gorm:"not null;index"`
	Order     int            `json:"order" gorm:"not null"`
	Title     string         `json:"title" gorm:"not null;size:200"`
	MinScore  int            `json:"min_score"`
	MaxScore  int            `json:"max_score"`
	Status    ProgressStatus `json:"status" gorm:"default:locked"`
	Score     *float64       `json:"score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Days       []Day       `json:"days,omitempty" gorm:"foreignKey:StageID"`
	FinalTests []FinalTest `json:"final_tests,omitempty" gorm:"foreignKey:StageID"`
}

func (Stage) TableName() string {
	return "stages"
}

// Day is one lesson of a stage.
type Day struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	StageID      uint           `json:"stage_id" gorm:"not null;index"`
	Order        int            `json:"order" gorm:"not null"`
	Title        string         `json:"title" gorm:"not null;size:200"`
	PracticeType PracticeType   `json:"practice_type" gorm:"size:50"`
	Status       ProgressStatus `json:"status" gorm:"default:locked"`
	// TimeLimit is in seconds; zero means the lesson is untimed.
	TimeLimit int `json:"time_limit" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:DayID"`
}

func (Day) TableName() string {
	return "days"
}

// FinalTest is the timed assessment gating the next stage.
type FinalTest struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	StageID      uint   `json:"stage_id" gorm:"not null;index"`
	Title        string `json:"title" gorm:"not null;size:200"`
	Duration     int    `json:"duration" gorm:"not null"` // minutes
	PassingScore int    `json:"passing_score" gorm:"not null;default:60"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:FinalTestID"`
}

func (FinalTest) TableName() string {
	return "final_tests"
}
