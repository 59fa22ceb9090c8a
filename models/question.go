package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Question is a normalized quiz question as drawn into a game session.
// CorrectIndex is immutable once the question has been selected.
type Question struct {
	ID           uint      `json:"id"`
	Text         string    `json:"question"`
	Options      [4]string `json:"options"`
	CorrectIndex int       `json:"correctIndex"`
	Explanation  string    `json:"explanation"`
}

// QuestionRecord is the tabular row shape of the question bank when the
// source is postgres. Rows are normalized into Question at load time.
type QuestionRecord struct {
	ID          uint           `gorm:"primaryKey"`
	Text        string         `gorm:"column:question;not null"`
	OptionA     string         `gorm:"not null"`
	OptionB     string         `gorm:"not null"`
	OptionC     string         `gorm:"not null"`
	OptionD     string         `gorm:"not null"`
	Correct     string         `gorm:"not null"` // letter A-D or 0-based index
	Explanation string
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (QuestionRecord) TableName() string {
	return "questions"
}

// Normalize converts a bank row into a Question. It fails on an empty
// question text, an empty option, or an unrecognized correct-answer marker.
func (r QuestionRecord) Normalize() (Question, error) {
	q := Question{
		ID:          r.ID,
		Text:        strings.TrimSpace(r.Text),
		Explanation: strings.TrimSpace(r.Explanation),
	}
	if q.Text == "" {
		return Question{}, fmt.Errorf("question %d: empty text", r.ID)
	}

	opts := [4]string{r.OptionA, r.OptionB, r.OptionC, r.OptionD}
	for i, opt := range opts {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return Question{}, fmt.Errorf("question %d: empty option %d", r.ID, i)
		}
		q.Options[i] = opt
	}

	idx, err := ParseCorrectMarker(r.Correct)
	if err != nil {
		return Question{}, fmt.Errorf("question %d: %w", r.ID, err)
	}
	q.CorrectIndex = idx

	return q, nil
}

// ParseCorrectMarker accepts a correct-answer marker as a letter (A-D,
// case-insensitive) or a 0-based index (0-3) and returns the option index.
func ParseCorrectMarker(marker string) (int, error) {
	m := strings.ToUpper(strings.TrimSpace(marker))
	switch m {
	case "A", "0":
		return 0, nil
	case "B", "1":
		return 1, nil
	case "C", "2":
		return 2, nil
	case "D", "3":
		return 3, nil
	}
	return 0, fmt.Errorf("unrecognized correct-answer marker %q", marker)
}
