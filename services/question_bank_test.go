package services

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"quizroom/models"
)

func TestParseQuestionCSV(t *testing.T) {
	input := strings.Join([]string{
		"id,question,a,b,c,d,correct,explanation",
		"1,What is 2+2?,3,4,5,6,B,Basic arithmetic",
		"2,Capital of Vietnam?,Hanoi,Hue,Da Nang,Saigon,0,",
		"3,Broken row,only,three",
		"4,Bad marker,a,b,c,d,E,oops",
		"5,  Trimmed?  , x , y , z , w ,d,",
	}, "\n")

	questions, err := ParseQuestionCSV(csv.NewReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("ParseQuestionCSV: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("parsed %d questions, want 3 (header and bad rows skipped)", len(questions))
	}

	if q := questions[0]; q.ID != 1 || q.CorrectIndex != 1 || q.Explanation != "Basic arithmetic" {
		t.Errorf("row 1 parsed as %+v", q)
	}
	if q := questions[1]; q.CorrectIndex != 0 || q.Options[0] != "Hanoi" {
		t.Errorf("row 2 parsed as %+v", q)
	}
	if q := questions[2]; q.Text != "Trimmed?" || q.Options[0] != "x" || q.CorrectIndex != 3 {
		t.Errorf("row 5 parsed as %+v", q)
	}
}

func TestDrawNoDuplicates(t *testing.T) {
	bank := NewQuestionBank(nil, nil, "test", "")
	bank.setPool(testPool(20))

	drawn, err := bank.Draw(10)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(drawn) != 10 {
		t.Fatalf("drew %d, want 10", len(drawn))
	}

	seen := make(map[uint]bool)
	for _, q := range drawn {
		if seen[q.ID] {
			t.Fatalf("question %d drawn twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestDrawClampsToPool(t *testing.T) {
	bank := NewQuestionBank(nil, nil, "test", "")
	bank.setPool(testPool(7))

	drawn, err := bank.Draw(30)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(drawn) != 7 {
		t.Errorf("drew %d from a pool of 7, want 7", len(drawn))
	}
}

func TestDrawEmptyPool(t *testing.T) {
	bank := NewQuestionBank(nil, nil, "test", "")
	if _, err := bank.Draw(10); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("empty pool: got %v, want ErrPoolExhausted", err)
	}
}

func TestDrawLeavesPoolIntact(t *testing.T) {
	bank := NewQuestionBank(nil, nil, "test", "")
	pool := testPool(10)
	bank.setPool(pool)

	if _, err := bank.Draw(10); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if bank.Size() != 10 {
		t.Errorf("pool size = %d after draw, want 10", bank.Size())
	}
	// The shuffle must have operated on a copy.
	for i, q := range pool {
		if q.ID != uint(i+1) {
			t.Fatalf("pool order disturbed at %d: %+v", i, q)
		}
	}
}

func TestNormalizeRecords(t *testing.T) {
	records := []models.QuestionRecord{
		{ID: 1, Text: "ok", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: "A"},
		{ID: 2, Text: "", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: "A"},
		{ID: 3, Text: "missing option", OptionA: "a", OptionB: "", OptionC: "c", OptionD: "d", Correct: "A"},
	}
	questions := normalizeRecords(records)
	if len(questions) != 1 || questions[0].ID != 1 {
		t.Errorf("normalized %d records, want just the valid one", len(questions))
	}
}
