package models

import "testing"

func TestParseCorrectMarker(t *testing.T) {
	tests := []struct {
		marker  string
		want    int
		wantErr bool
	}{
		{"A", 0, false},
		{"b", 1, false},
		{" C ", 2, false},
		{"d", 3, false},
		{"0", 0, false},
		{"3", 3, false},
		{"4", 0, true},
		{"E", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCorrectMarker(tt.marker)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCorrectMarker(%q) error = %v, wantErr %v", tt.marker, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseCorrectMarker(%q) = %d, want %d", tt.marker, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	record := QuestionRecord{
		ID:          1,
		Text:        "  What is Go?  ",
		OptionA:     "a language",
		OptionB:     "a game",
		OptionC:     "a gopher",
		OptionD:     "all of the above",
		Correct:     "a",
		Explanation: " the language ",
	}
	q, err := record.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Text != "What is Go?" || q.CorrectIndex != 0 || q.Explanation != "the language" {
		t.Errorf("Normalize() = %+v", q)
	}
}

func TestNormalizeRejects(t *testing.T) {
	valid := QuestionRecord{
		ID: 1, Text: "q", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: "A",
	}

	tests := []struct {
		name   string
		mutate func(*QuestionRecord)
	}{
		{"empty text", func(r *QuestionRecord) { r.Text = "  " }},
		{"empty option", func(r *QuestionRecord) { r.OptionC = "" }},
		{"bad marker", func(r *QuestionRecord) { r.Correct = "Z" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if _, err := r.Normalize(); err == nil {
				t.Error("Normalize accepted an invalid record")
			}
		})
	}
}

func TestNewTeams(t *testing.T) {
	teams := NewTeams(3)
	if len(teams) != 3 {
		t.Fatalf("NewTeams(3) built %d teams", len(teams))
	}
	for i, team := range teams {
		if team.Index != i || team.Score != 0 {
			t.Errorf("team %d = %+v", i, team)
		}
	}
	if teams[0].Name != "Nhóm 1" || teams[2].Name != "Nhóm 3" {
		t.Errorf("team names = %q, %q", teams[0].Name, teams[2].Name)
	}
}
