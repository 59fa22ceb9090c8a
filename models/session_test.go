package models

import "testing"

func TestGameConfigValid(t *testing.T) {
	base := GameConfig{TeamCount: 4, QuestionCount: 15, TimePerQuestion: 30, GameMode: ModeTeam}

	tests := []struct {
		name   string
		mutate func(*GameConfig)
		want   bool
	}{
		{"defaults", func(c *GameConfig) {}, true},
		{"min team count", func(c *GameConfig) { c.TeamCount = 2 }, true},
		{"max team count", func(c *GameConfig) { c.TeamCount = 8 }, true},
		{"team count too low", func(c *GameConfig) { c.TeamCount = 1 }, false},
		{"team count too high", func(c *GameConfig) { c.TeamCount = 9 }, false},
		{"question count too low", func(c *GameConfig) { c.QuestionCount = 9 }, false},
		{"question count too high", func(c *GameConfig) { c.QuestionCount = 31 }, false},
		{"time too short", func(c *GameConfig) { c.TimePerQuestion = 9 }, false},
		{"time too long", func(c *GameConfig) { c.TimePerQuestion = 61 }, false},
		{"unknown mode", func(c *GameConfig) { c.GameMode = "battle-royale" }, false},
		{"individual ignores team count", func(c *GameConfig) {
			c.GameMode = ModeIndividual
			c.TeamCount = 0
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if got := cfg.Valid(); got != tt.want {
				t.Errorf("Valid() = %v for %+v, want %v", got, cfg, tt.want)
			}
		})
	}
}

func TestRefreshTeamRosters(t *testing.T) {
	session := &GameSession{
		Teams: NewTeams(2),
		Players: []Player{
			{Name: "Alice", TeamIndex: 0, Score: 100},
			{Name: "Bob", TeamIndex: 1, Score: 50},
			{Name: "Carol", TeamIndex: 0, Score: 25},
			{Name: "Unassigned", TeamIndex: -1, Score: 999},
		},
	}
	// Stale state that must be wiped by the rebuild.
	session.Teams[0].Score = 12345
	session.Teams[1].Players = []Player{{Name: "Ghost"}}

	session.RefreshTeamRosters()

	if got := session.Teams[0].Score; got != 125 {
		t.Errorf("team 0 score = %d, want 125", got)
	}
	if got := session.Teams[1].Score; got != 50 {
		t.Errorf("team 1 score = %d, want 50", got)
	}
	if got := len(session.Teams[0].Players); got != 2 {
		t.Errorf("team 0 roster has %d players, want 2", got)
	}
	if got := len(session.Teams[1].Players); got != 1 || session.Teams[1].Players[0].Name != "Bob" {
		t.Errorf("team 1 roster = %+v, want just Bob", session.Teams[1].Players)
	}
}

func TestSnapshotHidesQuestionsInLobby(t *testing.T) {
	session := &GameSession{
		Code:  "ABC123",
		Phase: PhaseLobby,
		Questions: []Question{
			{ID: 1, Text: "q", Options: [4]string{"a", "b", "c", "d"}, CorrectIndex: 2},
		},
	}

	view := session.Snapshot()
	if view.Questions != nil {
		t.Error("lobby snapshot leaked the question list")
	}
	if view.TotalQuestions != 1 {
		t.Errorf("TotalQuestions = %d, want 1", view.TotalQuestions)
	}

	session.Phase = PhasePlaying
	view = session.Snapshot()
	if len(view.Questions) != 1 {
		t.Fatalf("playing snapshot has %d questions, want 1", len(view.Questions))
	}
}

func TestQuestionViewWithholdsAnswer(t *testing.T) {
	q := Question{
		ID:           7,
		Text:         "What?",
		Options:      [4]string{"a", "b", "c", "d"},
		CorrectIndex: 2,
		Explanation:  "because c",
	}
	view := q.View()
	if view.ID != 7 || view.Text != "What?" || view.Options != q.Options {
		t.Errorf("View() = %+v, lost public fields", view)
	}
}

func TestPlayerLookups(t *testing.T) {
	session := &GameSession{
		HostConnID: "host-conn",
		Players: []Player{
			{ConnID: "c1", Name: "Alice"},
			{ConnID: "", Name: "Bob"},
		},
	}

	if p := session.PlayerByName("Alice"); p == nil || p.ConnID != "c1" {
		t.Error("PlayerByName(Alice) failed")
	}
	if p := session.PlayerByName("alice"); p != nil {
		t.Error("name lookup is not case-sensitive")
	}
	if p := session.PlayerByConn("c1"); p == nil || p.Name != "Alice" {
		t.Error("PlayerByConn(c1) failed")
	}
	if p := session.PlayerByConn(""); p != nil {
		t.Error("empty connection id matched a disconnected player")
	}
	if !session.IsHost("host-conn") || session.IsHost("c1") || session.IsHost("") {
		t.Error("IsHost misidentified the host seat")
	}
}
