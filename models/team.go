package models

import "fmt"

// Team exists only in team mode. Its Players slice holds denormalized
// copies for roster display; RefreshTeamRosters rebuilds it from the
// authoritative player list. Score is maintained incrementally alongside
// member scores and must equal their sum at every broadcast.
type Team struct {
	Name    string   `json:"name"`
	Index   int      `json:"index"`
	Score   int      `json:"score"`
	Players []Player `json:"players"`
}

// TeamName returns the display name for the nth team (1-based in the UI).
func TeamName(n int) string {
	return fmt.Sprintf("Nhóm %d", n)
}

// NewTeams builds the team list for a team-mode session.
func NewTeams(count int) []Team {
	teams := make([]Team, count)
	for i := range teams {
		teams[i] = Team{
			Name:    TeamName(i + 1),
			Index:   i,
			Players: []Player{},
		}
	}
	return teams
}
