package services

import (
	"log"
	"math/rand"
	"time"

	"quizroom/models"
)

// Broadcaster is the fan-out surface the lifecycle engine drives. The hub
// implements it; tests substitute a recorder so the engine runs without a
// network layer.
type Broadcaster interface {
	Subscribe(connID, code string)
	Unsubscribe(connID string)
	ToRoom(code, event string, payload interface{})
	ToConn(connID, event string, payload interface{})
	CloseRoom(code string)
}

// GameService is the session lifecycle engine. Every handler runs
// read -> mutate -> broadcast while holding the session mutex, so two
// players answering "simultaneously" can never lose an update.
type GameService struct {
	store  *SessionStore
	bank   *QuestionBank
	tokens *TokenManager
	cast   Broadcaster
}

func NewGameService(store *SessionStore, bank *QuestionBank, tokens *TokenManager, cast Broadcaster) *GameService {
	return &GameService{
		store:  store,
		bank:   bank,
		tokens: tokens,
		cast:   cast,
	}
}

// CreateGame builds a fresh lobby-phase session and replies with its code,
// snapshot and the host's session token.
func (s *GameService) CreateGame(connID string, p CreateGamePayload) error {
	if p.HostName == "" {
		return ErrInvalidPayload
	}
	if !p.Config.Valid() {
		return ErrInvalidConfig
	}

	session := &models.GameSession{
		HostConnID:           connID,
		HostName:             p.HostName,
		Config:               p.Config,
		Phase:                models.PhaseLobby,
		Players:              []models.Player{},
		Teams:                []models.Team{},
		CurrentQuestionIndex: -1,
		Answered:             make(map[string]bool),
		CreatedAt:            time.Now(),
	}
	if p.Config.GameMode == models.ModeTeam {
		session.Teams = models.NewTeams(p.Config.TeamCount)
	}
	session.Touch()

	s.store.PutNew(session)
	s.cast.Subscribe(connID, session.Code)

	token := s.issueToken(session.Code, p.HostName, RoleHost)

	session.Mu.Lock()
	defer session.Mu.Unlock()
	s.cast.ToConn(connID, EventGameCreated, GameCreatedPayload{
		Game:  session.Snapshot(),
		Token: token,
	})
	log.Printf("Game %s created by %s (%s, %d questions)", session.Code, p.HostName, p.Config.GameMode, p.Config.QuestionCount)
	return nil
}

// JoinGame adds a player to a lobby-phase session and broadcasts the
// updated roster to the room.
func (s *GameService) JoinGame(connID string, p JoinGamePayload) error {
	if p.PlayerName == "" {
		return ErrInvalidPayload
	}

	session, ok := s.store.Get(p.GameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	switch session.Phase {
	case models.PhasePlaying:
		return ErrAlreadyPlaying
	case models.PhaseFinished:
		return ErrAlreadyFinished
	}
	if session.PlayerByName(p.PlayerName) != nil {
		return ErrDuplicateName
	}

	session.Players = append(session.Players, models.Player{
		ConnID:    connID,
		Name:      p.PlayerName,
		TeamIndex: -1,
		JoinedAt:  time.Now(),
	})
	session.Touch()

	s.cast.Subscribe(connID, session.Code)

	token := s.issueToken(session.Code, p.PlayerName, RolePlayer)
	s.cast.ToConn(connID, EventGameJoined, GameJoinedPayload{
		Game:  session.Snapshot(),
		Token: token,
	})
	s.cast.ToRoom(session.Code, EventGameUpdated, session.Snapshot())
	log.Printf("Game %s: %s joined (%d players)", session.Code, p.PlayerName, len(session.Players))
	return nil
}

// StartGame draws the question list, assigns teams and moves the session
// into the playing phase. Host only, lobby only, at least one player.
func (s *GameService) StartGame(connID, gameID string) error {
	session, ok := s.store.Get(gameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if !session.IsHost(connID) {
		return ErrUnauthorized
	}
	switch session.Phase {
	case models.PhasePlaying:
		return ErrAlreadyPlaying
	case models.PhaseFinished:
		return ErrAlreadyFinished
	}
	if len(session.Players) == 0 {
		return ErrNoPlayers
	}

	questions, err := s.bank.Draw(session.Config.QuestionCount)
	if err != nil {
		return err
	}

	assignTeams(session)

	session.Questions = questions
	session.Phase = models.PhasePlaying
	session.CurrentQuestionIndex = 0
	session.Answered = make(map[string]bool)
	session.RefreshTeamRosters()
	session.Touch()

	s.cast.ToRoom(session.Code, EventGameStarted, session.Snapshot())
	log.Printf("Game %s started: %d questions, %d players", session.Code, len(questions), len(session.Players))
	return nil
}

// assignTeams shuffles the waiting players and deals them round-robin
// across the teams, keeping sizes balanced within one regardless of join
// order. Individual mode puts everyone on conceptual team 0.
func assignTeams(session *models.GameSession) {
	if session.Config.GameMode != models.ModeTeam || len(session.Teams) == 0 {
		for i := range session.Players {
			session.Players[i].TeamIndex = 0
		}
		return
	}

	order := rand.Perm(len(session.Players))
	for slot, playerIdx := range order {
		session.Players[playerIdx].TeamIndex = slot % len(session.Teams)
	}
}

// NextQuestion advances the shared question index. The host may always
// advance; a player may advance once they have answered the current
// question, which lets the room self-pace without waiting on the host.
func (s *GameService) NextQuestion(connID, gameID string) error {
	session, ok := s.store.Get(gameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if session.Phase != models.PhasePlaying {
		return ErrInvalidPhase
	}
	if !session.IsHost(connID) {
		player := session.PlayerByConn(connID)
		if player == nil || !session.Answered[player.Name] {
			return ErrUnauthorized
		}
	}

	session.Answered = make(map[string]bool)
	session.CurrentQuestionIndex++
	session.Touch()

	if session.CurrentQuestionIndex >= len(session.Questions) {
		session.Phase = models.PhaseFinished
		session.RefreshTeamRosters()
		s.cast.ToRoom(session.Code, EventGameFinished, session.Snapshot())
		log.Printf("Game %s finished after %d questions", session.Code, len(session.Questions))
		return nil
	}

	s.cast.ToRoom(session.Code, EventQuestionChanged, QuestionChangedPayload{
		QuestionIndex: session.CurrentQuestionIndex,
		Question:      session.Questions[session.CurrentQuestionIndex].View(),
		TotalQuestion: len(session.Questions),
	})
	return nil
}

// SubmitAnswer validates an answer against the submitter's own option
// permutation, scores it server-side and marks the player as answered. The
// correctness reply goes only to the submitter; the room sees scores only.
func (s *GameService) SubmitAnswer(connID string, p SubmitAnswerPayload) error {
	session, ok := s.store.Get(p.GameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if session.Phase != models.PhasePlaying {
		return ErrInvalidPhase
	}
	player := session.PlayerByConn(connID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if session.Answered[player.Name] {
		return ErrAlreadyAnswered
	}

	question := session.Questions[session.CurrentQuestionIndex]
	canonical := ResolveAnswer(session.Code, player.Name, session.CurrentQuestionIndex, p.AnswerIndex)
	isCorrect := canonical == question.CorrectIndex
	points := CalculatePoints(isCorrect, p.TimeTaken, float64(session.Config.TimePerQuestion))

	s.awardPoints(session, player, points)
	session.Answered[player.Name] = true
	session.Touch()

	s.cast.ToConn(connID, EventAnswerResult, AnswerResultPayload{
		Correct:      isCorrect,
		Points:       points,
		TotalScore:   player.Score,
		CorrectIndex: question.CorrectIndex,
		Explanation:  question.Explanation,
	})
	s.cast.ToRoom(session.Code, EventScoresUpdated, ScoresUpdatedPayload{
		Teams:   session.Teams,
		Players: session.Players,
	})
	return nil
}

// awardPoints increments the player's score and the owning team's score
// together, then syncs the team's denormalized roster copy by name. Caller
// holds the session mutex, so both increments land atomically.
func (s *GameService) awardPoints(session *models.GameSession, player *models.Player, points int) {
	if points == 0 {
		return
	}
	player.Score += points

	if player.TeamIndex >= 0 && player.TeamIndex < len(session.Teams) {
		team := &session.Teams[player.TeamIndex]
		team.Score += points
		for i := range team.Players {
			if team.Players[i].Name == player.Name {
				team.Players[i].Score = player.Score
				break
			}
		}
	}
}

// UpdateScore applies a client-initiated score increment to the calling
// player and their team, then broadcasts the score table.
func (s *GameService) UpdateScore(connID string, p UpdateScorePayload) error {
	session, ok := s.store.Get(p.GameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if session.Phase != models.PhasePlaying {
		return ErrInvalidPhase
	}
	player := session.PlayerByConn(connID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if p.Points < 0 {
		return ErrInvalidPayload
	}
	if p.TeamIndex != player.TeamIndex {
		log.Printf("Game %s: %s reported teamIndex %d, authoritative is %d", session.Code, player.Name, p.TeamIndex, player.TeamIndex)
	}

	s.awardPoints(session, player, p.Points)
	session.Touch()

	s.cast.ToRoom(session.Code, EventScoresUpdated, ScoresUpdatedPayload{
		Teams:   session.Teams,
		Players: session.Players,
	})
	return nil
}

// PlayerFinished reconciles a client-reported final score. The server is
// the sole authority: the report is treated as telemetry, a mismatch is
// logged, and the authoritative table is echoed back to the reporter.
func (s *GameService) PlayerFinished(connID string, p PlayerFinishedPayload) error {
	session, ok := s.store.Get(p.GameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	player := session.PlayerByConn(connID)
	if player == nil {
		return ErrPlayerNotFound
	}

	if p.FinalScore != player.Score {
		log.Printf("Game %s: %s reported final score %d, authoritative is %d; keeping server value", session.Code, player.Name, p.FinalScore, player.Score)
	}
	session.Touch()

	s.cast.ToConn(connID, EventScoresUpdated, ScoresUpdatedPayload{
		Teams:   session.Teams,
		Players: session.Players,
	})
	return nil
}

// EndGame forces the session into the finished phase. Host only.
func (s *GameService) EndGame(connID, gameID string) error {
	session, ok := s.store.Get(gameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if !session.IsHost(connID) {
		return ErrUnauthorized
	}
	if session.Phase == models.PhaseFinished {
		return ErrAlreadyFinished
	}

	session.Phase = models.PhaseFinished
	session.RefreshTeamRosters()
	session.Touch()

	s.cast.ToRoom(session.Code, EventGameFinished, session.Snapshot())
	log.Printf("Game %s ended by host", session.Code)
	return nil
}

// DeleteGame removes a lobby-phase session and tells the room it is gone.
// Host only.
func (s *GameService) DeleteGame(connID, gameID string) error {
	session, ok := s.store.Get(gameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	if !session.IsHost(connID) {
		session.Mu.Unlock()
		return ErrUnauthorized
	}
	if session.Phase != models.PhaseLobby {
		session.Mu.Unlock()
		return ErrInvalidPhase
	}
	s.cast.ToRoom(session.Code, EventGameDeleted, GameDeletedPayload{
		GameID: session.Code,
		Reason: "deleted by host",
	})
	session.Mu.Unlock()

	s.store.Delete(gameID)
	s.cast.CloseRoom(gameID)
	log.Printf("Game %s deleted by host", gameID)
	return nil
}

// RejoinAsHost rebinds the host seat to a new connection. The seat is
// resolved by exact name match; a session token, when presented, must also
// check out.
func (s *GameService) RejoinAsHost(connID string, p RejoinPayload) error {
	session, ok := s.store.Get(p.GameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	if session.HostName != p.Name {
		return ErrUnauthorized
	}
	if p.Token != "" {
		if err := s.tokens.Validate(p.Token, p.GameID, p.Name, RoleHost); err != nil {
			log.Printf("Game %s: host rejoin token rejected: %v", p.GameID, err)
			return ErrUnauthorized
		}
	}

	session.HostConnID = connID
	session.Touch()

	s.cast.Subscribe(connID, session.Code)
	token := s.issueToken(session.Code, p.Name, RoleHost)
	s.cast.ToConn(connID, EventRejoined, RejoinedPayload{
		Game:  session.Snapshot(),
		Role:  RoleHost,
		Token: token,
	})
	s.cast.ToRoom(session.Code, EventGameUpdated, session.Snapshot())
	log.Printf("Game %s: host %s reconnected", session.Code, p.Name)
	return nil
}

// RejoinAsPlayer rebinds a dropped player's seat to a new connection. The
// player keeps their team and score; the reply carries a fresh snapshot so
// the client can resume whatever phase the session is in.
func (s *GameService) RejoinAsPlayer(connID string, p RejoinPayload) error {
	session, ok := s.store.Get(p.GameID)
	if !ok {
		return ErrSessionNotFound
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	player := session.PlayerByName(p.Name)
	if player == nil {
		return ErrPlayerNotFound
	}
	if p.Token != "" {
		if err := s.tokens.Validate(p.Token, p.GameID, p.Name, RolePlayer); err != nil {
			log.Printf("Game %s: player rejoin token rejected: %v", p.GameID, err)
			return ErrUnauthorized
		}
	}

	player.ConnID = connID
	session.Touch()

	s.cast.Subscribe(connID, session.Code)
	token := s.issueToken(session.Code, p.Name, RolePlayer)
	s.cast.ToConn(connID, EventRejoined, RejoinedPayload{
		Game:  session.Snapshot(),
		Role:  RolePlayer,
		Token: token,
	})
	s.cast.ToRoom(session.Code, EventGameUpdated, session.Snapshot())
	log.Printf("Game %s: player %s reconnected", session.Code, p.Name)
	return nil
}

// LeaveRoom unsubscribes the connection from its room and marks the
// corresponding seat as disconnected. The seat itself survives for rejoin.
func (s *GameService) LeaveRoom(connID, gameID string) error {
	s.cast.Unsubscribe(connID)

	session, ok := s.store.Get(gameID)
	if !ok {
		return nil
	}
	s.markDisconnected(session, connID)
	return nil
}

// HandleDisconnect is invoked by the hub when a connection drops without a
// leave-room. The seat is kept so the client can rejoin by name.
func (s *GameService) HandleDisconnect(connID, gameID string) {
	session, ok := s.store.Get(gameID)
	if !ok {
		return
	}
	s.markDisconnected(session, connID)
}

func (s *GameService) markDisconnected(session *models.GameSession, connID string) {
	session.Mu.Lock()
	defer session.Mu.Unlock()

	changed := false
	if session.HostConnID == connID {
		session.HostConnID = ""
		changed = true
		log.Printf("Game %s: host disconnected", session.Code)
	} else if player := session.PlayerByConn(connID); player != nil {
		player.ConnID = ""
		changed = true
		log.Printf("Game %s: player %s disconnected", session.Code, player.Name)
	}

	if changed {
		session.Touch()
		s.cast.ToRoom(session.Code, EventGameUpdated, session.Snapshot())
	}
}

// StartJanitor reaps sessions with no activity for maxIdle, mirroring the
// 2h expiry the product applied to cached game state.
func (s *GameService) StartJanitor(interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			s.sweepIdle(maxIdle)
		}
	}()
}

func (s *GameService) sweepIdle(maxIdle time.Duration) {
	for _, code := range s.store.IdleSince(time.Now().Add(-maxIdle)) {
		s.cast.ToRoom(code, EventGameDeleted, GameDeletedPayload{
			GameID: code,
			Reason: "idle timeout",
		})
		s.store.Delete(code)
		s.cast.CloseRoom(code)
		log.Printf("Game %s reaped after %s idle", code, maxIdle)
	}
}

func (s *GameService) issueToken(gameID, name, role string) string {
	if s.tokens == nil {
		return ""
	}
	token, err := s.tokens.Issue(gameID, name, role)
	if err != nil {
		log.Printf("Game %s: failed to issue session token for %s: %v", gameID, name, err)
		return ""
	}
	return token
}
