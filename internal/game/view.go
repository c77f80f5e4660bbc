package game

import (
	"github.com/quizwire/trivia-backend/internal/episode"
)

// PublicView derives the broadcast state: the partial board, the current
// clue's text only once shown, the answer only once revealed, public answer
// and wager ledgers only. Clients never see anything else.
func (g *Game) PublicView() PublicState {
	s := &g.state

	board := make(map[string]PublicCell, len(s.Board))
	for k, c := range s.Board {
		board[k] = PublicCell{Category: c.Category, Value: c.Value}
	}

	out := PublicState{
		Round:             s.Round,
		Players:           make([]*Player, len(s.Players)),
		Scores:            cloneMap(s.Scores),
		Board:             board,
		CurrentClueID:     s.CurrentClueID,
		CurrentValue:      s.CurrentValue,
		Picker:            s.Picker,
		Host:              s.Host,
		CanBuzz:           s.CanBuzz,
		CanNextQ:          s.CanNextQ,
		Buzzes:            cloneMap(s.Buzzes),
		BuzzOrder:         append([]string(nil), s.BuzzOrder...),
		BuzzUnlockTS:      s.BuzzUnlockTS,
		Submitted:         cloneMap(s.Submitted),
		Answers:           cloneMap(s.AnswersPublic),
		Wagers:            cloneMap(s.WagersPublic),
		WaitingForWager:   cloneMap(s.WaitingForWager),
		DailyDoublePlayer: s.DailyDoublePlayer,
		JudgeIndex:        s.JudgeIndex,
		JudgeTarget:       s.JudgeTarget,
		Judges:            cloneMap(s.Judges),
		PlaybackDeadline:  s.PlaybackDeadline,
		AnswerDeadline:    s.AnswerDeadline,
		WagerDeadline:     s.WagerDeadline,
		AutoJudge:         s.AutoJudge,
	}
	for i, p := range s.Players {
		cp := *p
		out.Players[i] = &cp
	}

	if clue, ok := s.Board[s.CurrentClueID]; ok && s.CurrentClueID != "" {
		out.Category = clue.Category
		if s.ClueShown {
			out.Question = clue.Question
		}
		if s.Revealed {
			out.Answer = clue.Answer
		}
	}
	return out
}

// StateCopy returns a full deep copy of the private state, for persistence
// and tests.
func (g *Game) StateCopy() State { return cloneState(g.state) }

// Clients returns a copy of the durable-to-transient identity map.
func (g *Game) Clients() map[string]string { return cloneMap(g.clients) }

// ChatLog returns a copy of the bounded room log.
func (g *Game) ChatLog() []ChatEntry { return append([]ChatEntry(nil), g.chat...) }

// Episode returns the loaded question set, nil before the first start.
func (g *Game) Episode() *episode.Episode { return g.episode }

// Restore rehydrates a persisted session. Connections did not survive the
// restart, so every player starts disconnected; timers come back through
// RearmTimers from their persisted absolute deadlines.
func (g *Game) Restore(state State, clients map[string]string, chat []ChatEntry, ep *episode.Episode) {
	g.state = ensureMaps(state)
	g.clients = clients
	if g.clients == nil {
		g.clients = map[string]string{}
	}
	g.chat = chat
	g.episode = ep

	now := g.now()
	for _, p := range g.state.Players {
		if p.Connected {
			p.Connected = false
			p.DisconnectedAt = now
		}
	}
	g.RearmTimers()
	g.markDirty()
}

// ensureMaps guards against nil maps after a JSON round-trip of an older or
// partial record.
func ensureMaps(s State) State {
	if s.Players == nil {
		s.Players = []*Player{}
	}
	if s.Scores == nil {
		s.Scores = map[string]int{}
	}
	if s.Board == nil {
		s.Board = map[string]*episode.Clue{}
	}
	if s.Buzzes == nil {
		s.Buzzes = map[string]int64{}
	}
	if s.BuzzOrder == nil {
		s.BuzzOrder = []string{}
	}
	if s.Submitted == nil {
		s.Submitted = map[string]bool{}
	}
	if s.Answers == nil {
		s.Answers = map[string]string{}
	}
	if s.AnswersPublic == nil {
		s.AnswersPublic = map[string]string{}
	}
	if s.Wagers == nil {
		s.Wagers = map[string]int{}
	}
	if s.WagersPublic == nil {
		s.WagersPublic = map[string]int{}
	}
	if s.WaitingForWager == nil {
		s.WaitingForWager = map[string]bool{}
	}
	if s.Judges == nil {
		s.Judges = map[string]*bool{}
	}
	return s
}
