package game

import (
	"github.com/quizwire/trivia-backend/internal/episode"
)

// cloneState is an explicit value copy of the whole GameState: every map,
// slice, and pointee duplicated. This is the undo contract, type-checked —
// a new State field that needs copying shows up here.
func cloneState(s State) State {
	out := s

	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		out.Players[i] = &cp
	}

	out.Scores = cloneMap(s.Scores)
	out.Board = make(map[string]*episode.Clue, len(s.Board))
	for k, c := range s.Board {
		cc := *c
		out.Board[k] = &cc
	}
	out.Buzzes = cloneMap(s.Buzzes)
	out.BuzzOrder = append([]string(nil), s.BuzzOrder...)
	out.Submitted = cloneMap(s.Submitted)
	out.Answers = cloneMap(s.Answers)
	out.AnswersPublic = cloneMap(s.AnswersPublic)
	out.Wagers = cloneMap(s.Wagers)
	out.WagersPublic = cloneMap(s.WagersPublic)
	out.WaitingForWager = cloneMap(s.WaitingForWager)

	out.Judges = make(map[string]*bool, len(s.Judges))
	for k, v := range s.Judges {
		if v == nil {
			out.Judges[k] = nil
			continue
		}
		b := *v
		out.Judges[k] = &b
	}

	return out
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Undo rolls the session back to the snapshot captured at answer reveal and
// re-runs the first judging advance to rebuild cursor-derived fields.
// Automated judging stays off for the rest of this question so the rollback
// cannot immediately re-trigger the dispatch it just undid. One level only;
// the snapshot survives so undo after further judging still lands on the
// same reveal point.
func (g *Game) Undo(callerID string) {
	if g.state.Host != "" && callerID != "" && callerID != g.state.Host {
		return
	}
	if g.snapshot == nil {
		return
	}
	g.cancelAllTimers()
	g.state = cloneState(*g.snapshot)
	g.state.AutoJudgeSuppressed = true
	g.sortRoster()
	g.markDirty()
	g.advanceJudging(false)
}
