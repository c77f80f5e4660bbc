package game

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Buzz records a timestamped buzz. First-correct semantics downstream come
// from this timestamp relative to BuzzUnlockTS.
func (g *Game) Buzz(playerID string) {
	if !g.state.CanBuzz {
		return
	}
	if _, already := g.state.Buzzes[playerID]; already {
		return
	}
	if g.playerByID(playerID) == nil {
		return
	}
	g.state.Buzzes[playerID] = g.now()
	g.state.BuzzOrder = append(g.state.BuzzOrder, playerID)
	g.markDirty()
}

// SubmitAnswer records an answer into the private ledger. Submitting marks
// the player done even with empty text; once every connected player is done
// (outside the Final round) the reveal short-circuits the timer.
func (g *Game) SubmitAnswer(playerID, coordID, text string) {
	if coordID == "" || coordID != g.state.CurrentClueID {
		return
	}
	if g.state.AnswerDeadline == 0 {
		return // no answer window open
	}
	if len(text) > MaxAnswerLen {
		g.log.Debug("oversized answer dropped", zap.String("player", playerID))
		return
	}
	if g.playerByID(playerID) == nil {
		return
	}
	g.state.Answers[playerID] = text
	g.state.Submitted[playerID] = true
	g.markDirty()

	if g.state.Round != RoundFinal && g.allConnectedSubmitted() {
		g.RevealAnswer()
	}
}

func (g *Game) allConnectedSubmitted() bool {
	any := false
	for _, p := range g.state.Players {
		if !p.Connected {
			continue
		}
		any = true
		if !g.state.Submitted[p.ID] {
			return false
		}
	}
	return any
}

// SubmitWager records a wager, once: a second call for the same question is a
// no-op. Non-numeric input clamps to the round minimum, numeric input into
// the round's [min, max].
func (g *Game) SubmitWager(playerID, raw string) {
	if _, already := g.state.Wagers[playerID]; already {
		return
	}
	if !g.state.WaitingForWager[playerID] {
		return
	}

	min, max := wagerBounds(g.state.Round, g.state.Scores[playerID])
	amount := min
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		amount = clamp(n, min, max)
	}
	g.state.Wagers[playerID] = amount
	delete(g.state.WaitingForWager, playerID)
	g.markDirty()

	switch {
	case g.state.DailyDoublePlayer != "":
		// Daily Double: the wager unblocks the hidden clue immediately.
		g.triggerClue()
	case g.state.Round == RoundFinal && len(g.state.WaitingForWager) == 0:
		g.triggerClue()
	}
}

// wagerBounds gives the wager range for a round given the player's score.
func wagerBounds(round string, score int) (min, max int) {
	switch round {
	case RoundDouble:
		return 5, maxInt(score, 2000)
	case RoundFinal:
		return 0, maxInt(score, 0)
	default:
		return 5, maxInt(score, 1000)
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
