package game

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quizwire/trivia-backend/internal/episode"
)

func (g *Game) buildBoard(round string) {
	g.state.Board = map[string]*episode.Clue{}
	if g.episode == nil {
		return
	}
	for _, c := range g.episode.CluesFor(round) {
		clue := c
		g.state.Board[clue.CoordID()] = &clue
	}
}

// PickQuestion activates a board clue. When a host is configured only the
// host may pick; otherwise the current picker (or anyone, if the picker is
// gone). Picking while the previous question awaits its explicit next-step
// completes that step first.
func (g *Game) PickQuestion(callerID, coordID string) {
	if g.state.Round == RoundFinal || g.state.Round == RoundEnd {
		return
	}
	if !g.mayPick(callerID) {
		g.log.Debug("pick rejected", zap.String("player", callerID), zap.String("coord", coordID))
		return
	}
	if g.state.CurrentClueID != "" {
		if !g.state.CanNextQ {
			return // a clue is already in play
		}
		g.nextQuestion()
		// nextQuestion may have advanced the round and rebuilt the board
		if g.state.CurrentClueID != "" || g.state.Round == RoundFinal || g.state.Round == RoundEnd {
			return
		}
	}
	clue, ok := g.state.Board[coordID]
	if !ok {
		return
	}

	g.snapshot = nil // picking closes the previous question's undo window
	g.state.CurrentClueID = coordID
	g.state.CurrentValue = clue.Value
	g.state.CanNextQ = false

	if clue.DailyDouble && !g.settings.MultiCorrect {
		// Private wager sub-phase: the picker alone plays this clue, text
		// hidden until the wager lands.
		ddPlayer := g.state.Picker
		if ddPlayer == "" {
			ddPlayer = callerID
		}
		g.state.DailyDoublePlayer = ddPlayer
		g.state.Buzzes[ddPlayer] = g.now()
		g.state.BuzzOrder = append(g.state.BuzzOrder, ddPlayer)
		for _, p := range g.state.Players {
			if p.ID != ddPlayer {
				g.state.Submitted[p.ID] = true
			}
		}
		g.state.WaitingForWager[ddPlayer] = true
		g.startWagerTimer()
		g.emitCue(Cue{Type: CuePlayDailyDouble})
		g.markDirty()
		return
	}

	g.triggerClue()
}

func (g *Game) mayPick(callerID string) bool {
	if g.state.Host != "" {
		return callerID == g.state.Host
	}
	picker := g.playerByID(g.state.Picker)
	if picker == nil || !picker.Connected {
		return true // orphaned board: anyone may pick
	}
	return callerID == picker.ID
}

// triggerClue reveals the clue text and starts simulated playback.
func (g *Game) triggerClue() {
	clue, ok := g.state.Board[g.state.CurrentClueID]
	if !ok {
		return
	}
	g.cancelTimer(&g.wager)
	g.state.WagerDeadline = 0
	g.state.ClueShown = true
	g.emitCue(Cue{Type: CuePlayClueText, Coord: g.state.CurrentClueID, Text: clue.Question})
	g.startPlaybackTimer(clue.Question)
	g.markDirty()
}

func (g *Game) setupFinalRound() {
	clues := g.episode.CluesFor(RoundFinal)
	if len(clues) == 0 {
		return
	}
	now := g.now()
	final := clues[0]
	g.state.CurrentClueID = final.CoordID()
	g.state.CurrentValue = final.Value
	g.state.ClueShown = false

	// Everyone on the roster owes a wager, connected or not; disconnected
	// players are force-wagered zero at the deadline.
	for _, p := range g.state.Players {
		g.state.WaitingForWager[p.ID] = true
	}
	// Auto-buzz lowest score first so judging later runs in that order.
	for _, id := range g.playersByAscendingScore() {
		g.state.Buzzes[id] = now
		g.state.BuzzOrder = append(g.state.BuzzOrder, id)
	}
	g.startWagerTimer()
	g.emitCue(Cue{Type: CuePlayFinalRoundMusic})
	g.emitCue(Cue{Type: CuePlayCategoryReveal, Text: final.Category})
}

// readTime estimates how long the clue takes to read aloud: vowel clusters
// approximate syllables, read at four per second, one second floor.
func readTime(text string) time.Duration {
	syllables := 0
	prevVowel := false
	for _, r := range strings.ToLower(text) {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			syllables++
		}
		prevVowel = vowel
	}
	d := time.Duration(syllables) * time.Second / 4
	if d < time.Second {
		d = time.Second
	}
	return d
}
