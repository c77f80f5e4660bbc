package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quizwire/trivia-backend/internal/analytics"
	"github.com/quizwire/trivia-backend/internal/judge"
)

// RevealAnswer ends the collection phase: timers stop, every buzzed player
// without an answer gets an empty one, the private ledger goes public, a
// snapshot is captured for undo, and the judging cursor starts walking.
func (g *Game) RevealAnswer() {
	if g.state.CurrentClueID == "" || g.state.Revealed {
		return
	}
	g.cancelTimer(&g.answer)
	g.state.AnswerDeadline = 0
	g.cancelTimer(&g.playback)
	g.state.PlaybackDeadline = 0
	g.state.CanBuzz = false
	g.state.Revealed = true

	for _, id := range g.state.BuzzOrder {
		if _, ok := g.state.Answers[id]; !ok {
			g.state.Answers[id] = ""
		}
	}
	for id, a := range g.state.Answers {
		g.state.AnswersPublic[id] = a
	}

	snap := cloneState(g.state)
	g.snapshot = &snap
	g.markDirty()
	g.advanceJudging(false)
}

// advanceJudging moves the cursor to the next judgeable buzzed player,
// skipping anyone who has left the roster. An explicit loop, not recursion:
// roster churn must not be able to blow the stack.
func (g *Game) advanceJudging(skipRemaining bool) {
	for {
		g.state.JudgeIndex++
		if skipRemaining || g.state.JudgeIndex >= len(g.state.BuzzOrder) {
			g.state.JudgeIndex = len(g.state.BuzzOrder)
			g.state.JudgeTarget = ""
			g.state.CanNextQ = true
			g.markDirty()
			if g.state.Round == RoundFinal {
				g.AdvanceRound() // final judging done: straight to results
			}
			return
		}
		id := g.state.BuzzOrder[g.state.JudgeIndex]
		if g.playerByID(id) == nil {
			continue // player is gone, nothing to judge
		}
		g.state.JudgeTarget = id
		g.state.AnswersPublic[id] = g.state.Answers[id]
		if w, ok := g.state.Wagers[id]; ok {
			g.state.WagersPublic[id] = w
		}
		g.markDirty()
		g.maybeAutoJudge(id)
		return
	}
}

// maybeAutoJudge asks the collaborator about the player now under the
// cursor. Trivially decidable responses resolve locally; everything else is
// dispatched asynchronously and re-enters through JudgeAnswer like any human
// verdict, where staleness checks drop it if the game moved on.
func (g *Game) maybeAutoJudge(playerID string) {
	if g.autoJudge == nil || !g.state.AutoJudge || g.state.AutoJudgeSuppressed {
		return
	}
	if _, judged := g.state.Judges[playerID]; judged {
		return
	}
	clue, ok := g.state.Board[g.state.CurrentClueID]
	if !ok {
		return
	}
	questionID := g.state.CurrentClueID
	response := g.state.Answers[playerID]

	if verdict, decided := judge.Shortcut(clue.Answer, response); decided {
		v := verdict
		g.record(analytics.Decision{
			RoomID: g.roomID, QuestionID: questionID, PlayerID: playerID,
			Response: response, Correct: &v, Outcome: analytics.OutcomeShortcut,
		})
		g.JudgeAnswer("", JudgeRequest{QuestionID: questionID, PlayerID: playerID, Correct: &v})
		return
	}

	if g.analytics != nil {
		g.analytics.Dispatched()
	}
	q := judge.Query{Question: clue.Question, Answer: clue.Answer, Response: response}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), g.judgeTimeout)
		defer cancel()
		correct, err := g.autoJudge.Judge(ctx, q)
		if err != nil {
			g.log.Warn("auto-judge gave no decision",
				zap.String("question", questionID), zap.String("player", playerID), zap.Error(err))
			g.record(analytics.Decision{
				RoomID: g.roomID, QuestionID: questionID, PlayerID: playerID,
				Response: response, Outcome: analytics.OutcomeNoDecision,
			})
			return
		}
		g.run(func() {
			v := correct
			applied := g.JudgeAnswer("", JudgeRequest{QuestionID: questionID, PlayerID: playerID, Correct: &v})
			outcome := analytics.OutcomeApplied
			if !applied {
				// Cursor moved past this player (or a human beat us to it):
				// keep it for the counters, change nothing.
				outcome = analytics.OutcomeLate
			}
			g.record(analytics.Decision{
				RoomID: g.roomID, QuestionID: questionID, PlayerID: playerID,
				Response: response, Correct: &v, Outcome: outcome,
			})
		})
	}()
}

func (g *Game) record(d analytics.Decision) {
	if g.analytics != nil {
		g.analytics.Record(d)
	}
}

// JudgeAnswer applies one correctness decision, human or automated. It is
// the single validated entry point: anything stale, out of turn, duplicate,
// or unauthorized is a silent no-op. Returns whether a score-affecting
// decision was recorded.
func (g *Game) JudgeAnswer(callerID string, req JudgeRequest) bool {
	if _, already := g.state.Judges[req.PlayerID]; already {
		return false
	}
	if req.QuestionID == "" || req.QuestionID != g.state.CurrentClueID {
		return false
	}
	if g.state.JudgeTarget != req.PlayerID {
		return false
	}
	if g.state.Host != "" && callerID != "" && callerID != g.state.Host {
		return false
	}

	g.state.Judges[req.PlayerID] = req.Correct

	delta := g.state.CurrentValue
	if w, ok := g.state.Wagers[req.PlayerID]; ok {
		delta = w
	}

	name := g.playerName(req.PlayerID)
	switch {
	case req.Correct == nil:
		g.systemChat(fmt.Sprintf("%s was skipped", name))
	case *req.Correct:
		g.state.Scores[req.PlayerID] += delta
		if !g.settings.MultiCorrect {
			g.state.Picker = req.PlayerID
		}
		g.sortRoster()
		g.emitCue(Cue{Type: CuePlayCorrectSting})
		g.systemChat(fmt.Sprintf("%s answered correctly (+%d)", name, delta))
	default:
		g.state.Scores[req.PlayerID] -= delta
		g.sortRoster()
		g.systemChat(fmt.Sprintf("%s answered incorrectly (-%d)", name, delta))
	}
	g.markDirty()

	// A correct answer ends judging for the clue outside multi-correct and
	// Final play.
	skipRemaining := req.Correct != nil && *req.Correct &&
		g.state.Round != RoundFinal && !g.settings.MultiCorrect
	g.advanceJudging(skipRemaining)

	return req.Correct != nil
}

// BulkJudge walks the cursor applying verdicts from the list, stopping at the
// first cursor position the list does not cover; the remainder falls back to
// one-by-one judging.
func (g *Game) BulkJudge(callerID string, items []BulkJudgeItem) {
	for g.state.JudgeTarget != "" {
		target := g.state.JudgeTarget
		var found *BulkJudgeItem
		for i := range items {
			if items[i].PlayerID == target {
				found = &items[i]
				break
			}
		}
		if found == nil {
			return
		}
		g.JudgeAnswer(callerID, JudgeRequest{
			QuestionID: g.state.CurrentClueID,
			PlayerID:   target,
			Correct:    found.Correct,
		})
		if g.state.JudgeTarget == target {
			return // rejected, do not spin
		}
	}
}
