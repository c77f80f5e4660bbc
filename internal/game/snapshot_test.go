package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Undo after a verdict restores the observable state to the reveal point,
// with automated judging suppressed for the rest of the question.
func TestUndo_RestoresRevealPoint(t *testing.T) {
	r := newTestGame(t, 3, Config{})
	r.mustStart(t)
	threeBuzzers(t, r, "1_2")

	want := r.g.StateCopy()

	r.g.JudgeAnswer("", JudgeRequest{QuestionID: "1_2", PlayerID: "p1", Correct: boolPtr(false)})
	require.Equal(t, -400, r.g.StateCopy().Scores["p1"])

	r.g.Undo("")
	got := r.g.StateCopy()
	want.AutoJudgeSuppressed = true
	require.Equal(t, want, got)
}

// The snapshot survives the first undo: judging again and undoing again lands
// on the same reveal point.
func TestUndo_Repeatable(t *testing.T) {
	r := newTestGame(t, 3, Config{})
	r.mustStart(t)
	threeBuzzers(t, r, "1_2")
	want := r.g.StateCopy()
	want.AutoJudgeSuppressed = true

	for i := 0; i < 2; i++ {
		r.g.JudgeAnswer("", JudgeRequest{QuestionID: "1_2", PlayerID: "p1", Correct: boolPtr(true)})
		r.g.Undo("")
	}
	require.Equal(t, want, r.g.StateCopy())
}

func TestUndo_NoSnapshotIsANoOp(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	before := r.g.StateCopy()
	r.g.Undo("")
	require.Equal(t, before, r.g.StateCopy())
}

// Picking the next question closes the undo window.
func TestUndo_WindowClosesOnNextPick(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	r.g.PickQuestion("p1", "1_1")
	r.openAnswerWindow()
	r.g.Buzz("p1")
	r.g.onAnswerExpired()
	r.g.JudgeAnswer("", JudgeRequest{QuestionID: "1_1", PlayerID: "p1", Correct: boolPtr(true)})

	r.g.PickQuestion("p1", "1_2")
	before := r.g.StateCopy()
	r.g.Undo("")
	require.Equal(t, before, r.g.StateCopy())
	require.Equal(t, 200, r.g.StateCopy().Scores["p1"])
}

func TestCloneState_IsADeepCopy(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	r.g.state.Scores["p1"] = 100

	cp := cloneState(r.g.state)
	cp.Scores["p1"] = 999
	cp.Players[0].Name = "mutant"
	for _, c := range cp.Board {
		c.Value = -1
	}

	require.Equal(t, 100, r.g.state.Scores["p1"])
	require.NotEqual(t, "mutant", r.g.state.Players[0].Name)
	for _, c := range r.g.state.Board {
		require.NotEqual(t, -1, c.Value)
	}
}
