package game

import (
	"strings"
	"testing"
)

func TestWagerBounds_PerRound(t *testing.T) {
	cases := []struct {
		round    string
		score    int
		min, max int
	}{
		{RoundJeopardy, 0, 5, 1000},
		{RoundJeopardy, 2500, 5, 2500},
		{RoundDouble, 0, 5, 2000},
		{RoundDouble, 3000, 5, 3000},
		{RoundFinal, 0, 0, 0},
		{RoundFinal, -400, 0, 0},
		{RoundFinal, 800, 0, 800},
	}
	for _, tc := range cases {
		min, max := wagerBounds(tc.round, tc.score)
		if min != tc.min || max != tc.max {
			t.Errorf("wagerBounds(%s, %d) = [%d, %d], want [%d, %d]",
				tc.round, tc.score, min, max, tc.min, tc.max)
		}
	}
}

// A Daily Double wager of "abc" from a player with 1200 points clamps to the
// round minimum and the hidden clue text is revealed immediately after.
func TestDailyDouble_NonNumericWagerClampsToMinimum(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	r.g.state.Scores["p2"] = 1200
	r.g.sortRoster()

	r.g.PickQuestion("p2", "2_1") // the Daily Double cell
	s := r.g.StateCopy()
	if s.DailyDoublePlayer != "p2" {
		t.Fatalf("daily double player = %q, want p2", s.DailyDoublePlayer)
	}
	if s.ClueShown {
		t.Fatalf("clue text must stay hidden until the wager lands")
	}
	if !s.WaitingForWager["p2"] || s.WagerDeadline == 0 {
		t.Fatalf("p2 should owe a wager under a deadline: %+v", s)
	}

	r.g.SubmitWager("p2", "abc")
	s = r.g.StateCopy()
	if got := s.Wagers["p2"]; got != 5 {
		t.Fatalf("wager = %d, want minimum 5", got)
	}
	if !s.ClueShown {
		t.Fatalf("wager submission should trigger the clue")
	}
	if s.WagerDeadline != 0 {
		t.Fatalf("wager deadline should be cleared")
	}
}

func TestDailyDouble_AutoBuzzesPickerAndBlocksOthers(t *testing.T) {
	r := newTestGame(t, 3, Config{})
	r.mustStart(t)

	r.g.PickQuestion("p1", "2_1")
	s := r.g.StateCopy()
	if len(s.BuzzOrder) != 1 || s.BuzzOrder[0] != "p1" {
		t.Fatalf("buzz order = %v, want [p1]", s.BuzzOrder)
	}
	if !s.Submitted["p2"] || !s.Submitted["p3"] {
		t.Fatalf("non-playing players should be pre-marked submitted")
	}
}

func TestSubmitWager_SecondSubmissionIgnored(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	r.g.state.Scores["p1"] = 1200
	r.g.PickQuestion("p1", "2_1")

	r.g.SubmitWager("p1", "600")
	r.g.SubmitWager("p1", "900")
	if got := r.g.StateCopy().Wagers["p1"]; got != 600 {
		t.Fatalf("wager = %d, first submission must win", got)
	}
}

func TestBuzz_RequiresOpenWindow(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	r.g.PickQuestion("p1", "1_1")

	r.g.Buzz("p1") // playback still running
	if len(r.g.StateCopy().BuzzOrder) != 0 {
		t.Fatalf("buzz before unlock must be ignored")
	}

	r.openAnswerWindow()
	r.g.Buzz("p1")
	r.g.Buzz("p1") // duplicate
	r.g.Buzz("ghost")
	s := r.g.StateCopy()
	if len(s.BuzzOrder) != 1 || s.BuzzOrder[0] != "p1" {
		t.Fatalf("buzz order = %v, want [p1]", s.BuzzOrder)
	}
	if s.BuzzUnlockTS == 0 || s.Buzzes["p1"] < s.BuzzUnlockTS {
		t.Fatalf("buzz timestamp %d should not precede unlock %d", s.Buzzes["p1"], s.BuzzUnlockTS)
	}
}

func TestSubmitAnswer_Guards(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	r.g.PickQuestion("p1", "1_1")
	r.openAnswerWindow()

	r.g.SubmitAnswer("p1", "9_9", "wrong coord")
	r.g.SubmitAnswer("p1", "", "empty coord")
	r.g.SubmitAnswer("p1", "1_1", strings.Repeat("x", MaxAnswerLen+1))
	if len(r.g.StateCopy().Answers) != 0 {
		t.Fatalf("guarded submissions must not land")
	}

	r.g.SubmitAnswer("p1", "1_1", "alpha")
	s := r.g.StateCopy()
	if s.Answers["p1"] != "alpha" || !s.Submitted["p1"] {
		t.Fatalf("answer not recorded: %+v", s.Answers)
	}
	if len(s.AnswersPublic) != 0 {
		t.Fatalf("answers must stay private before the reveal")
	}
}

// When every connected player has submitted, the reveal fires without waiting
// for the answer deadline.
func TestSubmitAnswer_AllSubmittedShortCircuitsReveal(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	r.g.PickQuestion("p1", "1_1")
	r.openAnswerWindow()
	r.g.Buzz("p1")
	r.g.Buzz("p2")

	r.g.SubmitAnswer("p1", "1_1", "alpha")
	if r.g.StateCopy().Revealed {
		t.Fatalf("reveal fired with p2 still answering")
	}
	r.g.SubmitAnswer("p2", "1_1", "beta")
	s := r.g.StateCopy()
	if !s.Revealed {
		t.Fatalf("reveal should fire once everyone submitted")
	}
	if s.AnswersPublic["p1"] != "alpha" || s.AnswersPublic["p2"] != "beta" {
		t.Fatalf("answers should be public after reveal: %+v", s.AnswersPublic)
	}
	if s.JudgeTarget != "p1" {
		t.Fatalf("judging should start at the first buzzer, got %q", s.JudgeTarget)
	}
}

// A buzzed player who never answered gets an empty recorded answer at reveal.
func TestReveal_BackfillsSilentBuzzers(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	r.g.PickQuestion("p1", "1_1")
	r.openAnswerWindow()
	r.g.Buzz("p2")

	r.g.onAnswerExpired()
	s := r.g.StateCopy()
	if a, ok := s.AnswersPublic["p2"]; !ok || a != "" {
		t.Fatalf("silent buzzer should have an empty public answer, got %+v", s.AnswersPublic)
	}
}
