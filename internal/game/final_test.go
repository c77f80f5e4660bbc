package game

import (
	"testing"

	"github.com/quizwire/trivia-backend/internal/episode"
)

func startFinal(t *testing.T, players int) *testRig {
	t.Helper()
	r := newTestGame(t, players, Config{
		LoadEpisode: func() (*episode.Episode, error) { return finalOnlyEpisode(), nil },
	})
	r.mustStart(t)
	if r.g.StateCopy().Round != RoundFinal {
		t.Fatalf("fixture should land straight in the final round")
	}
	return r
}

func TestFinal_EveryoneOwesAWagerAndIsAutoBuzzed(t *testing.T) {
	r := startFinal(t, 3)
	s := r.g.StateCopy()
	if len(s.WaitingForWager) != 3 {
		t.Fatalf("all three players owe a wager, got %v", s.WaitingForWager)
	}
	if len(s.BuzzOrder) != 3 {
		t.Fatalf("all three players should be auto-buzzed, got %v", s.BuzzOrder)
	}
	if s.ClueShown {
		t.Fatalf("final clue text stays hidden during wagering")
	}
	if s.WagerDeadline == 0 {
		t.Fatalf("wager deadline should be set")
	}
}

func TestFinal_AutoBuzzOrderIsAscendingScore(t *testing.T) {
	r := newTestGame(t, 3, Config{})
	r.mustStart(t)
	r.g.state.Scores["p1"] = 900
	r.g.state.Scores["p2"] = 100
	r.g.state.Scores["p3"] = 500
	r.g.sortRoster()

	r.g.AdvanceRound() // double
	r.g.AdvanceRound() // final
	s := r.g.StateCopy()
	want := []string{"p2", "p3", "p1"}
	for i := range want {
		if s.BuzzOrder[i] != want[i] {
			t.Fatalf("buzz order = %v, want lowest score first %v", s.BuzzOrder, want)
		}
	}
}

// Wager deadline with one player disconnected: the absent player is
// force-wagered zero and the clue proceeds.
func TestFinal_DeadlineForcesZeroWagers(t *testing.T) {
	r := startFinal(t, 2)
	r.g.state.Scores["p1"] = 500
	r.g.sortRoster()
	r.g.MarkDisconnected("p2")

	r.g.SubmitWager("p1", "100")
	s := r.g.StateCopy()
	if s.Wagers["p1"] != 100 {
		t.Fatalf("wager = %d, want 100", s.Wagers["p1"])
	}
	if s.ClueShown {
		t.Fatalf("clue must wait for the deadline while p2 still owes")
	}

	r.g.onWagerExpired()
	s = r.g.StateCopy()
	if w, ok := s.Wagers["p2"]; !ok || w != 0 {
		t.Fatalf("p2 should be force-wagered zero, got %v", s.Wagers)
	}
	if !s.ClueShown {
		t.Fatalf("clue should proceed once wagers close")
	}
}

// Final wagers cap at the player's score, floor zero.
func TestFinal_WagerClampsToScore(t *testing.T) {
	r := startFinal(t, 2)
	r.g.state.Scores["p1"] = 300
	r.g.state.Scores["p2"] = -200
	r.g.sortRoster()

	r.g.SubmitWager("p1", "5000")
	r.g.SubmitWager("p2", "100")
	s := r.g.StateCopy()
	if s.Wagers["p1"] != 300 {
		t.Fatalf("p1 wager = %d, want clamped to score 300", s.Wagers["p1"])
	}
	if s.Wagers["p2"] != 0 {
		t.Fatalf("p2 wager = %d, negative score wagers nothing", s.Wagers["p2"])
	}
}

// Full final round: wagers in, answers in, both judged, wager-sized score
// deltas applied, game ends with results.
func TestFinal_PlaysThroughToResults(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	var results []Result
	r.g.SetHooks(Hooks{Results: func(res []Result) { results = res }})
	r.mustStart(t)
	r.g.state.Scores["p1"] = 1000
	r.g.state.Scores["p2"] = 600
	r.g.sortRoster()
	r.g.AdvanceRound() // double
	r.g.AdvanceRound() // final

	r.g.SubmitWager("p2", "600")
	r.g.SubmitWager("p1", "300") // last wager in triggers the clue
	if !r.g.StateCopy().ClueShown {
		t.Fatalf("clue should show once every wager is in")
	}

	r.g.onPlaybackExpired()
	s := r.g.StateCopy()
	if s.CanBuzz {
		t.Fatalf("no live buzzing in the final round")
	}
	clueID := s.CurrentClueID
	r.g.SubmitAnswer("p1", clueID, "wrong")
	r.g.SubmitAnswer("p2", clueID, "omega")
	if r.g.StateCopy().Revealed {
		t.Fatalf("final answers must hold until the deadline")
	}

	r.g.onAnswerExpired()
	s = r.g.StateCopy()
	if s.JudgeTarget != "p2" {
		t.Fatalf("judging starts with the lowest pre-final score, got %q", s.JudgeTarget)
	}

	r.g.JudgeAnswer("", JudgeRequest{QuestionID: clueID, PlayerID: "p2", Correct: boolPtr(true)})
	r.g.JudgeAnswer("", JudgeRequest{QuestionID: clueID, PlayerID: "p1", Correct: boolPtr(false)})

	s = r.g.StateCopy()
	if s.Round != RoundEnd {
		t.Fatalf("round = %q, want end after final judging", s.Round)
	}
	if len(results) != 2 || results[0].PlayerID != "p2" || results[0].Score != 1200 {
		t.Fatalf("results = %+v, want p2 on 1200 first", results)
	}
	if results[1].Score != 700 {
		t.Fatalf("p1 should finish on 700, got %+v", results[1])
	}
}
