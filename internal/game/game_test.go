package game

import (
	"fmt"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/quizwire/trivia-backend/internal/episode"
)

// testEpisode: two jeopardy categories (A: 200/400, B: 200 Daily Double),
// one double clue, one final clue.
func testEpisode() *episode.Episode {
	return &episode.Episode{
		Jeopardy: []episode.Clue{
			{Round: "jeopardy", Category: "A", Col: 1, Row: 1, Value: 200, Question: "q-a1", Answer: "alpha"},
			{Round: "jeopardy", Category: "A", Col: 1, Row: 2, Value: 400, Question: "q-a2", Answer: "beta"},
			{Round: "jeopardy", Category: "B", Col: 2, Row: 1, Value: 200, Question: "q-b1", Answer: "gamma", DailyDouble: true},
		},
		Double: []episode.Clue{
			{Round: "double", Category: "C", Col: 1, Row: 1, Value: 400, Question: "q-c1", Answer: "delta"},
		},
		Final: []episode.Clue{
			{Round: "final", Category: "F", Col: 1, Row: 1, Value: 0, Question: "q-f1", Answer: "omega"},
		},
	}
}

func finalOnlyEpisode() *episode.Episode {
	ep := &episode.Episode{Final: testEpisode().Final}
	return ep
}

type testRig struct {
	g   *Game
	clk *clockwork.FakeClock
}

func newTestGame(t *testing.T, players int, cfg Config) *testRig {
	t.Helper()
	clk := clockwork.NewFakeClock()
	cfg.RoomID = "TEST01"
	cfg.Clock = clk
	if cfg.LoadEpisode == nil {
		cfg.LoadEpisode = func() (*episode.Episode, error) { return testEpisode(), nil }
	}
	g := New(cfg)
	for i := 1; i <= players; i++ {
		g.RegisterConnection(fmt.Sprintf("client%d", i), fmt.Sprintf("p%d", i), fmt.Sprintf("player%d", i))
	}
	return &testRig{g: g, clk: clk}
}

func (r *testRig) mustStart(t *testing.T) {
	t.Helper()
	if err := r.g.Start("", nil, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
}

// openAnswerWindow drives a picked clue to the point where buzzing/answering
// is possible, without waiting on the fake clock.
func (r *testRig) openAnswerWindow() {
	r.g.onPlaybackExpired()
}

func boolPtr(b bool) *bool { return &b }

func TestStart_BeginsAtJeopardy(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)

	s := r.g.StateCopy()
	if s.Round != RoundJeopardy {
		t.Fatalf("round = %q, want jeopardy", s.Round)
	}
	if len(s.Board) != 3 {
		t.Fatalf("board size = %d, want 3", len(s.Board))
	}
	if s.CurrentClueID != "" || s.CanBuzz || s.CanNextQ {
		t.Fatalf("unexpected per-question state after start: %+v", s)
	}
}

func TestStart_BadCustomDataLeavesGameUntouched(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)
	before := r.g.StateCopy()

	if err := r.g.Start("", nil, "not,a,valid\nimport"); err == nil {
		t.Fatalf("expected error")
	}
	after := r.g.StateCopy()
	if before.Round != after.Round || len(before.Board) != len(after.Board) {
		t.Fatalf("state changed after failed import")
	}
}

func TestRoundOrder_TotalAndCyclic(t *testing.T) {
	r := newTestGame(t, 2, Config{})
	r.mustStart(t)

	want := []string{RoundDouble, RoundFinal, RoundEnd, RoundJeopardy}
	for _, w := range want {
		r.g.AdvanceRound()
		if got := r.g.StateCopy().Round; got != w {
			t.Fatalf("round = %q, want %q", got, w)
		}
	}
}

func TestAdvanceRound_SkipsEmptyRounds(t *testing.T) {
	r := newTestGame(t, 2, Config{
		LoadEpisode: func() (*episode.Episode, error) { return finalOnlyEpisode(), nil },
	})
	r.mustStart(t)

	s := r.g.StateCopy()
	if s.Round != RoundFinal {
		t.Fatalf("round = %q, want final (jeopardy and double are empty)", s.Round)
	}
	if s.CurrentClueID == "" {
		t.Fatalf("final clue should be auto-selected")
	}
}

func TestAdvanceRound_LowestScorePicksInDouble(t *testing.T) {
	r := newTestGame(t, 3, Config{})
	r.mustStart(t)
	r.g.state.Scores["p1"] = 1000
	r.g.state.Scores["p2"] = -200
	r.g.state.Scores["p3"] = 400
	r.g.sortRoster()

	r.g.AdvanceRound()
	s := r.g.StateCopy()
	if s.Round != RoundDouble {
		t.Fatalf("round = %q, want double", s.Round)
	}
	if s.Picker != "p2" {
		t.Fatalf("picker = %q, want lowest-score p2", s.Picker)
	}
}

func TestAdvanceRound_HostOverridesPicker(t *testing.T) {
	r := newTestGame(t, 0, Config{Settings: Settings{HostClientID: "host-client"}})
	r.g.RegisterConnection("host-client", "h1", "the host")
	r.g.RegisterConnection("client1", "p1", "player1")
	r.mustStart(t)

	r.g.AdvanceRound()
	if got := r.g.StateCopy().Picker; got != "h1" {
		t.Fatalf("picker = %q, want host h1", got)
	}
}

func TestEndRound_EmitsSortedResults(t *testing.T) {
	r := newTestGame(t, 3, Config{
		LoadEpisode: func() (*episode.Episode, error) { return finalOnlyEpisode(), nil },
	})
	var results []Result
	r.g.SetHooks(Hooks{Results: func(res []Result) { results = res }})
	r.mustStart(t) // lands in final
	r.g.state.Scores["p1"] = 100
	r.g.state.Scores["p2"] = 300
	r.g.state.Scores["p3"] = 200
	r.g.sortRoster()

	r.g.AdvanceRound() // final -> end
	if r.g.StateCopy().Round != RoundEnd {
		t.Fatalf("round should be end")
	}
	if len(results) != 3 || results[0].PlayerID != "p2" || results[2].PlayerID != "p1" {
		t.Fatalf("results not score-descending: %+v", results)
	}
}

func TestReadTime_SyllableHeuristic(t *testing.T) {
	cases := []struct {
		text string
		secs float64
	}{
		{"", 1},          // floor
		{"xyz", 1},       // y is the only cluster, still floored
		{"a aa aaa b", 1}, // three clusters, under the floor
		{"this is a longer clue with many more syllables to read", 4},
	}
	for _, tc := range cases {
		if got := readTime(tc.text).Seconds(); got != tc.secs {
			t.Errorf("readTime(%q) = %vs, want %vs", tc.text, got, tc.secs)
		}
	}
}
