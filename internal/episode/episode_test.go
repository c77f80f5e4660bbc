package episode

import (
	"strings"
	"testing"
)

func TestParseCustom_CoordinatesAndValues(t *testing.T) {
	data := strings.Join([]string{
		`jeopardy,A,q1,a1,false`,
		`jeopardy,A,q2,a2,false`,
		`jeopardy,B,q3,a3,true`,
	}, "\n")

	ep, err := ParseCustom(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ep.Jeopardy) != 3 {
		t.Fatalf("want 3 clues, got %d", len(ep.Jeopardy))
	}

	want := []struct {
		coord string
		value int
		dd    bool
	}{
		{"1_1", 200, false},
		{"1_2", 400, false},
		{"2_1", 200, true},
	}
	for i, w := range want {
		c := ep.Jeopardy[i]
		if c.CoordID() != w.coord {
			t.Errorf("clue %d: coord = %s, want %s", i, c.CoordID(), w.coord)
		}
		if c.Value != w.value {
			t.Errorf("clue %d: value = %d, want %d", i, c.Value, w.value)
		}
		if c.DailyDouble != w.dd {
			t.Errorf("clue %d: dailyDouble = %v, want %v", i, c.DailyDouble, w.dd)
		}
	}
}

func TestParseCustom_RoundMultipliers(t *testing.T) {
	data := strings.Join([]string{
		`double,C,q1,a1,false`,
		`double,C,q2,a2,false`,
		`final,F,q3,a3,false`,
	}, "\n")

	ep, err := ParseCustom(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ep.Double[0].Value != 400 || ep.Double[1].Value != 800 {
		t.Errorf("double values = %d,%d, want 400,800", ep.Double[0].Value, ep.Double[1].Value)
	}
	if ep.Final[0].Value != 0 {
		t.Errorf("final value = %d, want 0", ep.Final[0].Value)
	}
}

func TestParseCustom_HeaderRowSkipped(t *testing.T) {
	data := "round,category,question,answer,isDailyDouble\njeopardy,A,q1,a1,false\n"
	ep, err := ParseCustom(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ep.Jeopardy) != 1 {
		t.Fatalf("want 1 clue, got %d", len(ep.Jeopardy))
	}
}

func TestParseCustom_MalformedAborts(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"short row", "jeopardy,A,q1\n"},
		{"bad round", "finale,A,q1,a1,false\n"},
		{"bad bool", "jeopardy,A,q1,a1,maybe\n"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCustom(strings.NewReader(tc.data)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseCustom_CategoryRunsRestartColumns(t *testing.T) {
	// A category name reused in a different round still starts its own column.
	data := strings.Join([]string{
		`jeopardy,A,q1,a1,false`,
		`double,A,q2,a2,false`,
	}, "\n")
	ep, err := ParseCustom(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ep.Jeopardy[0].Col != 1 || ep.Double[0].Col != 1 {
		t.Errorf("cols = %d,%d, want 1,1", ep.Jeopardy[0].Col, ep.Double[0].Col)
	}
}
