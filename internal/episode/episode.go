package episode

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrEmptyEpisode = errors.New("episode has no clues")
var ErrBadRound = errors.New("unknown round name")

// Round names match the wire format used by clients.
const (
	RoundJeopardy = "jeopardy"
	RoundDouble   = "double"
	RoundFinal    = "final"
)

// Clue is a single board cell. Col/Row are 1-based board coordinates
// within the clue's round; Value is the dollar amount at stake.
type Clue struct {
	Round       string `json:"round"`
	Category    string `json:"category"`
	Col         int    `json:"col"`
	Row         int    `json:"row"`
	Value       int    `json:"value"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	DailyDouble bool   `json:"dailyDouble"`
}

// CoordID is the board key for a clue, e.g. "2_3" for column 2, row 3.
func (c Clue) CoordID() string {
	return fmt.Sprintf("%d_%d", c.Col, c.Row)
}

// Episode holds the clue sets for the three playable rounds.
type Episode struct {
	Jeopardy []Clue `json:"jeopardy"`
	Double   []Clue `json:"double"`
	Final    []Clue `json:"final"`
}

// CluesFor returns the clue list for a round name, or nil for any other round.
func (e *Episode) CluesFor(round string) []Clue {
	switch round {
	case RoundJeopardy:
		return e.Jeopardy
	case RoundDouble:
		return e.Double
	case RoundFinal:
		return e.Final
	}
	return nil
}

func roundMultiplier(round string) (int, error) {
	switch round {
	case RoundJeopardy:
		return 1, nil
	case RoundDouble:
		return 2, nil
	case RoundFinal:
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadRound, round)
}

// ParseCustom reads the custom-game import format: CSV rows of
// round, category, question, answer, isDailyDouble. Contiguous runs of the
// same (round, category) pair become one board column; the row index within
// a run scales the clue value (200 x row x round multiplier). A header row
// starting with "round" is tolerated and skipped. Any malformed row aborts
// the whole import so a half-loaded board never replaces a working one.
func ParseCustom(r io.Reader) (*Episode, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	ep := &Episode{}
	cols := map[string]int{}     // round -> highest column assigned so far
	rows := map[string]int{}     // round -> row cursor within the current run
	var runRound, runCategory string

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("custom data line %d: %w", line, err)
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("custom data line %d: want 5 columns, got %d", line, len(rec))
		}
		round := strings.ToLower(strings.TrimSpace(rec[0]))
		if line == 1 && round == "round" {
			continue // header
		}
		mult, err := roundMultiplier(round)
		if err != nil {
			return nil, fmt.Errorf("custom data line %d: %w", line, err)
		}
		category := strings.TrimSpace(rec[1])
		dd, err := strconv.ParseBool(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("custom data line %d: bad isDailyDouble: %w", line, err)
		}

		if round != runRound || category != runCategory {
			runRound, runCategory = round, category
			cols[round]++
			rows[round] = 0
		}
		rows[round]++

		clue := Clue{
			Round:       round,
			Category:    category,
			Col:         cols[round],
			Row:         rows[round],
			Value:       200 * rows[round] * mult,
			Question:    strings.TrimSpace(rec[2]),
			Answer:      strings.TrimSpace(rec[3]),
			DailyDouble: dd,
		}
		switch round {
		case RoundJeopardy:
			ep.Jeopardy = append(ep.Jeopardy, clue)
		case RoundDouble:
			ep.Double = append(ep.Double, clue)
		case RoundFinal:
			ep.Final = append(ep.Final, clue)
		}
	}

	if len(ep.Jeopardy)+len(ep.Double)+len(ep.Final) == 0 {
		return nil, ErrEmptyEpisode
	}
	return ep, nil
}
