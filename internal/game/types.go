package game

import (
	"github.com/quizwire/trivia-backend/internal/episode"
)

// Round progression is a total order; "end" only cycles back to "jeopardy"
// through an explicit reset/start.
const (
	RoundNone     = ""
	RoundJeopardy = episode.RoundJeopardy
	RoundDouble   = episode.RoundDouble
	RoundFinal    = episode.RoundFinal
	RoundEnd      = "end"
)

// Input bounds. Oversized text is a rejected input, not an error surfaced to
// other clients.
const (
	MaxAnswerLen = 240
	MaxChatLen   = 240
	MaxNameLen   = 32
)

// Player is one roster entry, keyed by the transient connection id. The
// durable client identity lives in Game.clients and is remapped onto a fresh
// transient id on every reconnect.
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Connected      bool   `json:"connected"`
	DisconnectedAt int64  `json:"disconnectedAt,omitempty"` // epoch ms, 0 while connected
}

// ChatEntry is one line of the room log. From is empty for engine-generated
// entries (verdicts, round transitions).
type ChatEntry struct {
	From string `json:"from,omitempty"`
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// Settings are the per-room configuration knobs, persisted alongside state.
type Settings struct {
	MultiCorrect     bool   `json:"multiCorrect"`
	HostClientID     string `json:"hostClientId,omitempty"`
	AutoJudge        bool   `json:"autoJudge"`
	AnswerTimeoutSec int    `json:"answerTimeoutSec"`
	WagerTimeoutSec  int    `json:"wagerTimeoutSec"`
	Pinned           bool   `json:"pinned"`
}

func (s Settings) withDefaults() Settings {
	if s.AnswerTimeoutSec <= 0 {
		s.AnswerTimeoutSec = 30
	}
	if s.WagerTimeoutSec <= 0 {
		s.WagerTimeoutSec = 30
	}
	return s
}

// State is the full session state, private parts included. It marshals whole
// for persistence; clients only ever see the PublicState derived from it.
// All maps are keyed by transient player id.
type State struct {
	Round   string         `json:"round"`
	Players []*Player      `json:"players"`
	Scores  map[string]int `json:"scores"`

	// Board holds the clues remaining in the current round, full text
	// included; cleared clue-by-clue as questions are consumed.
	Board map[string]*episode.Clue `json:"board"`

	CurrentClueID string `json:"currentClueId,omitempty"`
	CurrentValue  int    `json:"currentValue,omitempty"`
	ClueShown     bool   `json:"clueShown,omitempty"` // text revealed (false during a Daily Double wager)
	Revealed      bool   `json:"revealed,omitempty"`  // answer revealed, judging underway

	Picker string `json:"picker,omitempty"`
	Host   string `json:"host,omitempty"`

	CanBuzz  bool `json:"canBuzz"`
	CanNextQ bool `json:"canNextQ"`

	Buzzes       map[string]int64 `json:"buzzes"`
	BuzzOrder    []string         `json:"buzzOrder"` // insertion order, drives the judging cursor
	BuzzUnlockTS int64            `json:"buzzUnlockTs,omitempty"`

	Submitted       map[string]bool   `json:"submitted"`
	Answers         map[string]string `json:"answers"` // private until reveal
	AnswersPublic   map[string]string `json:"answersPublic"`
	Wagers          map[string]int    `json:"wagers"` // private until the cursor reaches the player
	WagersPublic    map[string]int    `json:"wagersPublic"`
	WaitingForWager map[string]bool   `json:"waitingForWager"`

	DailyDoublePlayer string `json:"dailyDoublePlayer,omitempty"`

	// Judges records at most one verdict per player per question; a nil value
	// is a recorded skip.
	Judges      map[string]*bool `json:"judges"`
	JudgeIndex  int              `json:"judgeIndex"` // -1 before judging starts
	JudgeTarget string           `json:"judgeTarget,omitempty"`

	// Absolute deadlines (epoch ms) so timers can be re-armed after a
	// restart; 0 means the timer is not running.
	PlaybackDeadline int64 `json:"playbackDeadline,omitempty"`
	AnswerDeadline   int64 `json:"answerDeadline,omitempty"`
	WagerDeadline    int64 `json:"wagerDeadline,omitempty"`

	AutoJudge           bool `json:"autoJudge"`
	AutoJudgeSuppressed bool `json:"autoJudgeSuppressed,omitempty"` // set by undo until the next question
}

func newState() State {
	return State{
		Round:           RoundNone,
		Players:         []*Player{},
		Scores:          map[string]int{},
		Board:           map[string]*episode.Clue{},
		Buzzes:          map[string]int64{},
		BuzzOrder:       []string{},
		Submitted:       map[string]bool{},
		Answers:         map[string]string{},
		AnswersPublic:   map[string]string{},
		Wagers:          map[string]int{},
		WagersPublic:    map[string]int{},
		WaitingForWager: map[string]bool{},
		Judges:          map[string]*bool{},
		JudgeIndex:      -1,
	}
}

// PublicCell is what clients see of an unplayed board cell. Daily Doubles are
// not marked.
type PublicCell struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

// PublicState is the broadcast view: everything in State except unrevealed
// clue text, the private answer ledger, and unrevealed wagers.
type PublicState struct {
	Round   string         `json:"round"`
	Players []*Player      `json:"players"`
	Scores  map[string]int `json:"scores"`

	Board map[string]PublicCell `json:"board"`

	CurrentClueID string `json:"currentClueId,omitempty"`
	CurrentValue  int    `json:"currentValue,omitempty"`
	Category      string `json:"category,omitempty"`
	Question      string `json:"question,omitempty"` // only once the clue text is shown
	Answer        string `json:"answer,omitempty"`   // only once the answer is revealed

	Picker string `json:"picker,omitempty"`
	Host   string `json:"host,omitempty"`

	CanBuzz  bool `json:"canBuzz"`
	CanNextQ bool `json:"canNextQ"`

	Buzzes       map[string]int64 `json:"buzzes"`
	BuzzOrder    []string         `json:"buzzOrder"`
	BuzzUnlockTS int64            `json:"buzzUnlockTs,omitempty"`

	Submitted       map[string]bool   `json:"submitted"`
	Answers         map[string]string `json:"answers"`
	Wagers          map[string]int    `json:"wagers"`
	WaitingForWager map[string]bool   `json:"waitingForWager"`

	DailyDoublePlayer string `json:"dailyDoublePlayer,omitempty"`

	JudgeIndex  int              `json:"judgeIndex"`
	JudgeTarget string           `json:"judgeTarget,omitempty"`
	Judges      map[string]*bool `json:"judges"`

	PlaybackDeadline int64 `json:"playbackDeadline,omitempty"`
	AnswerDeadline   int64 `json:"answerDeadline,omitempty"`
	WagerDeadline    int64 `json:"wagerDeadline,omitempty"`

	AutoJudge bool `json:"autoJudge"`
}

// CueType identifies a discrete presentation event for clients.
type CueType string

const (
	CuePlayDailyDouble     CueType = "playDailyDouble"
	CuePlayCategoryReveal  CueType = "playCategoryReveal"
	CuePlayTimesUp         CueType = "playTimesUp"
	CuePlayFinalRoundMusic CueType = "playFinalRoundMusic"
	CuePlayClueText        CueType = "playClueText"
	CuePlayMakeSelection   CueType = "playMakeSelectionPrompt"
	CuePlayCorrectSting    CueType = "playCorrectAnswerSting"
)

// Cue is a discrete outbound event; Coord/Text are set for playClueText.
type Cue struct {
	Type  CueType `json:"type"`
	Coord string  `json:"coord,omitempty"`
	Text  string  `json:"text,omitempty"`
}

// Result is one line of the final standings emitted when the game ends.
type Result struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
	Score    int    `json:"score"`
}

// JudgeRequest is a correctness decision for one player on one question.
// Correct nil means "skip": recorded, no score change.
type JudgeRequest struct {
	QuestionID string `json:"questionId"`
	PlayerID   string `json:"playerId"`
	Correct    *bool  `json:"correct"`
}

// BulkJudgeItem pairs a player with a verdict for bulk judging.
type BulkJudgeItem struct {
	PlayerID string `json:"playerId"`
	Correct  *bool  `json:"correct"`
}
