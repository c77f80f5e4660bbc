// Package game implements the authoritative session state machine for one
// trivia room: round progression, buzz/answer/wager collection, the
// sequential judging cursor, reconnection-safe identity remapping, and
// snapshot/undo. All mutations must run on the owning session's goroutine;
// timer and auto-judge callbacks re-enter through the Run hook.
package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/quizwire/trivia-backend/internal/analytics"
	"github.com/quizwire/trivia-backend/internal/episode"
	"github.com/quizwire/trivia-backend/internal/judge"
)

var ErrNoEpisode = errors.New("no episode loaded")
var ErrBadCustomData = errors.New("bad custom game data")

// Hooks are the session-provided effect sinks. Run serializes a closure onto
// the session's cooperative loop; the rest publish to connected clients.
// Any nil hook is a no-op (Run defaults to a direct call).
type Hooks struct {
	Run     func(fn func())
	Cue     func(c Cue)
	Chat    func(e ChatEntry)
	Roster  func()
	Results func(r []Result)
}

// Config wires a Game's collaborators.
type Config struct {
	RoomID       string
	Settings     Settings
	Clock        clockwork.Clock
	Log          *zap.Logger
	AutoJudge    judge.Judge         // nil disables automated judging entirely
	Analytics    *analytics.Recorder // nil disables analytics
	JudgeTimeout time.Duration
	// LoadEpisode supplies the default question set when start carries no
	// custom data. Question-source loading itself is an external concern.
	LoadEpisode func() (*episode.Episode, error)
}

// Game is the state machine for one room. Not safe for concurrent use: the
// session container owns it and serializes every entry point.
type Game struct {
	roomID   string
	log      *zap.Logger
	clock    clockwork.Clock
	settings Settings
	episode  *episode.Episode

	state    State
	snapshot *State // one-level undo, captured at answer reveal

	clients   map[string]string // durable client id -> transient id
	chat      []ChatEntry
	createdAt time.Time

	playback timerSlot
	answer   timerSlot
	wager    timerSlot

	autoJudge    judge.Judge
	analytics    *analytics.Recorder
	judgeTimeout time.Duration
	loadEpisode  func() (*episode.Episode, error)

	hooks Hooks
	dirty bool
}

const chatLogCap = 100

func New(cfg Config) *Game {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.JudgeTimeout <= 0 {
		cfg.JudgeTimeout = 15 * time.Second
	}
	g := &Game{
		roomID:       cfg.RoomID,
		log:          cfg.Log,
		clock:        cfg.Clock,
		settings:     cfg.Settings.withDefaults(),
		state:        newState(),
		clients:      map[string]string{},
		createdAt:    cfg.Clock.Now(),
		autoJudge:    cfg.AutoJudge,
		analytics:    cfg.Analytics,
		judgeTimeout: cfg.JudgeTimeout,
		loadEpisode:  cfg.LoadEpisode,
	}
	g.state.AutoJudge = g.settings.AutoJudge
	return g
}

// SetHooks installs the session's effect sinks. Must be called before any
// event is applied.
func (g *Game) SetHooks(h Hooks) { g.hooks = h }

func (g *Game) run(fn func()) {
	if g.hooks.Run != nil {
		g.hooks.Run(fn)
		return
	}
	fn()
}

func (g *Game) emitCue(c Cue) {
	if g.hooks.Cue != nil {
		g.hooks.Cue(c)
	}
}

func (g *Game) emitRoster() {
	if g.hooks.Roster != nil {
		g.hooks.Roster()
	}
}

func (g *Game) now() int64 { return g.clock.Now().UnixMilli() }

func (g *Game) markDirty() { g.dirty = true }

// ConsumeDirty reports whether state changed since the last call. The session
// broadcasts and persists exactly when this flips true.
func (g *Game) ConsumeDirty() bool {
	d := g.dirty
	g.dirty = false
	return d
}

func (g *Game) RoomID() string       { return g.roomID }
func (g *Game) Settings() Settings   { return g.settings }
func (g *Game) CreatedAt() time.Time { return g.createdAt }

// Start begins a new game, replacing any prior one. customData, when
// non-empty, is the tabular import format; a parse failure aborts the start
// and leaves the running game untouched.
func (g *Game) Start(callerID string, settings *Settings, customData string) error {
	if g.state.Host != "" && callerID != "" && callerID != g.state.Host {
		return nil // only the host may start when one is configured
	}
	if settings != nil {
		host := g.settings.HostClientID
		g.settings = settings.withDefaults()
		if g.settings.HostClientID == "" {
			g.settings.HostClientID = host
		}
	}

	var ep *episode.Episode
	var err error
	if customData != "" {
		ep, err = episode.ParseCustom(strings.NewReader(customData))
		if err != nil {
			g.log.Warn("custom game import failed", zap.Error(err))
			return fmt.Errorf("%w: %v", ErrBadCustomData, err)
		}
	} else if g.loadEpisode != nil {
		ep, err = g.loadEpisode()
		if err != nil {
			g.log.Warn("episode load failed", zap.Error(err))
			return err
		}
	}
	if ep == nil {
		return ErrNoEpisode
	}
	g.episode = ep

	// Fresh game state; the roster and identity map carry over.
	players := g.state.Players
	host := g.state.Host
	picker := ""
	g.state = newState()
	g.state.Players = players
	g.state.Host = host
	g.state.Picker = picker
	g.state.AutoJudge = g.settings.AutoJudge
	for _, p := range g.state.Players {
		g.state.Scores[p.ID] = 0
	}
	g.snapshot = nil

	g.systemChat("a new game is starting")
	g.AdvanceRound()
	return nil
}

// AdvanceRound moves jeopardy -> double -> final -> end. Empty boards are
// skipped immediately, which is how filtered custom games with a missing
// round still play through.
func (g *Game) AdvanceRound() {
	for {
		g.resetPerQuestionState()

		var next string
		switch g.state.Round {
		case RoundJeopardy:
			next = RoundDouble
			if !g.settings.MultiCorrect && g.state.Host == "" {
				if id := g.lowestScoreConnected(); id != "" {
					g.state.Picker = id
				}
			}
		case RoundDouble:
			next = RoundFinal
		case RoundFinal:
			g.state.Round = RoundEnd
			g.emitFinalResults()
			g.markDirty()
			return
		default: // pre-game or end: back to the top
			next = RoundJeopardy
		}

		g.state.Round = next
		g.buildBoard(next)
		if len(g.state.Board) == 0 {
			continue
		}
		if next == RoundFinal {
			g.setupFinalRound()
		}
		if g.state.Host != "" {
			g.state.Picker = g.state.Host
		}
		g.markDirty()
		return
	}
}

// resetPerQuestionState clears everything scoped to a single question and
// cancels all three timers so no stale callback can touch the next one.
func (g *Game) resetPerQuestionState() {
	s := &g.state
	s.CurrentClueID = ""
	s.CurrentValue = 0
	s.ClueShown = false
	s.Revealed = false
	s.CanBuzz = false
	s.CanNextQ = false
	s.BuzzUnlockTS = 0
	s.Buzzes = map[string]int64{}
	s.BuzzOrder = []string{}
	s.Submitted = map[string]bool{}
	s.Answers = map[string]string{}
	s.AnswersPublic = map[string]string{}
	s.Wagers = map[string]int{}
	s.WagersPublic = map[string]int{}
	s.WaitingForWager = map[string]bool{}
	s.DailyDoublePlayer = ""
	s.Judges = map[string]*bool{}
	s.JudgeIndex = -1
	s.JudgeTarget = ""
	s.AutoJudgeSuppressed = false
	g.cancelAllTimers()
	if s.Host != "" {
		s.Picker = s.Host
	}
}

// SkipToNext abandons the current question: board cell consumed, round
// advanced if that emptied the board. The escape hatch for a stuck question.
func (g *Game) SkipToNext(callerID string) {
	if g.state.Host != "" && callerID != "" && callerID != g.state.Host {
		return
	}
	if g.state.CurrentClueID == "" {
		return
	}
	g.nextQuestion()
}

func (g *Game) nextQuestion() {
	delete(g.state.Board, g.state.CurrentClueID)
	g.snapshot = nil // undo window closes with the question
	g.resetPerQuestionState()
	if len(g.state.Board) == 0 {
		g.AdvanceRound()
		return
	}
	g.emitCue(Cue{Type: CuePlayMakeSelection})
	g.markDirty()
}

// SetAutoJudge toggles automated judging at runtime.
func (g *Game) SetAutoJudge(callerID string, enabled bool) {
	if g.state.Host != "" && callerID != "" && callerID != g.state.Host {
		return
	}
	g.state.AutoJudge = enabled
	g.markDirty()
}

// SetName updates a player's display name.
func (g *Game) SetName(playerID, name string) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxNameLen {
		return
	}
	p := g.playerByID(playerID)
	if p == nil {
		return
	}
	p.Name = name
	g.emitRoster()
	g.markDirty()
}

// Chat appends a player chat line. Oversized or empty text is dropped.
func (g *Game) Chat(playerID, text string) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > MaxChatLen {
		return
	}
	p := g.playerByID(playerID)
	if p == nil {
		return
	}
	g.appendChat(ChatEntry{From: playerID, Name: p.Name, Text: text, TS: g.now()})
}

func (g *Game) systemChat(text string) {
	g.appendChat(ChatEntry{Text: text, TS: g.now()})
}

func (g *Game) appendChat(e ChatEntry) {
	g.chat = append(g.chat, e)
	if n := len(g.chat); n > chatLogCap {
		g.chat = g.chat[n-chatLogCap:]
	}
	if g.hooks.Chat != nil {
		g.hooks.Chat(e)
	}
	g.markDirty()
}

func (g *Game) emitFinalResults() {
	results := make([]Result, 0, len(g.state.Players))
	for _, p := range g.state.Players { // roster is already score-descending
		results = append(results, Result{PlayerID: p.ID, Name: p.Name, Score: g.state.Scores[p.ID]})
	}
	g.systemChat("game over")
	if g.hooks.Results != nil {
		g.hooks.Results(results)
	}
}

// helpers

func (g *Game) playerByID(id string) *Player {
	for _, p := range g.state.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) playerName(id string) string {
	if p := g.playerByID(id); p != nil && p.Name != "" {
		return p.Name
	}
	return id
}

func (g *Game) connectedCount() int {
	n := 0
	for _, p := range g.state.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// lowestScoreConnected returns the connected player with the lowest score,
// ties broken by roster order.
func (g *Game) lowestScoreConnected() string {
	id := ""
	best := 0
	for _, p := range g.state.Players {
		if !p.Connected {
			continue
		}
		if id == "" || g.state.Scores[p.ID] < best {
			id = p.ID
			best = g.state.Scores[p.ID]
		}
	}
	return id
}

// playersByAscendingScore returns all roster ids lowest score first, ties
// broken by roster order.
func (g *Game) playersByAscendingScore() []string {
	ids := make([]string, 0, len(g.state.Players))
	for _, p := range g.state.Players {
		ids = append(ids, p.ID)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return g.state.Scores[ids[i]] < g.state.Scores[ids[j]]
	})
	return ids
}
