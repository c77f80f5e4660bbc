// Package session runs one game room as an actor: a single goroutine owns
// the Game and serializes client events, timer callbacks, and auto-judge
// results onto one inbox. Nothing else ever touches the state, so every
// mutation is atomic from the clients' point of view.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/quizwire/trivia-backend/internal/analytics"
	"github.com/quizwire/trivia-backend/internal/episode"
	"github.com/quizwire/trivia-backend/internal/game"
	"github.com/quizwire/trivia-backend/internal/judge"
	"github.com/quizwire/trivia-backend/internal/store"
	"github.com/quizwire/trivia-backend/pkg/types"
)

type Msg interface{ isSessionMsg() }

// Connect registers a client connection. Reply receives the transient player
// id assigned to it; the durable ClientID is what survives reconnects.
type Connect struct {
	ClientID string
	Name     string
	Outbox   chan types.ServerMessage
	Reply    chan string
}

type Disconnect struct{ PlayerID string }

// FromClient carries one decoded inbound event.
type FromClient struct {
	PlayerID string
	Msg      types.ClientMessage
}

// Run re-enters the loop with a closure; timers and the auto-judge dispatch
// use it so their callbacks run serialized like any other event.
type Run struct{ Fn func() }

// Inspect is a test hook reflecting internal state without data races.
type Inspect struct{ Reply chan game.State }

type Shutdown struct{}

func (Connect) isSessionMsg()    {}
func (Disconnect) isSessionMsg() {}
func (FromClient) isSessionMsg() {}
func (Run) isSessionMsg()        {}
func (Inspect) isSessionMsg()    {}
func (Shutdown) isSessionMsg()   {}

// Config carries the collaborators a session needs.
type Config struct {
	RoomID       string
	Settings     game.Settings
	Clock        clockwork.Clock
	Log          *zap.Logger
	Store        store.Store
	AutoJudge    judge.Judge
	Analytics    *analytics.Recorder
	JudgeTimeout time.Duration
	LoadEpisode  func() (*episode.Episode, error)

	// Record rehydrates a persisted session instead of starting fresh.
	Record *Record
}

// Session is the per-room actor.
type Session struct {
	roomID  string
	inbox   chan Msg
	game    *game.Game
	clients map[string]chan types.ServerMessage
	version int

	st    store.Store
	log   *zap.Logger
	clock clockwork.Clock

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, cfg Config) *Session {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	s := &Session{
		roomID:  cfg.RoomID,
		inbox:   make(chan Msg, 64),
		clients: make(map[string]chan types.ServerMessage),
		st:      cfg.Store,
		log:     cfg.Log.With(zap.String("room", cfg.RoomID)),
		clock:   cfg.Clock,
		ctx:     ctx,
		cancel:  cancel,
	}

	settings := cfg.Settings
	if cfg.Record != nil {
		settings = cfg.Record.Settings
	}
	s.game = game.New(game.Config{
		RoomID:       cfg.RoomID,
		Settings:     settings,
		Clock:        cfg.Clock,
		Log:          s.log,
		AutoJudge:    cfg.AutoJudge,
		Analytics:    cfg.Analytics,
		JudgeTimeout: cfg.JudgeTimeout,
		LoadEpisode:  cfg.LoadEpisode,
	})
	s.game.SetHooks(game.Hooks{
		Run:     s.enqueue,
		Cue:     s.onCue,
		Chat:    s.onChat,
		Roster:  s.onRoster,
		Results: s.onResults,
	})
	if cfg.Record != nil {
		s.game.Restore(cfg.Record.State, cfg.Record.Clients, cfg.Record.Chat, cfg.Record.Episode)
	}

	go s.loop()
	go s.sweepLoop()
	return s
}

// Inbox is where the transport layer and tests send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) RoomID() string { return s.roomID }

// enqueue serializes a closure onto the loop. Called from timer and
// auto-judge goroutines.
func (s *Session) enqueue(fn func()) {
	select {
	case s.inbox <- Run{Fn: fn}:
	case <-s.ctx.Done():
	}
}

func (s *Session) loop() {
	s.flush() // a rehydrated game starts dirty
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return
		case m := <-s.inbox:
			if _, ok := m.(Shutdown); ok {
				s.shutdown()
				return
			}
			s.handle(m)
			s.flush()
		}
	}
}

// flush broadcasts and persists once per mutation batch: the idempotent
// full-state re-send that stands in for exactly-once delivery.
func (s *Session) flush() {
	if !s.game.ConsumeDirty() {
		return
	}
	s.version++
	view := s.game.PublicView()
	s.broadcast(types.ServerMessage{Type: "state", State: &view})
	s.persist()
}

func (s *Session) handle(m Msg) {
	switch msg := m.(type) {
	case Connect:
		playerID := uuid.NewString()
		s.clients[playerID] = msg.Outbox
		s.game.RegisterConnection(msg.ClientID, playerID, msg.Name)
		msg.Reply <- playerID
		s.sendTo(playerID, types.ServerMessage{Type: "welcome", PlayerID: playerID})
		view := s.game.PublicView()
		s.sendTo(playerID, types.ServerMessage{Type: "state", State: &view})
		for _, e := range s.game.ChatLog() {
			entry := e
			s.sendTo(playerID, types.ServerMessage{Type: "chat", Chat: &entry})
		}

	case Disconnect:
		delete(s.clients, msg.PlayerID)
		s.game.MarkDisconnected(msg.PlayerID)

	case FromClient:
		s.apply(msg.PlayerID, msg.Msg)

	case Run:
		msg.Fn()

	case Inspect:
		msg.Reply <- s.game.StateCopy()
	}
}

func (s *Session) apply(playerID string, m types.ClientMessage) {
	switch m.Type {
	case "start":
		if err := s.game.Start(playerID, m.Settings, m.CustomData); err != nil {
			s.sendTo(playerID, types.ServerMessage{Type: "error", Error: err.Error()})
		}
	case "pickQuestion":
		s.game.PickQuestion(playerID, m.Coord)
	case "buzz":
		s.game.Buzz(playerID)
	case "answer":
		s.game.SubmitAnswer(playerID, m.Coord, m.Text)
	case "wager":
		s.game.SubmitWager(playerID, m.AmountString())
	case "judge":
		if m.Judge != nil {
			s.game.JudgeAnswer(playerID, *m.Judge)
		}
	case "bulkJudge":
		s.game.BulkJudge(playerID, m.BulkJudge)
	case "undo":
		s.game.Undo(playerID)
	case "skipToNext":
		s.game.SkipToNext(playerID)
	case "setAutoJudge":
		s.game.SetAutoJudge(playerID, m.Enabled)
	case "setName":
		s.game.SetName(playerID, m.Text)
	case "chat":
		s.game.Chat(playerID, m.Text)
	default:
		s.sendTo(playerID, types.ServerMessage{Type: "error", Error: "unknown type"})
	}
}

func (s *Session) onCue(c game.Cue) {
	cue := c
	s.broadcast(types.ServerMessage{Type: "cue", Cue: &cue})
}

func (s *Session) onChat(e game.ChatEntry) {
	entry := e
	s.broadcast(types.ServerMessage{Type: "chat", Chat: &entry})
}

func (s *Session) onRoster() {
	view := s.game.PublicView()
	s.broadcast(types.ServerMessage{Type: "roster", Players: view.Players})
}

func (s *Session) onResults(r []game.Result) {
	s.broadcast(types.ServerMessage{Type: "results", Results: r})
}

func (s *Session) broadcast(msg types.ServerMessage) {
	for id, ch := range s.clients {
		select {
		case ch <- msg:
		default:
			// Slow or dead client: drop it, the roster keeps the identity.
			close(ch)
			delete(s.clients, id)
			s.game.MarkDisconnected(id)
		}
	}
}

func (s *Session) sendTo(playerID string, msg types.ServerMessage) {
	ch, ok := s.clients[playerID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(s.clients, playerID)
		s.game.MarkDisconnected(playerID)
	}
}

func (s *Session) sweepLoop() {
	ticker := s.clock.NewTicker(game.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.Chan():
			s.enqueue(s.game.SweepDisconnected)
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}
