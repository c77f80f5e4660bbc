// Package hub is the explicit session registry: one actor owning the
// roomID -> session mapping. The transport layer routes connections through
// it; rooms missing from memory are rehydrated from the store.
package hub

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/quizwire/trivia-backend/internal/analytics"
	"github.com/quizwire/trivia-backend/internal/episode"
	"github.com/quizwire/trivia-backend/internal/game"
	"github.com/quizwire/trivia-backend/internal/judge"
	"github.com/quizwire/trivia-backend/internal/session"
	"github.com/quizwire/trivia-backend/internal/store"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code     string
	Settings game.Settings
	Reply    chan *session.Session
}

// GetRoom replies nil when the room is neither live nor persisted.
type GetRoom struct {
	Code  string
	Reply chan *session.Session
}

type RemoveRoom struct {
	Code string
}

type CountRooms struct {
	Reply chan int
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (CountRooms) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Deps are the collaborators handed to every session the hub creates.
type Deps struct {
	Clock        clockwork.Clock
	Log          *zap.Logger
	Store        store.Store
	AutoJudge    judge.Judge
	Analytics    *analytics.Recorder
	JudgeTimeout time.Duration
	LoadEpisode  func() (*episode.Episode, error)
}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	deps     Deps
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, deps Deps) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		deps:     deps,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if s := h.sessions[msg.Code]; s != nil {
					msg.Reply <- s
					break
				}
				s := h.newSession(msg.Code, msg.Settings, nil)
				h.sessions[msg.Code] = s
				msg.Reply <- s

			case GetRoom:
				if s := h.sessions[msg.Code]; s != nil {
					msg.Reply <- s
					break
				}
				msg.Reply <- h.rehydrate(msg.Code)

			case RemoveRoom:
				delete(h.sessions, msg.Code)

			case CountRooms:
				msg.Reply <- len(h.sessions)

			case ShutdownHub:
				for _, s := range h.sessions {
					s.Inbox() <- session.Shutdown{}
				}
				clear(h.sessions)
				h.cancel()
			}
		}
	}
}

func (h *Hub) newSession(code string, settings game.Settings, rec *session.Record) *session.Session {
	return session.New(h.ctx, session.Config{
		RoomID:       code,
		Settings:     settings,
		Clock:        h.deps.Clock,
		Log:          h.deps.Log,
		Store:        h.deps.Store,
		AutoJudge:    h.deps.AutoJudge,
		Analytics:    h.deps.Analytics,
		JudgeTimeout: h.deps.JudgeTimeout,
		LoadEpisode:  h.deps.LoadEpisode,
		Record:       rec,
	})
}

// rehydrate brings a persisted room back to life, timers and all. Returns
// nil when there is nothing to restore.
func (h *Hub) rehydrate(code string) *session.Session {
	if h.deps.Store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(h.ctx, 2*time.Second)
	defer cancel()
	rec, err := session.LoadRecord(ctx, h.deps.Store, code)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.deps.Log.Warn("session rehydration failed", zap.String("room", code), zap.Error(err))
		}
		return nil
	}
	h.deps.Log.Info("rehydrated session", zap.String("room", code))
	s := h.newSession(code, rec.Settings, rec)
	h.sessions[code] = s
	return s
}
