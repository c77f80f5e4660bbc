package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quizwire/trivia-backend/internal/episode"
	"github.com/quizwire/trivia-backend/internal/game"
	"github.com/quizwire/trivia-backend/internal/store"
)

// Record is the persisted form of a session: everything needed to bring a
// room back after a restart, timers included (the state carries absolute
// deadlines).
type Record struct {
	RoomID    string            `json:"roomId"`
	CreatedAt time.Time         `json:"createdAt"`
	Chat      []game.ChatEntry  `json:"chat"`
	Clients   map[string]string `json:"clients"`
	State     game.State        `json:"state"`
	Settings  game.Settings     `json:"settings"`
	Episode   *episode.Episode  `json:"episode,omitempty"`
}

// persist snapshots the session and writes it out without blocking the loop.
// A failed write is logged and retried implicitly on the next mutation.
func (s *Session) persist() {
	if s.st == nil {
		return
	}
	rec := Record{
		RoomID:    s.roomID,
		CreatedAt: s.game.CreatedAt(),
		Chat:      s.game.ChatLog(),
		Clients:   s.game.Clients(),
		State:     s.game.StateCopy(),
		Settings:  s.game.Settings(),
		Episode:   s.game.Episode(),
	}
	pinned := rec.Settings.Pinned

	go func() {
		data, err := json.Marshal(rec)
		if err != nil {
			s.log.Error("marshal session record", zap.Error(err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.st.Save(ctx, rec.RoomID, data, pinned); err != nil {
			s.log.Warn("persist session", zap.Error(err))
		}
	}()
}

// LoadRecord fetches and decodes a persisted session record.
func LoadRecord(ctx context.Context, st store.Store, roomID string) (*Record, error) {
	data, err := st.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session record %s: %w", roomID, err)
	}
	return &rec, nil
}
