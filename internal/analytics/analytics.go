// Package analytics counts automated-judging outcomes and optionally records
// each decision to Postgres. The counters are the only judging history the
// engine keeps; recording never blocks gameplay.
package analytics

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Outcome classifies what happened to an automated verdict.
const (
	OutcomeApplied    = "applied"     // flowed through JudgeAnswer and changed state
	OutcomeLate       = "late"        // arrived after the cursor moved on; recorded only
	OutcomeShortcut   = "shortcut"    // resolved locally without the collaborator
	OutcomeNoDecision = "no_decision" // collaborator failed or timed out
)

// Decision is one automated-judging result.
type Decision struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	RoomID     string `gorm:"index" json:"roomId"`
	QuestionID string `json:"questionId"`
	PlayerID   string `json:"playerId"`
	Response   string `json:"response"`
	Correct    *bool  `json:"correct"`
	Outcome    string `json:"outcome"`
	CreatedAt  time.Time
}

// Counters is the snapshot exposed on the stats surface.
type Counters struct {
	Dispatched uint64 `json:"dispatched"`
	Applied    uint64 `json:"applied"`
	Late       uint64 `json:"late"`
	Shortcut   uint64 `json:"shortcut"`
	NoDecision uint64 `json:"noDecision"`
}

// Recorder keeps in-memory counters and, when a DB is configured, persists
// decisions asynchronously.
type Recorder struct {
	mu       sync.Mutex
	counters Counters
	db       *gorm.DB
	log      *zap.Logger
}

// New builds a Recorder. db may be nil, in which case only counters are kept.
func New(db *gorm.DB, log *zap.Logger) (*Recorder, error) {
	if db != nil {
		if err := db.AutoMigrate(&Decision{}); err != nil {
			return nil, err
		}
	}
	return &Recorder{db: db, log: log}, nil
}

// Dispatched counts an outgoing collaborator request.
func (r *Recorder) Dispatched() {
	r.mu.Lock()
	r.counters.Dispatched++
	r.mu.Unlock()
}

// Record tallies a decision and writes it through when a DB is configured.
func (r *Recorder) Record(d Decision) {
	r.mu.Lock()
	switch d.Outcome {
	case OutcomeApplied:
		r.counters.Applied++
	case OutcomeLate:
		r.counters.Late++
	case OutcomeShortcut:
		r.counters.Shortcut++
	case OutcomeNoDecision:
		r.counters.NoDecision++
	}
	db := r.db
	r.mu.Unlock()

	if db == nil {
		return
	}
	go func() {
		if err := db.Create(&d).Error; err != nil {
			r.log.Warn("failed to persist judge decision",
				zap.String("room", d.RoomID), zap.Error(err))
		}
	}()
}

// Counters returns a snapshot of the in-memory tallies.
func (r *Recorder) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}
