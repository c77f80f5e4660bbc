package game

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// timerSlot is one cancelable countdown. The generation counter makes
// cancellation exact: a callback that lost the race to a cancel or re-arm
// sees a stale generation inside the serialized Run hook and drops itself.
type timerSlot struct {
	timer clockwork.Timer
	gen   uint64
}

func (g *Game) armTimer(slot *timerSlot, d time.Duration, fire func()) {
	g.cancelTimer(slot)
	if d < 0 {
		d = 0
	}
	slot.gen++
	gen := slot.gen
	slot.timer = g.clock.AfterFunc(d, func() {
		g.run(func() {
			if slot.gen != gen {
				return
			}
			slot.timer = nil
			fire()
		})
	})
}

func (g *Game) cancelTimer(slot *timerSlot) {
	slot.gen++
	if slot.timer != nil {
		slot.timer.Stop()
		slot.timer = nil
	}
}

func (g *Game) cancelAllTimers() {
	g.cancelTimer(&g.playback)
	g.state.PlaybackDeadline = 0
	g.cancelTimer(&g.answer)
	g.state.AnswerDeadline = 0
	g.cancelTimer(&g.wager)
	g.state.WagerDeadline = 0
}

func (g *Game) startPlaybackTimer(text string) {
	d := readTime(text)
	g.state.PlaybackDeadline = g.now() + d.Milliseconds()
	g.armTimer(&g.playback, d, g.onPlaybackExpired)
}

func (g *Game) startAnswerTimer() {
	d := time.Duration(g.settings.AnswerTimeoutSec) * time.Second
	g.state.AnswerDeadline = g.now() + d.Milliseconds()
	g.armTimer(&g.answer, d, g.onAnswerExpired)
}

func (g *Game) startWagerTimer() {
	d := time.Duration(g.settings.WagerTimeoutSec) * time.Second
	g.state.WagerDeadline = g.now() + d.Milliseconds()
	g.armTimer(&g.wager, d, g.onWagerExpired)
}

// onPlaybackExpired fires when the simulated clue reading finishes: buzzing
// unlocks, except in the Final round and Daily Doubles where the answer
// window opens directly for the already-buzzed players.
func (g *Game) onPlaybackExpired() {
	g.state.PlaybackDeadline = 0
	if g.state.CurrentClueID == "" {
		return
	}
	if g.state.Round != RoundFinal && g.state.DailyDoublePlayer == "" {
		g.state.CanBuzz = true
		g.state.BuzzUnlockTS = g.now()
	}
	g.startAnswerTimer()
	g.markDirty()
}

func (g *Game) onAnswerExpired() {
	g.state.AnswerDeadline = 0
	g.emitCue(Cue{Type: CuePlayTimesUp})
	g.markDirty()
	g.RevealAnswer()
}

// onWagerExpired force-submits a zero wager for everyone still owing one,
// then lets the clue proceed.
func (g *Game) onWagerExpired() {
	g.state.WagerDeadline = 0
	for id := range g.state.WaitingForWager {
		g.state.Wagers[id] = 0
		delete(g.state.WaitingForWager, id)
	}
	g.markDirty()
	g.triggerClue()
}

// RearmTimers reconstructs timers from persisted absolute deadlines after a
// restart. Deadlines already in the past fire on the next loop turn.
func (g *Game) RearmTimers() {
	now := g.now()
	if d := g.state.PlaybackDeadline; d != 0 {
		g.armTimer(&g.playback, time.Duration(d-now)*time.Millisecond, g.onPlaybackExpired)
	}
	if d := g.state.AnswerDeadline; d != 0 {
		g.armTimer(&g.answer, time.Duration(d-now)*time.Millisecond, g.onAnswerExpired)
	}
	if d := g.state.WagerDeadline; d != 0 {
		g.armTimer(&g.wager, time.Duration(d-now)*time.Millisecond, g.onWagerExpired)
	}
}
