package game

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Retention for disconnected players: swept after an hour, checked on a
// 30 minute cadence by the session.
const (
	DisconnectRetention = time.Hour
	SweepInterval       = 30 * time.Minute
)

// RegisterConnection binds a durable client identity to a fresh transient
// connection id. A returning client has every id-keyed piece of state
// remapped from its previous transient id; a new client joins the roster.
func (g *Game) RegisterConnection(clientID, transientID, name string) {
	if oldID, seen := g.clients[clientID]; seen {
		g.remapPlayer(oldID, transientID)
		p := g.playerByID(transientID)
		if p == nil {
			// Mapping outlived the roster entry (retention sweep): rejoin.
			p = &Player{ID: transientID}
			g.state.Players = append(g.state.Players, p)
			if _, ok := g.state.Scores[transientID]; !ok {
				g.state.Scores[transientID] = 0
			}
		}
		p.Connected = true
		p.DisconnectedAt = 0
		if name != "" {
			p.Name = name
		}
		g.log.Info("player reconnected", zap.String("player", transientID))
	} else {
		g.state.Players = append(g.state.Players, &Player{ID: transientID, Name: name, Connected: true})
		if _, ok := g.state.Scores[transientID]; !ok {
			g.state.Scores[transientID] = 0
		}
		g.log.Info("player joined", zap.String("player", transientID))
	}
	g.clients[clientID] = transientID

	if g.settings.HostClientID != "" && clientID == g.settings.HostClientID {
		g.state.Host = transientID
	}

	g.sortRoster()
	g.emitRoster()
	g.markDirty()
}

// remapPlayer rewrites every state map keyed by the old transient id. After
// this no map retains the old key.
func (g *Game) remapPlayer(oldID, newID string) {
	if p := g.playerByID(oldID); p != nil {
		p.ID = newID
	}
	moveKey(g.state.Scores, oldID, newID)
	moveKey(g.state.Buzzes, oldID, newID)
	moveKey(g.state.Judges, oldID, newID)
	moveKey(g.state.Submitted, oldID, newID)
	moveKey(g.state.Answers, oldID, newID)
	moveKey(g.state.AnswersPublic, oldID, newID)
	moveKey(g.state.Wagers, oldID, newID)
	moveKey(g.state.WagersPublic, oldID, newID)
	moveKey(g.state.WaitingForWager, oldID, newID)
	for i, id := range g.state.BuzzOrder {
		if id == oldID {
			g.state.BuzzOrder[i] = newID
		}
	}
	if g.state.JudgeTarget == oldID {
		g.state.JudgeTarget = newID
	}
	if g.state.DailyDoublePlayer == oldID {
		g.state.DailyDoublePlayer = newID
	}
	if g.state.Picker == oldID {
		g.state.Picker = newID
	}
	if g.state.Host == oldID {
		g.state.Host = newID
	}
}

func moveKey[V any](m map[string]V, oldID, newID string) {
	if v, ok := m[oldID]; ok {
		delete(m, oldID)
		m[newID] = v
	}
}

// MarkDisconnected soft-deletes a player: flagged and timestamped, state
// kept for the retention window.
func (g *Game) MarkDisconnected(transientID string) {
	p := g.playerByID(transientID)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	p.DisconnectedAt = g.now()
	g.log.Info("player disconnected", zap.String("player", transientID))
	g.emitRoster()
	g.markDirty()
}

// SweepDisconnected evicts players gone longer than the retention window.
// Skipped entirely while nobody is connected, so a server-side outage does
// not empty the roster.
func (g *Game) SweepDisconnected() {
	if g.connectedCount() == 0 {
		return
	}
	cutoff := g.now() - DisconnectRetention.Milliseconds()

	kept := g.state.Players[:0]
	removed := false
	for _, p := range g.state.Players {
		if !p.Connected && p.DisconnectedAt != 0 && p.DisconnectedAt < cutoff {
			removed = true
			delete(g.state.Scores, p.ID)
			for clientID, tid := range g.clients {
				if tid == p.ID {
					delete(g.clients, clientID)
				}
			}
			g.log.Info("evicted idle player", zap.String("player", p.ID))
			continue
		}
		kept = append(kept, p)
	}
	g.state.Players = kept
	if removed {
		g.sortRoster()
		g.emitRoster()
		g.markDirty()
	}
}

// sortRoster keeps the roster in descending score order, stable across equal
// scores.
func (g *Game) sortRoster() {
	sort.SliceStable(g.state.Players, func(i, j int) bool {
		return g.state.Scores[g.state.Players[i].ID] > g.state.Scores[g.state.Players[j].ID]
	})
}
