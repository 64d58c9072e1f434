// Package roster is the locally-rendered view of a room: who is present and
// what their flags say. It mutates only in response to relayed events, never
// by inspecting peers directly.
package roster

import (
	"sync"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

// Entry is one participant tile.
type Entry struct {
	ID          domain.ParticipantID
	Name        string
	Audio       bool
	Video       bool
	Host        bool
	Spotlighted bool
	Connected   bool
}

// Roster keeps entries in insertion order and guards them for concurrent
// rendering reads.
type Roster struct {
	mu    sync.RWMutex
	order []domain.ParticipantID
	byID  map[domain.ParticipantID]*Entry
	spot  domain.ParticipantID
	chat  []domain.ChatMessage
}

func New() *Roster {
	return &Roster{byID: make(map[domain.ParticipantID]*Entry)}
}

// Add appends an entry for a joined participant. Re-adding an existing id
// refreshes its flags in place without disturbing order.
func (r *Roster) Add(p domain.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[p.ID]; ok {
		e.Audio, e.Video, e.Host = p.Audio, p.Video, p.Host
		return
	}
	r.byID[p.ID] = &Entry{
		ID:    p.ID,
		Name:  p.DisplayName(),
		Audio: p.Audio,
		Video: p.Video,
		Host:  p.Host,
	}
	r.order = append(r.order, p.ID)
}

// Remove drops the entry for a departed participant. Idempotent.
func (r *Roster) Remove(id domain.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.spot == id {
		r.spot = ""
	}
	return true
}

func (r *Roster) SetAudio(id domain.ParticipantID, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		e.Audio = enabled
	}
}

func (r *Roster) SetVideo(id domain.ParticipantID, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		e.Video = enabled
	}
}

// SetConnected marks the entry's media link state for the tile.
func (r *Roster) SetConnected(id domain.ParticipantID, connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		e.Connected = connected
	}
}

// Spotlight marks one entry as the spotlighted target. At most one entry is
// spotlighted at a time: a new target implicitly un-spotlights the previous
// one. Spotlighting an unknown id clears the spotlight entirely.
func (r *Roster) Spotlight(id domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byID[r.spot]; ok {
		prev.Spotlighted = false
	}
	r.spot = ""
	if e, ok := r.byID[id]; ok {
		e.Spotlighted = true
		r.spot = id
	}
}

// Entries returns a copy of the roster in insertion order.
func (r *Roster) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// AddChat appends to the session's chat log. Transient: lives only as long
// as the session.
func (r *Roster) AddChat(msg domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat = append(r.chat, msg)
}

func (r *Roster) ChatLog() []domain.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ChatMessage, len(r.chat))
	copy(out, r.chat)
	return out
}

// Clear empties the roster and chat when the local participant leaves.
func (r *Roster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.byID = make(map[domain.ParticipantID]*Entry)
	r.spot = ""
	r.chat = nil
}
