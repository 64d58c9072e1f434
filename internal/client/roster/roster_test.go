package roster

import (
	"testing"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

func TestRoster(t *testing.T) {
	t.Run("entries keep insertion order", func(t *testing.T) {
		r := New()
		for _, id := range []domain.ParticipantID{"charlie-1", "alice-2", "bob-3"} {
			r.Add(*domain.NewParticipant(id))
		}
		got := r.Entries()
		if len(got) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(got))
		}
		for i, want := range []domain.ParticipantID{"charlie-1", "alice-2", "bob-3"} {
			if got[i].ID != want {
				t.Fatalf("order[%d] = %s, want %s", i, got[i].ID, want)
			}
		}
	})

	t.Run("display name derives from the id prefix", func(t *testing.T) {
		r := New()
		r.Add(*domain.NewParticipant("abcdef-123456"))
		if got := r.Entries()[0].Name; got != "User abcde" {
			t.Fatalf("name = %q", got)
		}
	})

	t.Run("new entries default to enabled flags", func(t *testing.T) {
		r := New()
		r.Add(*domain.NewParticipant("alice"))
		e := r.Entries()[0]
		if !e.Audio || !e.Video {
			t.Fatalf("defaults audio=%v video=%v", e.Audio, e.Video)
		}
	})

	t.Run("toggles update the named entry only", func(t *testing.T) {
		r := New()
		r.Add(*domain.NewParticipant("alice"))
		r.Add(*domain.NewParticipant("bob"))

		r.SetAudio("alice", false)
		r.SetVideo("bob", false)

		entries := r.Entries()
		if entries[0].Audio || !entries[0].Video {
			t.Fatalf("alice flags audio=%v video=%v", entries[0].Audio, entries[0].Video)
		}
		if !entries[1].Audio || entries[1].Video {
			t.Fatalf("bob flags audio=%v video=%v", entries[1].Audio, entries[1].Video)
		}

		// Unknown ids are ignored.
		r.SetAudio("ghost", false)
	})

	t.Run("at most one entry is spotlighted", func(t *testing.T) {
		r := New()
		r.Add(*domain.NewParticipant("alice"))
		r.Add(*domain.NewParticipant("bob"))

		r.Spotlight("alice")
		r.Spotlight("bob")

		spotted := 0
		for _, e := range r.Entries() {
			if e.Spotlighted {
				spotted++
				if e.ID != "bob" {
					t.Fatalf("spotlight on %s, want bob", e.ID)
				}
			}
		}
		if spotted != 1 {
			t.Fatalf("expected exactly one spotlighted entry, got %d", spotted)
		}
	})

	t.Run("removing the spotlighted entry clears the spotlight", func(t *testing.T) {
		r := New()
		r.Add(*domain.NewParticipant("alice"))
		r.Add(*domain.NewParticipant("bob"))
		r.Spotlight("alice")

		if !r.Remove("alice") {
			t.Fatal("remove must report the entry existed")
		}
		if r.Remove("alice") {
			t.Fatal("second remove must be a no-op")
		}
		for _, e := range r.Entries() {
			if e.Spotlighted {
				t.Fatalf("stale spotlight on %s", e.ID)
			}
		}
	})

	t.Run("chat log appends in order and clears with the roster", func(t *testing.T) {
		r := New()
		r.AddChat(domain.ChatMessage{Sender: "alice", Content: "hi", Timestamp: 1})
		r.AddChat(domain.ChatMessage{Sender: "bob", Content: "hey", Timestamp: 2})

		msgs := r.ChatLog()
		if len(msgs) != 2 || msgs[0].Content != "hi" || msgs[1].Content != "hey" {
			t.Fatalf("chat log %+v", msgs)
		}

		r.Clear()
		if r.Len() != 0 || len(r.ChatLog()) != 0 {
			t.Fatal("clear must empty roster and chat")
		}
	})
}
