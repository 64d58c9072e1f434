package domain

// DisplayNamePrefixLen is how many id characters feed the rendered name.
// Purely cosmetic, no uniqueness guarantee.
const DisplayNamePrefixLen = 5

// Participant is a member of at most one room. Audio/Video/Host are
// locally-known display attributes, mutated only by relayed events.
type Participant struct {
	ID    ParticipantID `json:"id"`
	Audio bool          `json:"audioEnabled"`
	Video bool          `json:"videoEnabled"`
	Host  bool          `json:"isHost"`
}

// NewParticipant avoids raw literals in adapters and keeps defaults obvious:
// a freshly joined participant has audio and video enabled.
func NewParticipant(id ParticipantID) *Participant {
	return &Participant{ID: id, Audio: true, Video: true}
}

// DisplayName derives the rendered name from the id prefix.
func (p Participant) DisplayName() string {
	return "User " + shortID(p.ID)
}

func shortID(id ParticipantID) string {
	s := string(id)
	if len(s) > DisplayNamePrefixLen {
		s = s[:DisplayNamePrefixLen]
	}
	return s
}
