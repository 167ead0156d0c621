package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Slot names a piece of vehicle information the assistant asks for.
type Slot string

const (
	SlotNone       Slot = ""
	SlotVehicleAge Slot = "vehicle_age"
	SlotHorsepower Slot = "horsepower"
	SlotCoverage   Slot = "coverage_level"
)

// Draft holds the premium inputs collected so far. City may stay empty; it
// defaults when the draft is priced.
type Draft struct {
	VehicleAge *int     `json:"vehicle_age,omitempty"`
	Horsepower *int     `json:"horsepower,omitempty"`
	City       string   `json:"city,omitempty"`
	Coverage   Coverage `json:"coverage_level,omitempty"`
}

// Missing returns the first required slot that is still empty, in asking order.
func (d Draft) Missing() Slot {
	switch {
	case d.VehicleAge == nil:
		return SlotVehicleAge
	case d.Horsepower == nil:
		return SlotHorsepower
	case d.Coverage == "":
		return SlotCoverage
	}
	return SlotNone
}

// Clone returns a copy that shares no pointers with d.
func (d Draft) Clone() Draft {
	out := d
	if d.VehicleAge != nil {
		out.VehicleAge = Int(*d.VehicleAge)
	}
	if d.Horsepower != nil {
		out.Horsepower = Int(*d.Horsepower)
	}
	return out
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// Vehicle is the description behind the most recent quote.
type Vehicle struct {
	Age        int    `json:"age"`
	Horsepower int    `json:"horsepower"`
	City       string `json:"city"`
}

// DraftFor returns a draft prefilled with the vehicle's facts.
func (v Vehicle) DraftFor(c Coverage) Draft {
	return Draft{
		VehicleAge: Int(v.Age),
		Horsepower: Int(v.Horsepower),
		City:       v.City,
		Coverage:   c,
	}
}

// StateKind discriminates the dialogue states in persisted form.
type StateKind string

const (
	KindIdle               StateKind = "idle"
	KindCollecting         StateKind = "collecting"
	KindAwaitingComparison StateKind = "awaiting_comparison"
)

// State is one of Idle, Collecting or AwaitingComparison. A session is in
// exactly one state, so a draft and a comparison offer never coexist.
type State interface {
	Kind() StateKind
}

// Idle means no premium conversation is in progress.
type Idle struct{}

// Collecting means a draft is being filled. Pending is the slot asked about
// in the previous reply, if any. FirstTurn is set on the turn that opened
// the draft.
type Collecting struct {
	Draft     Draft
	Pending   Slot
	FirstTurn bool
}

// AwaitingComparison means a quote was given and the customer was offered
// quotes for Options.
type AwaitingComparison struct {
	Options []Coverage
}

func (Idle) Kind() StateKind               { return KindIdle }
func (Collecting) Kind() StateKind         { return KindCollecting }
func (AwaitingComparison) Kind() StateKind { return KindAwaitingComparison }

// MaxTranscript bounds the stored conversation.
const MaxTranscript = 200

// Session is the per-customer conversation state.
type Session struct {
	Key         string
	State       State
	LastVehicle *Vehicle
	Compared    CoverageSet
	Transcript  []Message
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession returns an idle session.
func NewSession(key string, now time.Time) *Session {
	return &Session{
		Key:       key,
		State:     Idle{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	out := *s
	switch st := s.State.(type) {
	case Collecting:
		st.Draft = st.Draft.Clone()
		out.State = st
	case AwaitingComparison:
		out.State = AwaitingComparison{Options: append([]Coverage(nil), st.Options...)}
	case nil:
		out.State = Idle{}
	}
	if s.LastVehicle != nil {
		v := *s.LastVehicle
		out.LastVehicle = &v
	}
	out.Transcript = append([]Message(nil), s.Transcript...)
	return &out
}

// ForgetVehicle drops everything known about the current vehicle: the
// draft, any pending offer, the last quoted vehicle and the tiers compared.
func (s *Session) ForgetVehicle() {
	s.State = Idle{}
	s.LastVehicle = nil
	s.Compared = 0
}

// Append records a message, discarding the oldest beyond MaxTranscript.
func (s *Session) Append(role Role, content string, at time.Time) {
	s.Transcript = append(s.Transcript, Message{Role: role, Content: content, At: at})
	if over := len(s.Transcript) - MaxTranscript; over > 0 {
		s.Transcript = append([]Message(nil), s.Transcript[over:]...)
	}
}

// History returns the last n messages.
func (s *Session) History(n int) []Message {
	if n <= 0 {
		return nil
	}
	if n >= len(s.Transcript) {
		return append([]Message(nil), s.Transcript...)
	}
	return append([]Message(nil), s.Transcript[len(s.Transcript)-n:]...)
}

type stateJSON struct {
	Kind      StateKind  `json:"kind"`
	Draft     *Draft     `json:"draft,omitempty"`
	Pending   Slot       `json:"pending,omitempty"`
	FirstTurn bool       `json:"first_turn,omitempty"`
	Options   []Coverage `json:"options,omitempty"`
}

type sessionJSON struct {
	Key         string      `json:"key"`
	State       stateJSON   `json:"state"`
	LastVehicle *Vehicle    `json:"last_vehicle,omitempty"`
	Compared    CoverageSet `json:"compared"`
	Transcript  []Message   `json:"transcript"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// MarshalJSON encodes the session with a tagged state.
func (s *Session) MarshalJSON() ([]byte, error) {
	st := stateJSON{Kind: KindIdle}
	switch v := s.State.(type) {
	case Collecting:
		d := v.Draft
		st = stateJSON{Kind: KindCollecting, Draft: &d, Pending: v.Pending, FirstTurn: v.FirstTurn}
	case AwaitingComparison:
		st = stateJSON{Kind: KindAwaitingComparison, Options: v.Options}
	}
	return json.Marshal(sessionJSON{
		Key:         s.Key,
		State:       st,
		LastVehicle: s.LastVehicle,
		Compared:    s.Compared,
		Transcript:  s.Transcript,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	})
}

// UnmarshalJSON decodes a session written by MarshalJSON.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var state State
	switch raw.State.Kind {
	case KindIdle, "":
		state = Idle{}
	case KindCollecting:
		c := Collecting{Pending: raw.State.Pending, FirstTurn: raw.State.FirstTurn}
		if raw.State.Draft != nil {
			c.Draft = *raw.State.Draft
		}
		state = c
	case KindAwaitingComparison:
		if len(raw.State.Options) == 0 {
			return fmt.Errorf("awaiting comparison without options")
		}
		state = AwaitingComparison{Options: raw.State.Options}
	default:
		return fmt.Errorf("unknown state kind %q", raw.State.Kind)
	}

	*s = Session{
		Key:         raw.Key,
		State:       state,
		LastVehicle: raw.LastVehicle,
		Compared:    raw.Compared,
		Transcript:  raw.Transcript,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
	return nil
}
