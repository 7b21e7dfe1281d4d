package model

import (
	"encoding/json"
	"sort"
	"time"
)

// User is a member record served by the Armada backend.
type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Rank           Rank   `json:"rank"`
	Notes          string `json:"notes,omitempty"`
	Events         int64  `json:"events"`
	PrimaryOrg     string `json:"primary_org,omitempty"`
	RSIMember      bool   `json:"rsi_member"`
	BadAffiliation bool   `json:"bad_affiliation"`
}

// Identity is the authenticated admin acting through the console.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank Rank   `json:"rank"`
}

// IsZero reports whether the identity carries no admin id.
func (i Identity) IsZero() bool {
	return i.ID == ""
}

// Repeat controls whether an event recurs.
type Repeat int

const (
	RepeatNone Repeat = iota
	RepeatDaily
	RepeatWeekly
	RepeatMonthly
)

// EventStatus tracks where an event is in its lifecycle.
type EventStatus int

const (
	EventCreated EventStatus = iota
	EventAnnounced
	EventLive
	EventFinished
	EventCancelled
)

// Position is one slot assignment on an event, kept in the order the admin entered it.
type Position struct {
	Key   string
	Value int32
}

// Event is a scheduled activity. Positions are held as an ordered list and only
// become a plain JSON object on the wire.
type Event struct {
	ID          string
	Name        string
	Start       time.Time
	End         time.Time
	Repeat      Repeat
	AutoStart   bool
	Status      EventStatus
	Description string
	Cover       string
	Positions   []Position
}

type eventWire struct {
	ID          string           `json:"_id,omitempty"`
	Name        string           `json:"name"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Repeat      Repeat           `json:"repeat"`
	AutoStart   bool             `json:"auto_start"`
	Status      EventStatus      `json:"status"`
	Description string           `json:"description"`
	Cover       string           `json:"cover,omitempty"`
	Positions   map[string]int32 `json:"positions"`
}

// PositionMap flattens the ordered positions into the key→value object sent to the backend.
// Later duplicates of a key win, matching a plain object assignment.
func PositionMap(positions []Position) map[string]int32 {
	out := make(map[string]int32, len(positions))
	for _, p := range positions {
		out[p.Key] = p.Value
	}
	return out
}

// PositionList expands a key→value object into positions ordered by key.
func PositionList(m map[string]int32) []Position {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Position, 0, len(keys))
	for _, k := range keys {
		out = append(out, Position{Key: k, Value: m[k]})
	}
	return out
}

// MarshalJSON writes the wire form of the event without touching the receiver.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{
		ID:          e.ID,
		Name:        e.Name,
		Start:       e.Start,
		End:         e.End,
		Repeat:      e.Repeat,
		AutoStart:   e.AutoStart,
		Status:      e.Status,
		Description: e.Description,
		Cover:       e.Cover,
		Positions:   PositionMap(e.Positions),
	})
}

// UnmarshalJSON reads the wire form of the event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Event{
		ID:          w.ID,
		Name:        w.Name,
		Start:       w.Start,
		End:         w.End,
		Repeat:      w.Repeat,
		AutoStart:   w.AutoStart,
		Status:      w.Status,
		Description: w.Description,
		Cover:       w.Cover,
		Positions:   PositionList(w.Positions),
	}
	return nil
}

// Clone returns a copy that shares no slice storage with e.
func (e Event) Clone() Event {
	cp := e
	if e.Positions != nil {
		cp.Positions = append([]Position(nil), e.Positions...)
	}
	return cp
}

// UsersResponse is the envelope of the users list and random users endpoints.
type UsersResponse struct {
	Users []User `json:"users"`
}

// EventsResponse is the envelope variant of the events list endpoint.
type EventsResponse struct {
	Events []Event `json:"events"`
}

// BankBalanceResponse is returned by the bank balance endpoint.
type BankBalanceResponse struct {
	Balance int64 `json:"balance"`
}
