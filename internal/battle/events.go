package battle

import (
	"fmt"
	"strings"
)

// Event is one entry of the battle's canonical audit trail.
type Event struct {
	Tick     int
	Unit     string  // unit name, or "--" for battle-level events
	Side     string  // "red", "blue", or "--"
	Category string  // phase, order, courier, move, vision, combat, shock, morale, gocode, contingency, outcome
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the event as a fixed-width log line.
//
//	[T=0042] 1st Foot   combat    exchange         6 vs 4 casualties
func (e Event) String() string {
	return fmt.Sprintf("[T=%04d] %-12s %-12s %-20s %s",
		e.Tick, e.Unit, e.Category, e.Key, e.Value)
}

// EventLog is the ordered, tick-tagged, append-only record of everything
// notable that happened during a battle. It is never truncated or
// reordered; the formatted log doubles as the determinism fingerprint.
type EventLog struct {
	entries []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Add appends an event.
func (l *EventLog) Add(tick int, unit, side, category, key, value string, numVal float64) {
	l.entries = append(l.entries, Event{
		Tick:     tick,
		Unit:     unit,
		Side:     side,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Entries returns all recorded events in order.
func (l *EventLog) Entries() []Event {
	return l.entries
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	return len(l.entries)
}

// Filter returns events matching the given category and/or key.
// Pass empty string to match any value for that field.
func (l *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns events for a specific unit name.
func (l *EventLog) FilterUnit(name string) []Event {
	var out []Event
	for _, e := range l.entries {
		if e.Unit == name {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns events within [fromTick, toTick] inclusive.
func (l *EventLog) FilterTickRange(fromTick, toTick int) []Event {
	var out []Event
	for _, e := range l.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events match the given category and key.
func (l *EventLog) Count(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the most recent event matching category+key, or false.
func (l *EventLog) LastOf(category, key string) (Event, bool) {
	matches := l.Filter(category, key)
	if len(matches) == 0 {
		return Event{}, false
	}
	return matches[len(matches)-1], true
}

// Has reports whether at least one event matches category, key, and value
// substring.
func (l *EventLog) Has(category, key, valueSubstr string) bool {
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string.
func (l *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (l *EventLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range l.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
