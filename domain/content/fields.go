package content

import (
	"encoding/json"

	"github.com/jmoiron/sqlx/types"

	"github.com/tirzah-studio/site-api/pkg/logger"
)

// Entry is one titled paragraph of a portfolio item (a service offered,
// an achievement).
type Entry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Stats are display figures such as "10K+" visits.
type Stats struct {
	Visits string `json:"visits"`
	Users  string `json:"users"`
}

// Field is a decoded JSON form value and how it was submitted.
type Field[T any] struct {
	State State
	Value T
}

// JSONValue decodes key as JSON into T. A literal null counts as cleared.
// Malformed input is reported as Malformed and logged; it never fails the
// request.
func JSONValue[T any](f *Form, key string, log logger.Logger) Field[T] {
	raw, st := f.Text(key)
	if st != Set {
		return Field[T]{State: st}
	}
	if raw == "null" {
		return Field[T]{State: Cleared}
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		log.Warn("Ignoring malformed JSON field", logger.String("field", key), logger.Err(err))
		return Field[T]{State: Malformed}
	}
	return Field[T]{State: Set, Value: v}
}

// Resolve applies update semantics: a value replaces, cleared resets to
// the zero value, absent and malformed keep current.
func (fld Field[T]) Resolve(current T) T {
	switch fld.State {
	case Set:
		return fld.Value
	case Cleared:
		var zero T
		return zero
	}
	return current
}

// EntriesColumn encodes entries for a nullable jsonb column.
func EntriesColumn(entries []Entry) types.NullJSONText {
	if entries == nil {
		return types.NullJSONText{}
	}
	b, _ := json.Marshal(entries)
	return types.NullJSONText{JSONText: b, Valid: true}
}

// StatsColumn encodes stats for a nullable jsonb column.
func StatsColumn(stats *Stats) types.NullJSONText {
	if stats == nil {
		return types.NullJSONText{}
	}
	b, _ := json.Marshal(stats)
	return types.NullJSONText{JSONText: b, Valid: true}
}

func ParseEntries(col types.NullJSONText) ([]Entry, error) {
	if !col.Valid {
		return nil, nil
	}
	var entries []Entry
	if err := col.Unmarshal(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func ParseStats(col types.NullJSONText) (*Stats, error) {
	if !col.Valid {
		return nil, nil
	}
	var stats Stats
	if err := col.Unmarshal(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
