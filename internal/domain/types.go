package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DefaultCategory is used when an entry is recorded without a category
const DefaultCategory = "General"

// Time layouts used when the CLI stamps a new entry
const (
	IDLayout            = "20060102150405"
	DateLayout          = "2006-01-02"
	// TimestampLayout always writes six fractional digits, even when they are all zero
	TimestampLayout     = "2006-01-02T15:04:05.000000"
	FormattedDateLayout = "January 02, 2006"
)

// Entry represents one journal reflection
type Entry struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Learnings     []string `json:"learnings"`
	Date          string   `json:"date,omitempty"`
	Timestamp     string   `json:"timestamp,omitempty"`
	FormattedDate string   `json:"formatted_date,omitempty"`
}

// NewEntry builds an entry stamped with now.
// The id has second granularity, so two entries recorded in the same second share it.
func NewEntry(title, content, category string, learnings []string, now time.Time) Entry {
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}
	if learnings == nil {
		learnings = []string{}
	}

	return Entry{
		ID:            now.Format(IDLayout),
		Title:         title,
		Content:       content,
		Category:      category,
		Learnings:     learnings,
		Date:          now.Format(DateLayout),
		Timestamp:     now.Format(TimestampLayout),
		FormattedDate: now.Format(FormattedDateLayout),
	}
}

// DecodeEntry reads a stored record for display.
// Records written through the HTTP API carry no schema, so fields that are
// missing or hold another JSON type are left empty instead of failing.
func DecodeEntry(raw json.RawMessage) Entry {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Entry{}
	}

	var e Entry
	e.ID, _ = RecordID(raw)
	e.Title = stringField(fields, "title")
	e.Content = stringField(fields, "content")
	e.Category = stringField(fields, "category")
	e.Date = stringField(fields, "date")
	e.Timestamp = stringField(fields, "timestamp")
	e.FormattedDate = stringField(fields, "formatted_date")

	if v, ok := fields["learnings"]; ok {
		var items []any
		if json.Unmarshal(v, &items) == nil {
			for _, item := range items {
				if s, ok := item.(string); ok {
					e.Learnings = append(e.Learnings, s)
				}
			}
		}
	}

	return e
}

// RecordID returns the record's id as a string.
// Numbers keep their literal text so 123 and "123" compare equal; 1e3 stays
// "1e3" and is not normalised to 1000. Booleans become "true" and "false".
func RecordID(raw json.RawMessage) (string, bool) {
	var holder struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &holder); err != nil {
		return "", false
	}
	return scalarString(holder.ID)
}

func stringField(fields map[string]json.RawMessage, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}

func scalarString(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", false
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	default:
		// number or boolean literal
		return string(v), true
	}
}
