package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDeadline is returned when a deadline is not an ISO-8601 date or
// timestamp.
var ErrInvalidDeadline = errors.New("deadline must be an ISO-8601 timestamp")

// deadlineLayouts are tried in order. Clients send either a full timestamp
// or the bare value of a date input.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// Deadline is an optional point in time. The zero value means no deadline
// and is written as JSON null; null and "" both decode to it.
type Deadline struct {
	time.Time
}

// NewDeadline returns a Deadline at t.
func NewDeadline(t time.Time) Deadline {
	return Deadline{Time: t}
}

// ParseDeadline parses s with any of the accepted layouts. An empty string
// is no deadline.
func ParseDeadline(s string) (Deadline, error) {
	if s == "" {
		return Deadline{}, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Deadline{Time: t}, nil
		}
	}
	return Deadline{}, ErrInvalidDeadline
}

func (d Deadline) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return d.Time.MarshalJSON()
}

func (d *Deadline) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Deadline{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDeadline
	}
	parsed, err := ParseDeadline(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType stores deadlines in the dialect's timestamp column.
func (Deadline) GormDataType() string {
	return "time"
}

func (d Deadline) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *Deadline) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Deadline{}
		return nil
	case time.Time:
		*d = Deadline{Time: v}
		return nil
	case string:
		parsed, err := ParseDeadline(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Deadline", src)
	}
}
