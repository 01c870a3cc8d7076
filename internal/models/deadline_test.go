package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"helpdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadline_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"null", `null`, time.Time{}, false},
		{"empty string", `""`, time.Time{}, false},
		{"date only", `"2025-12-01"`, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), false},
		{"timestamp", `"2025-12-01T09:30:00Z"`, time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC), false},
		{"timestamp with offset", `"2025-12-01T09:30:00+02:00"`, time.Date(2025, 12, 1, 7, 30, 0, 0, time.UTC), false},
		{"datetime-local input", `"2025-12-01T09:30"`, time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC), false},
		{"not a date", `"tomorrow"`, time.Time{}, true},
		{"number", `20251201`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d models.Deadline
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidDeadline)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time), "got %v", d.Time)
		})
	}
}

func TestDeadline_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Deadline models.Deadline `json:"deadline"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"deadline": null}`, string(b))

	b, err = json.Marshal(models.NewDeadline(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2025-12-01T00:00:00Z"`, string(b))
}

func TestDeadline_Scan(t *testing.T) {
	var d models.Deadline
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	at := time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, d.Scan(at))
	assert.True(t, at.Equal(d.Time))

	require.NoError(t, d.Scan([]byte("2025-12-01 09:30:00+00:00")))
	assert.True(t, at.Equal(d.Time))

	v, err := models.Deadline{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
