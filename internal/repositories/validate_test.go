package repositories_test

import (
	"testing"

	"helpdesk/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestValidateTicketFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr int
	}{
		{"empty set", `{}`, 0},
		{"valid name", `{"ticketName": "Printer broken"}`, 0},
		{"name present but null", `{"ticketName": null}`, 1},
		{"name empty", `{"ticketName": ""}`, 1},
		{"name not a string", `{"ticketName": 5}`, 1},
		{"valid status", `{"status": "in-progress"}`, 0},
		{"invalid status", `{"status": "closed"}`, 1},
		{"invalid priority", `{"priority": "urgent"}`, 1},
		{"numeric priority alias", `{"priority": "2"}`, 0},
		{"numeric priority not a string", `{"priority": 2}`, 1},
		{"empty status", `{"status": ""}`, 1},
		{"null status", `{"status": null}`, 1},
		{"empty priority", `{"priority": ""}`, 1},
		{"deadline timestamp", `{"deadline": "2026-11-01T09:30:00Z"}`, 0},
		{"deadline date only", `{"deadline": "2025-12-01"}`, 0},
		{"deadline empty", `{"deadline": ""}`, 0},
		{"deadline null", `{"deadline": null}`, 0},
		{"deadline not a date", `{"deadline": "soon"}`, 1},
		{"deadline not a string", `{"deadline": 5}`, 1},
		{"all invalid at once", `{"ticketName": "", "status": "done", "priority": "urgent"}`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := repositories.ValidateTicketFields(fields(t, tt.body))
			assert.Len(t, errs, tt.wantErr, "errors: %v", errs)
		})
	}
}
