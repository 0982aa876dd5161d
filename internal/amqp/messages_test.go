package amqp

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"granaia/internal/core"
)

func TestNewRecordEvent(t *testing.T) {
	id, userID := uuid.New(), uuid.New()
	before := time.Now().UTC()
	e := NewRecordEvent(core.KindExpense, ActionCreated, id, userID)
	after := time.Now().UTC()

	if e.Kind != core.KindExpense || e.Action != ActionCreated {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.ID != id || e.UserID != userID {
		t.Fatalf("identifiers not carried: %+v", e)
	}
	if e.Timestamp.Before(before) || e.Timestamp.After(after) {
		t.Fatalf("timestamp outside call window: %v", e.Timestamp)
	}
}

func TestRecordEventJSONRoundTrip(t *testing.T) {
	e := NewRecordEvent(core.KindIncome, ActionDeleted, uuid.New(), uuid.New())

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Wire field names are part of the contract with consumers
	for _, key := range []string{`"kind"`, `"action"`, `"usuario"`, `"timestamp"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("payload missing %s: %s", key, data)
		}
	}

	got, err := RecordEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != e.Kind || got.Action != e.Action || got.ID != e.ID || got.UserID != e.UserID {
		t.Fatalf("round trip mismatch: %+v != %+v", got, e)
	}
}

func TestRecordEventFromJSONInvalid(t *testing.T) {
	if _, err := RecordEventFromJSON([]byte(`{"id": 12}`)); err == nil {
		t.Fatal("expected error for malformed event")
	}
	if _, err := RecordEventFromJSON([]byte(`not json`)); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}

func TestShouldRequeue(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"transient failure", errors.New("sheets unavailable"), true},
		{"record vanished", core.ErrNotFound, false},
		{"wrapped not found", fmt.Errorf("build row: %w", core.ErrNotFound), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldRequeue(tc.err); got != tc.want {
				t.Fatalf("shouldRequeue(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
