package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/pill-ring/internal/dose"
)

func TestFormatPayload(t *testing.T) {
	ts := time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC)
	event := dose.Event{
		Timestamp: ts,
		Type:      dose.EventDoseTaken,
		LastDose:  ts,
		Interval:  24 * time.Hour,
	}

	data, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Pill.Event != "DOSE_TAKEN" {
		t.Errorf("event: got %q, want DOSE_TAKEN", p.Pill.Event)
	}
	if p.Pill.Timestamp != "2026-03-04T08:30:00Z" {
		t.Errorf("timestamp: got %q", p.Pill.Timestamp)
	}
	if p.Pill.LastDose != "2026-03-04T08:30:00Z" {
		t.Errorf("last_dose: got %q", p.Pill.LastDose)
	}
	if p.Pill.IntervalSeconds != 86400 {
		t.Errorf("interval_seconds: got %d, want 86400", p.Pill.IntervalSeconds)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	ts := time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC)

	data, err := FormatSystemPayload(SystemEvent{
		Timestamp: ts,
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	})
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}

	var p SystemPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", p.System.Event)
	}
	if p.System.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", p.System.Reason)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"mode":"OFF"}}`)
	data, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("raw payload not passed through: got %s", data)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()
	ts := time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC)

	event := dose.Event{Timestamp: ts, Type: dose.EventDoseDue, Interval: time.Hour}
	if err := f.Publish(event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(f.Events) != 1 || f.Events[0].Type != dose.EventDoseDue {
		t.Errorf("events: got %v", f.Events)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("payloads: got %d, want 1", len(f.Payloads))
	}

	if err := f.PublishSystem(SystemEvent{Timestamp: ts, Event: "STARTUP"}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	if len(f.SystemEvents) != 1 {
		t.Errorf("system events: got %d, want 1", len(f.SystemEvents))
	}

	f.Reset()
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("Reset did not clear recorded events")
	}
}

func TestRingBufferFIFO(t *testing.T) {
	r := newRingBuffer(3)

	r.push(bufferedMsg{topic: "a"})
	r.push(bufferedMsg{topic: "b"})
	if r.len() != 2 {
		t.Errorf("len: got %d, want 2", r.len())
	}

	msgs := r.drainAll()
	if len(msgs) != 2 || msgs[0].topic != "a" || msgs[1].topic != "b" {
		t.Errorf("drain order wrong: %v", msgs)
	}
	if r.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", r.len())
	}
	if r.drainAll() != nil {
		t.Error("drain of empty buffer should be nil")
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)

	for _, topic := range []string{"a", "b", "c", "d", "e"} {
		r.push(bufferedMsg{topic: topic})
	}
	if r.len() != 3 {
		t.Errorf("len: got %d, want 3", r.len())
	}

	msgs := r.drainAll()
	want := []string{"c", "d", "e"}
	for i, w := range want {
		if msgs[i].topic != w {
			t.Errorf("msg %d: got %q, want %q", i, msgs[i].topic, w)
		}
	}
}

func TestRingBufferWrapAfterDrain(t *testing.T) {
	r := newRingBuffer(2)

	r.push(bufferedMsg{topic: "a"})
	r.drainAll()
	r.push(bufferedMsg{topic: "b"})
	r.push(bufferedMsg{topic: "c"})
	r.push(bufferedMsg{topic: "d"})

	msgs := r.drainAll()
	if len(msgs) != 2 || msgs[0].topic != "c" || msgs[1].topic != "d" {
		t.Errorf("wrap drain wrong: %v", msgs)
	}
}
