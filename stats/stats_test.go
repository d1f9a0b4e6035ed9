package stats

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Record(t *testing.T) {
	c := NewCollector()
	first := errors.New("first")
	last := errors.New("last")

	c.Record(Event{Stage: StageConvert, Type: EventTypeConverted, Path: "a.eml"})
	c.Record(Event{Stage: StageConvert, Type: EventTypeConverted, Path: "b.eml"})
	c.Record(Event{Stage: StageConvert, Type: EventTypeWarned, Path: "c.txt"})
	c.Record(Event{Stage: StageConvert, Type: EventTypeFiltered, Path: "spam/d.eml"})
	c.Record(Event{Stage: StageConvert, Type: EventTypeFailed, Path: "e.eml", Err: first})
	c.Record(Event{Stage: StageMbox, Type: EventTypeFailed, Path: "f.mbox", Err: last})
	c.Record(Event{Stage: StageConvert, Type: EventTypeUnreadable, Path: "locked"})

	got := c.Snapshot()
	assert.Equal(t, Summary{Converted: 2, Warned: 1, Filtered: 1, Failed: 2, Unreadable: 1, LastError: last}, got)

	c.Reset()
	assert.Equal(t, Summary{}, c.Snapshot())
}

func TestSummary_LogAttrs(t *testing.T) {
	attrs := Summary{Converted: 1}.LogAttrs()
	assert.Equal(t, []any{"converted", 1, "warned", 0, "filtered", 0, "failed", 0, "unreadable", 0}, attrs)

	attrs = Summary{Failed: 1, LastError: errors.New("boom")}.LogAttrs()
	assert.Equal(t, "boom", attrs[len(attrs)-1])
}

func TestReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := NewReporter(logger)
	r.Record(Event{Type: EventTypeConverted})
	summary := r.Report()

	assert.Equal(t, 1, summary.Converted)
	assert.Contains(t, buf.String(), "stats summary")
	assert.Contains(t, buf.String(), "converted=1")
	assert.Contains(t, buf.String(), "duration=")
}
