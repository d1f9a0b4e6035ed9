package stats

import (
	"log/slog"
	"sync"
	"time"
)

type Stage string

const (
	StageConvert Stage = "convert"
	StageMbox    Stage = "mbox"
)

type EventType string

const (
	EventTypeConverted  EventType = "converted"
	EventTypeWarned     EventType = "warned"
	EventTypeFiltered   EventType = "filtered"
	EventTypeFailed     EventType = "failed"
	EventTypeUnreadable EventType = "unreadable"
)

type Event struct {
	Stage  Stage
	Type   EventType
	Path   string
	Err    error
	Detail string
}

type Summary struct {
	Converted  int
	Warned     int
	Filtered   int
	Failed     int
	Unreadable int
	LastError  error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"converted", s.Converted,
		"warned", s.Warned,
		"filtered", s.Filtered,
		"failed", s.Failed,
		"unreadable", s.Unreadable,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Record(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Type {
	case EventTypeConverted:
		c.summary.Converted++
	case EventTypeWarned:
		c.summary.Warned++
	case EventTypeFiltered:
		c.summary.Filtered++
	case EventTypeFailed:
		c.summary.Failed++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	case EventTypeUnreadable:
		c.summary.Unreadable++
	}
}

// Reset zeroes all counters.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.summary = Summary{}
	c.mu.Unlock()
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}

// Reporter logs the collected summary once a run is over.
type Reporter struct {
	*Collector
	logger  *slog.Logger
	started time.Time
}

func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{
		Collector: NewCollector(),
		logger:    logger,
		started:   time.Now(),
	}
}

// Reset zeroes the counters and restarts the duration clock.
func (r *Reporter) Reset() {
	r.Collector.Reset()
	r.started = time.Now()
}

func (r *Reporter) Report() Summary {
	summary := r.Snapshot()
	if r.logger != nil {
		attrs := append(summary.LogAttrs(), "duration", time.Since(r.started))
		r.logger.Info("stats summary", attrs...)
	}
	return summary
}
