package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

type TestLogHandler struct {
	mu      *sync.Mutex
	records *[]TestLogRecord
	attrs   []slog.Attr
}

type TestLogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

func NewTestLogHandler() *TestLogHandler {
	records := make([]TestLogRecord, 0)
	return &TestLogHandler{
		mu:      &sync.Mutex{},
		records: &records,
	}
}

func (h *TestLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *TestLogHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := make(map[string]any)
	for _, attr := range h.attrs {
		attrs[attr.Key] = attr.Value.Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.Any()
		return true
	})
	*h.records = append(*h.records, TestLogRecord{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})

	return nil
}

func (h *TestLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TestLogHandler{
		mu:      h.mu,
		records: h.records,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

func (h *TestLogHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *TestLogHandler) GetRecords() []TestLogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]TestLogRecord(nil), *h.records...)
}

func (h *TestLogHandler) GetRecordsByLevel(level slog.Level) []TestLogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var filtered []TestLogRecord
	for _, record := range *h.records {
		if record.Level == level {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func (h *TestLogHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = (*h.records)[:0]
}

func (h *TestLogHandler) ContainsMessage(level slog.Level, message string) bool {
	records := h.GetRecordsByLevel(level)
	for _, record := range records {
		if record.Message == message {
			return true
		}
	}
	return false
}

func (h *TestLogHandler) CountByLevel(level slog.Level) int {
	return len(h.GetRecordsByLevel(level))
}

// FindSubstring returns the first record whose message or any string attribute contains needle.
func (h *TestLogHandler) FindSubstring(needle string) (TestLogRecord, bool) {
	for _, record := range h.GetRecords() {
		if strings.Contains(record.Message, needle) {
			return record, true
		}
		for _, v := range record.Attrs {
			if s, ok := v.(string); ok && strings.Contains(s, needle) {
				return record, true
			}
		}
	}
	return TestLogRecord{}, false
}

// Attr returns the attribute of the first record with the given message.
func (h *TestLogHandler) Attr(message, key string) (any, bool) {
	for _, record := range h.GetRecords() {
		if record.Message == message {
			v, ok := record.Attrs[key]
			return v, ok
		}
	}
	return nil, false
}
