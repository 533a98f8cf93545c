package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Entry is one decoded JSON log record.
type Entry struct {
	Time      string
	Level     string
	Message   string
	Component string
	EventType string
	TaskID    int64
	Fields    map[string]any
}

var reservedKeys = map[string]struct{}{
	"ts": {}, "level": {}, "msg": {}, "component": {}, "event_type": {},
}

// ParseEntry decodes a JSON log line. ok is false for lines that are not
// JSON objects.
func ParseEntry(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	entry := Entry{
		Time:      stringField(raw, "ts"),
		Level:     strings.ToLower(stringField(raw, "level")),
		Message:   stringField(raw, "msg"),
		Component: stringField(raw, "component"),
		EventType: stringField(raw, "event_type"),
		Fields:    make(map[string]any),
	}
	if v, ok := raw["task_id"].(float64); ok {
		entry.TaskID = int64(v)
	}
	for key, value := range raw {
		if _, skip := reservedKeys[key]; !skip {
			entry.Fields[key] = value
		}
	}
	return entry, true
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// Format renders the entry as a single human-readable line with fields in
// key order.
func (e Entry) Format() string {
	var b strings.Builder
	if e.Time != "" {
		b.WriteString(e.Time)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level))
	if e.Component != "" {
		fmt.Fprintf(&b, "[%s] ", e.Component)
	}
	b.WriteString(e.Message)
	if e.EventType != "" {
		fmt.Fprintf(&b, " event_type=%s", e.EventType)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, formatValue(e.Fields[k]))
	}
	return b.String()
}

func formatValue(v any) any {
	// JSON numbers decode as float64; print integral values without exponent.
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

// Filter narrows tailed lines. The zero Filter matches everything.
type Filter struct {
	EventType string
	MinLevel  string
	TaskID    int64
}

// IsZero reports whether the filter matches every line.
func (f Filter) IsZero() bool {
	return f.EventType == "" && f.MinLevel == "" && f.TaskID == 0
}

// Match reports whether line passes the filter. Lines that are not JSON
// only pass the zero filter.
func (f Filter) Match(line string) bool {
	if f.IsZero() {
		return true
	}
	entry, ok := ParseEntry(line)
	if !ok {
		return false
	}
	if f.EventType != "" && entry.EventType != f.EventType {
		return false
	}
	if f.TaskID != 0 && entry.TaskID != f.TaskID {
		return false
	}
	if f.MinLevel != "" && levelRank(entry.Level) < levelRank(f.MinLevel) {
		return false
	}
	return true
}

// ValidLevel reports whether level names a known severity.
func ValidLevel(level string) bool {
	_, ok := levelRanks[strings.ToLower(strings.TrimSpace(level))]
	return ok
}

var levelRanks = map[string]int{"debug": 0, "info": 1, "warn": 2, "warning": 2, "error": 3}

func levelRank(level string) int {
	if rank, ok := levelRanks[strings.ToLower(strings.TrimSpace(level))]; ok {
		return rank
	}
	return 1
}
