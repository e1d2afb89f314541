package reconcile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawItem is one opaque entry read from a log stream. Payload is either a
// string (possibly double-JSON-encoded) or an already-decoded object; the
// normalizer sorts out which.
type RawItem struct {
	Source     Source
	ReceivedAt time.Time
	Payload    interface{}
}

// Normalize converts one raw log item into a canonical Event. It returns
// false for anything unparseable — including a missing or non-numeric
// client id — and never panics or errors on malformed input; a bad log
// line is an expected condition, not a failure.
func Normalize(item RawItem) (*Event, bool) {
	obj, ok := unwrapPayload(item.Payload)
	if !ok {
		return nil, false
	}

	clientID, ok := extractClientID(obj)
	if !ok {
		return nil, false
	}

	event := &Event{
		ClientID:      clientID,
		Source:        item.Source,
		ReceivedAt:    item.ReceivedAt,
		VisitDatetime: timeField(obj, datetimePaths),
		VisitID:       int64Field(obj, visitIDPaths),
		StaffName:     stringField(obj, staffNamePaths),
		StaffID:       int64Field(obj, staffIDPaths),
		Services:      extractServices(obj),
		AttendanceRaw: intField(obj, attendancePaths),
		Visits:        intField(obj, visitsPaths),
		Status:        extractStatus(obj),
		Raw:           obj,
	}

	return event, true
}

// NormalizeBatch normalizes a slice of raw items, silently dropping the
// unparseable ones. The dropped count is returned for observability; a
// malformed item never aborts the batch.
func NormalizeBatch(items []RawItem) ([]Event, int) {
	events := make([]Event, 0, len(items))
	dropped := 0

	for _, item := range items {
		event, ok := Normalize(item)
		if !ok {
			dropped++
			continue
		}
		events = append(events, *event)
	}

	return events, dropped
}

// Legacy field paths, oldest shape last. Several historical writers stored
// the same fact under different keys; the first path that yields a value
// wins.
var (
	clientIDPaths = [][]string{
		{"clientId"},
		{"data", "client", "id"},
		{"data", "client_id"},
	}
	datetimePaths = [][]string{
		{"datetime"},
		{"data", "datetime"},
		{"data", "date"},
	}
	visitIDPaths = [][]string{
		{"visitId"},
		{"data", "visit_id"},
		{"data", "record_id"},
	}
	staffNamePaths = [][]string{
		{"staffName"},
		{"data", "staff", "name"},
		{"data", "staff_name"},
	}
	staffIDPaths = [][]string{
		{"staffId"},
		{"data", "staff", "id"},
		{"data", "staff_id"},
	}
	attendancePaths = [][]string{
		{"attendance"},
		{"data", "attendance"},
		{"data", "visit_attendance"},
	}
	servicesPaths = [][]string{
		{"services"},
		{"data", "services"},
	}
	statusPaths = [][]string{
		{"status"},
		{"data", "status"},
	}
	visitsPaths = [][]string{
		{"visits"},
		{"data", "client", "visits"},
		{"data", "visits"},
	}
)

func extractClientID(obj map[string]interface{}) (int64, bool) {
	id := int64Field(obj, clientIDPaths)
	if id == nil || *id <= 0 {
		return 0, false
	}
	return *id, true
}

func extractStatus(obj map[string]interface{}) Status {
	s := stringField(obj, statusPaths)
	if s == nil {
		return StatusUnknown
	}
	switch strings.ToLower(strings.TrimSpace(*s)) {
	case "create", "created":
		return StatusCreate
	case "update", "updated":
		return StatusUpdate
	case "delete", "deleted":
		return StatusDelete
	default:
		return StatusUnknown
	}
}

func extractServices(obj map[string]interface{}) []ServiceLine {
	var raw interface{}
	for _, path := range servicesPaths {
		if v, ok := lookup(obj, path...); ok {
			raw = v
			break
		}
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	services := make([]ServiceLine, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := asInt64(m["id"])
		if !ok {
			continue
		}
		line := ServiceLine{ID: id, Title: serviceTitle(m), CostMinor: serviceCostMinor(m)}
		services = append(services, line)
	}

	if len(services) == 0 {
		return nil
	}
	return services
}

func serviceTitle(m map[string]interface{}) string {
	if title, ok := m["title"].(string); ok {
		return title
	}
	if name, ok := m["name"].(string); ok {
		return name
	}
	return ""
}

// serviceCostMinor reads the service cost. New payloads carry minor units
// under cost_minor; older ones carry major currency units, often as a
// float, which must be rounded rather than truncated.
func serviceCostMinor(m map[string]interface{}) int64 {
	for _, key := range []string{"cost_minor", "costMinor"} {
		if v, ok := asInt64(m[key]); ok {
			return v
		}
	}
	for _, key := range []string{"cost", "price"} {
		switch v := m[key].(type) {
		case float64:
			return int64(math.Round(v * 100))
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return int64(math.Round(f * 100))
			}
		}
	}
	return 0
}

// Typed field extraction over the legacy path lists.

func int64Field(obj map[string]interface{}, paths [][]string) *int64 {
	for _, path := range paths {
		if v, ok := lookup(obj, path...); ok {
			if n, ok := asInt64(v); ok {
				return &n
			}
		}
	}
	return nil
}

func intField(obj map[string]interface{}, paths [][]string) *int {
	if v := int64Field(obj, paths); v != nil {
		n := int(*v)
		return &n
	}
	return nil
}

func stringField(obj map[string]interface{}, paths [][]string) *string {
	for _, path := range paths {
		if v, ok := lookup(obj, path...); ok {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return &trimmed
				}
			}
		}
	}
	return nil
}

func timeField(obj map[string]interface{}, paths [][]string) *time.Time {
	for _, path := range paths {
		v, ok := lookup(obj, path...)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if t, ok := parseTimestamp(s); ok {
			return &t
		}
	}
	return nil
}

// timestampLayouts covers the formats historical writers used. Zone-less
// layouts are read as UTC instants: the integrations that wrote them
// stored UTC without the suffix. A writer recording business-local naive
// times would need its own layout entry parsed in the business zone.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// asInt64 accepts the numeric shapes JSON decoding produces: float64 for
// numbers, plus digit strings written by one legacy integration.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		return 0, false
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
		return 0, false
	default:
		return 0, false
	}
}
