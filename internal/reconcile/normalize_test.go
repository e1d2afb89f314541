package reconcile

import (
	"testing"
	"time"
)

var testReceivedAt = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func rawItem(payload interface{}) RawItem {
	return RawItem{Source: SourceWebhookLog, ReceivedAt: testReceivedAt, Payload: payload}
}

func TestNormalize_ModernFlatPayload(t *testing.T) {
	payload := `{
		"clientId": 42,
		"datetime": "2024-03-11T14:00:00",
		"visitId": 900,
		"staffName": "Maria Ivanova",
		"staffId": 7,
		"attendance": 1,
		"status": "update",
		"services": [{"id": 5, "title": "Haircut", "cost_minor": 120000}]
	}`

	event, ok := Normalize(rawItem(payload))
	if !ok {
		t.Fatal("expected payload to normalize")
	}
	if event.ClientID != 42 {
		t.Errorf("ClientID = %d, want 42", event.ClientID)
	}
	if event.VisitID == nil || *event.VisitID != 900 {
		t.Errorf("VisitID = %v, want 900", event.VisitID)
	}
	if event.StaffName == nil || *event.StaffName != "Maria Ivanova" {
		t.Errorf("StaffName = %v, want Maria Ivanova", event.StaffName)
	}
	if event.StaffID == nil || *event.StaffID != 7 {
		t.Errorf("StaffID = %v, want 7", event.StaffID)
	}
	if event.Attendance() != AttendanceAttended {
		t.Errorf("Attendance = %v, want attended", event.Attendance())
	}
	if event.Status != StatusUpdate {
		t.Errorf("Status = %q, want update", event.Status)
	}
	if len(event.Services) != 1 || event.Services[0].CostMinor != 120000 {
		t.Errorf("Services = %+v, want one line of 120000 minor", event.Services)
	}
}

func TestNormalize_LegacyNestedPaths(t *testing.T) {
	payload := `{
		"data": {
			"client": {"id": 42},
			"datetime": "2024-03-11 14:00:00",
			"record_id": 900,
			"staff": {"name": "Maria", "id": 7},
			"visit_attendance": -1,
			"status": "deleted",
			"services": [{"id": 5, "name": "Haircut", "cost": 1200.5}]
		}
	}`

	event, ok := Normalize(rawItem(payload))
	if !ok {
		t.Fatal("expected legacy payload to normalize")
	}
	if event.ClientID != 42 {
		t.Errorf("ClientID = %d, want 42", event.ClientID)
	}
	if event.VisitID == nil || *event.VisitID != 900 {
		t.Errorf("VisitID = %v, want 900", event.VisitID)
	}
	if event.Attendance() != AttendanceNoShow {
		t.Errorf("Attendance = %v, want no-show", event.Attendance())
	}
	if event.Status != StatusDelete {
		t.Errorf("Status = %q, want delete", event.Status)
	}
	// Old payloads carry major units, often fractional; they must round,
	// not truncate.
	if len(event.Services) != 1 || event.Services[0].CostMinor != 120050 {
		t.Errorf("Services = %+v, want cost 120050 minor", event.Services)
	}
	if event.Services[0].Title != "Haircut" {
		t.Errorf("Title = %q, want Haircut (from legacy name key)", event.Services[0].Title)
	}
}

func TestNormalize_DoubleEncodedString(t *testing.T) {
	payload := `"{\"clientId\": 42, \"status\": \"create\"}"`

	event, ok := Normalize(rawItem(payload))
	if !ok {
		t.Fatal("expected double-encoded payload to normalize")
	}
	if event.ClientID != 42 || event.Status != StatusCreate {
		t.Errorf("got client %d status %q", event.ClientID, event.Status)
	}
}

func TestNormalize_ValueWrapper(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"object value", `{"value": {"clientId": 42}}`},
		{"stringified value", `{"value": "{\"clientId\": 42}"}`},
		{"nested wrappers", `{"value": {"value": {"clientId": 42}}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, ok := Normalize(rawItem(tc.payload))
			if !ok {
				t.Fatal("expected wrapped payload to normalize")
			}
			if event.ClientID != 42 {
				t.Errorf("ClientID = %d, want 42", event.ClientID)
			}
		})
	}
}

func TestNormalize_ScalarValueKeyIsNotAWrapper(t *testing.T) {
	// A payload that legitimately has a scalar "value" field must not be
	// mistaken for an envelope and dropped.
	payload := `{"clientId": 42, "value": "vip"}`

	event, ok := Normalize(rawItem(payload))
	if !ok {
		t.Fatal("expected payload with scalar value field to normalize")
	}
	if event.ClientID != 42 {
		t.Errorf("ClientID = %d, want 42", event.ClientID)
	}
}

func TestNormalize_Drops(t *testing.T) {
	cases := []struct {
		name    string
		payload interface{}
	}{
		{"not json", "not json at all"},
		{"json scalar", `123`},
		{"json array", `[{"clientId": 42}]`},
		{"missing client id", `{"status": "create"}`},
		{"zero client id", `{"clientId": 0}`},
		{"negative client id", `{"clientId": -5}`},
		{"non numeric client id", `{"clientId": "abc"}`},
		{"nil payload", nil},
		{"wrappers beyond depth bound", `{"value":{"value":{"value":{"value":{"value":{"value":{"clientId":42}}}}}}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := Normalize(rawItem(tc.payload)); ok {
				t.Error("expected payload to be dropped")
			}
		})
	}
}

func TestNormalize_ClientIDNumericStrings(t *testing.T) {
	cases := []struct {
		payload string
		want    int64
		ok      bool
	}{
		{`{"clientId": "42"}`, 42, true},
		{`{"clientId": 42.0}`, 42, true},
		{`{"clientId": 42.5}`, 0, false},
		{`{"clientId": " 42 "}`, 42, true},
	}

	for _, tc := range cases {
		event, ok := Normalize(rawItem(tc.payload))
		if ok != tc.ok {
			t.Errorf("Normalize(%s) ok = %v, want %v", tc.payload, ok, tc.ok)
			continue
		}
		if ok && event.ClientID != tc.want {
			t.Errorf("Normalize(%s) ClientID = %d, want %d", tc.payload, event.ClientID, tc.want)
		}
	}
}

func TestNormalize_VisitsCounterPaths(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *int
	}{
		{"flat", `{"clientId": 42, "visits": 7}`, intPtr(7)},
		{"nested client snapshot", `{"clientId": 42, "data": {"client": {"visits": 3}}}`, intPtr(3)},
		{"nested data", `{"clientId": 42, "data": {"visits": 5}}`, intPtr(5)},
		{"absent", `{"clientId": 42}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := Normalize(rawItem(tt.payload))
			if !ok {
				t.Fatal("Normalize dropped the item")
			}
			switch {
			case tt.want == nil && event.Visits != nil:
				t.Errorf("Visits = %d, want absent", *event.Visits)
			case tt.want != nil && (event.Visits == nil || *event.Visits != *tt.want):
				t.Errorf("Visits = %v, want %d", event.Visits, *tt.want)
			}
		})
	}
}

func TestNormalizeBatch_CountsDropped(t *testing.T) {
	items := []RawItem{
		rawItem(`{"clientId": 1}`),
		rawItem("garbage"),
		rawItem(`{"clientId": 2}`),
		rawItem(`{"noClient": true}`),
	}

	events, dropped := NormalizeBatch(items)
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}

func TestNormalize_TimestampLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-11T14:00:00+02:00", time.Date(2024, 3, 11, 14, 0, 0, 0, time.FixedZone("", 2*3600))},
		{"2024-03-11T14:00:00", time.Date(2024, 3, 11, 14, 0, 0, 0, time.UTC)},
		{"2024-03-11 14:00:00", time.Date(2024, 3, 11, 14, 0, 0, 0, time.UTC)},
		{"2024-03-11", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		payload := `{"clientId": 42, "datetime": "` + tc.raw + `"}`
		event, ok := Normalize(rawItem(payload))
		if !ok {
			t.Errorf("Normalize with datetime %q dropped", tc.raw)
			continue
		}
		if event.VisitDatetime == nil || !event.VisitDatetime.Equal(tc.want) {
			t.Errorf("datetime %q = %v, want %v", tc.raw, event.VisitDatetime, tc.want)
		}
	}
}
