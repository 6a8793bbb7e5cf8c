package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestJSONTimeUnmarshalLenient(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `"2025-08-15T10:30:00Z"`, time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC)},
		{"no zone", `"2025-08-15T10:30:00"`, time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC)},
		{"date only", `"2025-08-15"`, time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
		{"microseconds", `"2025-08-15T10:30:00.123456"`, time.Date(2025, 8, 15, 10, 30, 0, 123456000, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jt JSONTime
			if err := jt.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("UnmarshalJSON(%s): %v", tt.input, err)
			}
			if !time.Time(jt).Equal(tt.want) {
				t.Errorf("parsed %v, want %v", time.Time(jt), tt.want)
			}
		})
	}
}

func TestJSONTimeUnmarshalNull(t *testing.T) {
	var jt JSONTime
	if err := jt.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatalf("UnmarshalJSON(null): %v", err)
	}
	if !jt.IsZero() {
		t.Error("null should parse to the zero instant")
	}

	if err := jt.UnmarshalJSON([]byte(`"15/08/2025"`)); err == nil {
		t.Error("unsupported layout should error")
	}
}

func TestJSONTimeMarshalRFC3339(t *testing.T) {
	jt := JSONTime(time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC))
	out, err := json.Marshal(jt)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `"2025-08-15T10:30:00Z"` {
		t.Errorf("marshaled %s", out)
	}
}
