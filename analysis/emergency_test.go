package analysis

import (
	"strings"
	"testing"
)

func TestCheckEmergencyShortCircuit(t *testing.T) {
	// Both values are critical; only the first in sequence order is reported.
	analyses := []TestAnalysis{
		{Test: "Glucose", Value: 45, Unit: "mg/dL", Status: StatusLow},
		{Test: "Hemoglobin", Value: 5, Unit: "g/dL", Status: StatusLow},
	}

	f := CheckEmergency(analyses)
	if !f.IsEmergency {
		t.Fatal("expected emergency")
	}
	if !strings.Contains(f.Message, "Glucose") {
		t.Errorf("message = %q, want first finding (Glucose)", f.Message)
	}
	if strings.Contains(f.Message, "Hemoglobin") {
		t.Errorf("message = %q, must not mention the second finding", f.Message)
	}
}

func TestCheckEmergencyMessage(t *testing.T) {
	f := CheckEmergency([]TestAnalysis{
		{Test: "Glucose", Value: 45, Unit: "mg/dL", Status: StatusLow},
	})
	want := "Critical Glucose level (45 mg/dL) - Seek immediate care!"
	if f.Message != want {
		t.Errorf("message = %q, want %q", f.Message, want)
	}
}

func TestCheckEmergencyNone(t *testing.T) {
	tests := []struct {
		name     string
		analyses []TestAnalysis
	}{
		{"empty", nil},
		{"no emergency table entry", []TestAnalysis{
			// TSH can be HIGH without any emergency threshold existing.
			{Test: "TSH", Value: 6.2, Unit: "mIU/L", Status: StatusHigh},
		}},
		{"within emergency bounds", []TestAnalysis{
			// HIGH under the reference range, but inside the wider
			// emergency range.
			{Test: "Glucose", Value: 150, Unit: "mg/dL", Status: StatusHigh},
		}},
		{"on emergency boundary", []TestAnalysis{
			{Test: "Glucose", Value: 400, Unit: "mg/dL", Status: StatusHigh},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := CheckEmergency(tt.analyses)
			if f.IsEmergency {
				t.Fatalf("unexpected emergency: %q", f.Message)
			}
			if f.Message != NoEmergencyMessage {
				t.Errorf("message = %q, want %q", f.Message, NoEmergencyMessage)
			}
		})
	}
}

func TestCheckEmergencyAgainstCustomTable(t *testing.T) {
	thresholds := map[string]Threshold{"TSH": {Min: 0.1, Max: 10}}
	f := CheckEmergencyAgainst([]TestAnalysis{
		{Test: "TSH", Value: 12, Unit: "mIU/L", Status: StatusHigh},
	}, thresholds)
	if !f.IsEmergency {
		t.Fatal("expected emergency with custom thresholds")
	}
}
