package analysis

import "fmt"

// Finding is the outcome of the emergency scan.
type Finding struct {
	IsEmergency bool   `json:"is_emergency"`
	Message     string `json:"message"`
}

// NoEmergencyMessage is reported when no test violates its emergency range.
const NoEmergencyMessage = "No critical levels detected"

// Threshold is an emergency range. These bounds are always wider than the
// normal reference range for the same test: a value can be HIGH without
// being an emergency, but never the reverse.
type Threshold struct {
	Min float64
	Max float64
}

// emergencyThresholds is deliberately separate from the reference catalog.
var emergencyThresholds = map[string]Threshold{
	"Glucose":    {Min: 50, Max: 400},
	"Hemoglobin": {Min: 7, Max: 20},
}

// CheckEmergency scans analyses in sequence order and reports the first
// test whose value falls outside its emergency range. Only the first
// critical finding is reported; the scan stops there.
func CheckEmergency(analyses []TestAnalysis) Finding {
	return CheckEmergencyAgainst(analyses, emergencyThresholds)
}

// CheckEmergencyAgainst runs the emergency scan with a caller-supplied
// threshold table.
func CheckEmergencyAgainst(analyses []TestAnalysis, thresholds map[string]Threshold) Finding {
	for _, a := range analyses {
		th, ok := thresholds[a.Test]
		if !ok {
			continue
		}
		if a.Value < th.Min || a.Value > th.Max {
			return Finding{
				IsEmergency: true,
				Message: fmt.Sprintf("Critical %s level (%g %s) - Seek immediate care!",
					a.Test, a.Value, a.Unit),
			}
		}
	}
	return Finding{IsEmergency: false, Message: NoEmergencyMessage}
}
