package catalog

import "testing"

func TestNormalize(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"canonical exact", "TSH", "TSH", true},
		{"canonical lowercase", "tsh", "TSH", true},
		{"canonical mixed case", "Hemoglobin", "Hemoglobin", true},
		{"alias", "HB", "Hemoglobin", true},
		{"alias lowercase", "hgb", "Hemoglobin", true},
		{"long form alias", "Thyroid Stimulating Hormone", "TSH", true},
		{"glucose alias", "FBS", "Glucose", true},
		{"blood glucose alias", "blood glucose", "Glucose", true},
		{"surrounding whitespace", "  TSH  ", "TSH", true},
		{"unknown name", "Creatinine", "", false},
		{"partial match rejected", "TS", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Normalize(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	c := Default()
	for _, name := range c.Tests() {
		got, ok := c.Normalize(name)
		if !ok || got != name {
			t.Errorf("Normalize(%q) = %q, %v; canonical names must map to themselves", name, got, ok)
		}
	}
}

func TestReference(t *testing.T) {
	c := Default()

	ref, ok := c.Reference("TSH")
	if !ok {
		t.Fatal("Reference(TSH) not found")
	}
	if ref.Min != 0.5 || ref.Max != 5.0 || ref.Unit != "mIU/L" {
		t.Errorf("Reference(TSH) = %+v", ref)
	}

	if _, ok := c.Reference("Creatinine"); ok {
		t.Error("Reference(Creatinine) should not exist")
	}
	if c.IsKnown("Creatinine") {
		t.Error("IsKnown(Creatinine) = true")
	}
	if !c.IsKnown("Glucose") {
		t.Error("IsKnown(Glucose) = false")
	}
}

func TestReferenceString(t *testing.T) {
	tests := []struct {
		ref  Reference
		want string
	}{
		{Reference{Test: "TSH", Min: 0.5, Max: 5.0, Unit: "mIU/L"}, "0.5-5.0 mIU/L"},
		{Reference{Test: "Hemoglobin", Min: 13.5, Max: 17.5, Unit: "g/dL"}, "13.5-17.5 g/dL"},
		{Reference{Test: "Glucose", Min: 70, Max: 100, Unit: "mg/dL"}, "70-100 mg/dL"},
	}
	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("%s range = %q, want %q", tt.ref.Test, got, tt.want)
		}
	}
}

func TestTestsSorted(t *testing.T) {
	c := Default()
	got := c.Tests()
	want := []string{"Glucose", "Hemoglobin", "TSH"}
	if len(got) != len(want) {
		t.Fatalf("Tests() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tests() = %v, want %v", got, want)
		}
	}
}

func TestAliasForUnknownTestIgnored(t *testing.T) {
	c := New(
		[]Reference{{Test: "TSH", Min: 0.5, Max: 5.0, Unit: "mIU/L"}},
		map[string][]string{"Creatinine": {"CREAT"}},
	)
	if _, ok := c.Normalize("CREAT"); ok {
		t.Error("alias for a test without a reference entry must not resolve")
	}
}
