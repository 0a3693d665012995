package stage

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/civicmesh/claimforge/internal/model"
)

func TestWireClaim_LegacyFieldNames(t *testing.T) {
	// Old prompt schema used camelCase and "theme".
	raw := `{"text":"Tempo 30 vor allen Schulen einführen.","theme":"Verkehr","jurisdictionLevel":"local","jurisdictionBody":"Bezirksamt","affectedGroups":["Schulkinder"],"metric":"Unfallzahlen"}`

	var w wireClaim
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	c := w.toModel()

	if c.Topic != "Verkehr" {
		t.Errorf("Topic = %q, want legacy theme value", c.Topic)
	}
	if c.JurisdictionLevel != model.JurisdictionLocal {
		t.Errorf("JurisdictionLevel = %s, want local", c.JurisdictionLevel)
	}
	if c.JurisdictionBody != "Bezirksamt" {
		t.Errorf("JurisdictionBody = %q", c.JurisdictionBody)
	}
	if len(c.AffectedGroups) != 1 || c.AffectedGroups[0] != "Schulkinder" {
		t.Errorf("AffectedGroups = %v", c.AffectedGroups)
	}
}

func TestWireClaim_CurrentFieldNamesWinOverLegacy(t *testing.T) {
	raw := `{"text":"x","topic":"aktuell","theme":"alt","jurisdiction_level":"regional","level":"local"}`

	var w wireClaim
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	c := w.toModel()

	if c.Topic != "aktuell" {
		t.Errorf("Topic = %q, current name must win", c.Topic)
	}
	if c.JurisdictionLevel != model.JurisdictionRegional {
		t.Errorf("JurisdictionLevel = %s, current name must win", c.JurisdictionLevel)
	}
}

func TestWireClaim_MissingSlotsBecomeNeedsInfo(t *testing.T) {
	var w wireClaim
	if err := json.Unmarshal([]byte(`{"text":"Hundesteuer erhöhen."}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	c := w.toModel()

	if !strings.HasPrefix(c.Topic, model.NeedsInfoPrefix) {
		t.Errorf("empty topic should become needs-info, got %q", c.Topic)
	}
	if !strings.HasPrefix(c.Metric, model.NeedsInfoPrefix) {
		t.Errorf("empty metric should become needs-info, got %q", c.Metric)
	}
	if c.JurisdictionLevel != model.JurisdictionUnclear {
		t.Errorf("missing jurisdiction should be unclear, got %s", c.JurisdictionLevel)
	}

	slots := c.NeedsInfoSlots()
	if len(slots) != 2 {
		t.Errorf("NeedsInfoSlots = %v, want [topic metric]", slots)
	}
}

func TestWireClaim_FreeTextJurisdictionCollapsesToUnclear(t *testing.T) {
	var w wireClaim
	if err := json.Unmarshal([]byte(`{"text":"x","jurisdiction_level":"the city council maybe?"}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := w.toModel().JurisdictionLevel; got != model.JurisdictionUnclear {
		t.Errorf("JurisdictionLevel = %s, want unclear (never free text)", got)
	}
}

func TestWireEvidence_Validation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"valid", `{"source_type":"official","search_query":"destatis unfallzahlen schulwege","expected_metric":"accidents_per_year","year":2024}`, true},
		{"legacy names", `{"sourceType":"press","query":"tempo 30 berlin bezirk","expectedMetric":"coverage"}`, true},
		{"alias source type", `{"source_type":"government","search_query":"q"}`, true},
		{"unknown source type", `{"source_type":"blog","search_query":"q"}`, false},
		{"missing query", `{"source_type":"official"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w wireEvidence
			if err := json.Unmarshal([]byte(tt.raw), &w); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			h, ok := w.toModel("claim:v1:abc")
			if ok != tt.ok {
				t.Fatalf("toModel ok = %v, want %v", ok, tt.ok)
			}
			if ok && h.ClaimCanonicalID != "claim:v1:abc" {
				t.Errorf("hypothesis not linked to claim: %q", h.ClaimCanonicalID)
			}
		})
	}
}

func TestWireEvidence_ImplausibleYearDropped(t *testing.T) {
	var w wireEvidence
	if err := json.Unmarshal([]byte(`{"source_type":"research","search_query":"q","year":20240}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	h, ok := w.toModel("id")
	if !ok {
		t.Fatal("expected valid hypothesis")
	}
	if h.Year != 0 {
		t.Errorf("implausible year should be dropped, got %d", h.Year)
	}
}

func TestWirePerspectives_BoundsAndLegacy(t *testing.T) {
	raw := `{"pros":["a","b","c","d","e"],"cons":["x"],"alternative_view":"alt"}`

	var w wirePerspectives
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	set, err := w.toModel("id")
	if err != nil {
		t.Fatalf("toModel: %v", err)
	}
	if len(set.Pro) != model.MaxProArguments {
		t.Errorf("pro count = %d, want capped at %d", len(set.Pro), model.MaxProArguments)
	}
	if set.Alternative != "alt" {
		t.Errorf("legacy alternative_view not honored: %q", set.Alternative)
	}
}

func TestWirePerspectives_RejectsUnbalanced(t *testing.T) {
	var w wirePerspectives
	if err := json.Unmarshal([]byte(`{"pro":["a"],"con":[],"alternative":"alt"}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := w.toModel("id"); err == nil {
		t.Error("expected error for missing con arguments")
	}

	w = wirePerspectives{}
	if err := json.Unmarshal([]byte(`{"pro":["a"],"con":["b"]}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := w.toModel("id"); err == nil {
		t.Error("expected error for missing alternative")
	}
}

func TestWireQuality_ClampsAndRequiresAllDimensions(t *testing.T) {
	raw := `{"precision":{"score":1.7,"justification":"p"},"checkability":{"value":-0.2,"reason":"c"},"relevance":{"score":0.5,"justification":"r"},"readability":{"score":0.9,"justification":"l"},"balance":{"score":0.4,"justification":"b"}}`

	var w wireQuality
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	score, err := w.toModel("id")
	if err != nil {
		t.Fatalf("toModel: %v", err)
	}
	if score.Precision.Score != 1.0 {
		t.Errorf("precision should clamp to 1.0, got %f", score.Precision.Score)
	}
	if score.Checkability.Score != 0.0 {
		t.Errorf("checkability should clamp to 0.0, got %f", score.Checkability.Score)
	}
	if score.Checkability.Justification != "c" {
		t.Errorf("legacy reason not honored: %q", score.Checkability.Justification)
	}

	var missing wireQuality
	if err := json.Unmarshal([]byte(`{"precision":{"score":0.5,"justification":"p"}}`), &missing); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := missing.toModel("id"); err == nil {
		t.Error("expected error when dimensions are missing")
	}
}
