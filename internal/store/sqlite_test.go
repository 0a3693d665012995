package store

import (
	"context"
	"testing"

	"github.com/civicmesh/claimforge/internal/model"
)

func testClaim(id string) model.CandidateClaim {
	return model.CandidateClaim{
		Text:              "Der Bezirk soll Tempo 30 vor allen Schulen einführen.",
		Topic:             "Verkehrssicherheit",
		Timeframe:         &model.Timeframe{From: "2026-01", To: "2026-12"},
		Location:          "Berlin-Pankow",
		JurisdictionLevel: model.JurisdictionLocal,
		JurisdictionBody:  "Bezirksamt Pankow",
		AffectedGroups:    []string{"Schulkinder", "Anwohner"},
		Metric:            "Unfallzahlen auf Schulwegen",
		Uncertainties:     []string{"genauer Straßenabschnitt unklar"},
		CanonicalID:       id,
	}
}

func TestUpsertClaim_InsertThenUpdate(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	claim := testClaim("claim:v1:abc")
	if err := s.UpsertClaim(ctx, claim); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	claim.Topic = "Schulwegsicherheit"
	claim.Metric = "Unfälle pro Jahr"
	if err := s.UpsertClaim(ctx, claim); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	claims, err := s.ListClaims(ctx)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected a single row after upserting the same id twice, got %d", len(claims))
	}
	if claims[0].Topic != "Schulwegsicherheit" {
		t.Errorf("topic = %q, want updated value", claims[0].Topic)
	}
}

func TestGetClaim_Roundtrip(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	want := testClaim("claim:v1:roundtrip")
	if err := s.UpsertClaim(ctx, want); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := s.GetClaim(ctx, "claim:v1:roundtrip")
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if !ok {
		t.Fatal("expected claim to be found")
	}
	if got.Text != want.Text || got.JurisdictionLevel != want.JurisdictionLevel {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Timeframe == nil || got.Timeframe.From != "2026-01" {
		t.Errorf("timeframe not preserved: %+v", got.Timeframe)
	}
	if len(got.AffectedGroups) != 2 || got.AffectedGroups[0] != "Schulkinder" {
		t.Errorf("affected groups not preserved: %v", got.AffectedGroups)
	}
	if len(got.Uncertainties) != 1 {
		t.Errorf("uncertainties not preserved: %v", got.Uncertainties)
	}
}

func TestGetClaim_Missing(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	_, ok, err := s.GetClaim(context.Background(), "claim:v1:missing")
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if ok {
		t.Error("expected ok=false for an absent claim")
	}
}

func TestAppendArtifacts(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.UpsertClaim(ctx, testClaim("claim:v1:artifacts")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	evidence := []model.EvidenceHypothesis{
		{
			ClaimCanonicalID: "claim:v1:artifacts",
			SourceType:       model.SourceOfficial,
			SearchQuery:      "unfallstatistik schulwege pankow",
			ExpectedMetric:   "accidents_per_year",
			Year:             2025,
		},
		{
			ClaimCanonicalID: "claim:v1:artifacts",
			SourceType:       model.SourceResearch,
			SearchQuery:      "tempo 30 wirkung schulwege studie",
		},
	}
	if err := s.AppendEvidence(ctx, evidence); err != nil {
		t.Fatalf("append evidence: %v", err)
	}

	set := model.PerspectiveSet{
		ClaimCanonicalID: "claim:v1:artifacts",
		Pro:              []string{"Weniger Unfälle vor Schulen."},
		Con:              []string{"Längere Fahrzeiten im Berufsverkehr."},
		Alternative:      "Tempo 30 nur zu Schulzeiten.",
	}
	if err := s.AppendPerspectives(ctx, set); err != nil {
		t.Fatalf("append perspectives: %v", err)
	}

	score := model.QualityScore{ClaimCanonicalID: "claim:v1:artifacts"}
	score.Precision.Score = 0.9
	if err := s.AppendScore(ctx, score); err != nil {
		t.Fatalf("append score: %v", err)
	}

	var evidenceRows, perspectiveRows, scoreRows int
	row := s.db.QueryRow(`SELECT count(*) FROM evidence_hypotheses WHERE claim_canonical_id = ?`, "claim:v1:artifacts")
	if err := row.Scan(&evidenceRows); err != nil {
		t.Fatalf("count evidence: %v", err)
	}
	row = s.db.QueryRow(`SELECT count(*) FROM perspective_sets WHERE claim_canonical_id = ?`, "claim:v1:artifacts")
	if err := row.Scan(&perspectiveRows); err != nil {
		t.Fatalf("count perspectives: %v", err)
	}
	row = s.db.QueryRow(`SELECT count(*) FROM quality_scores WHERE claim_canonical_id = ?`, "claim:v1:artifacts")
	if err := row.Scan(&scoreRows); err != nil {
		t.Fatalf("count scores: %v", err)
	}

	if evidenceRows != 2 || perspectiveRows != 1 || scoreRows != 1 {
		t.Errorf("row counts = %d/%d/%d, want 2/1/1", evidenceRows, perspectiveRows, scoreRows)
	}
}
