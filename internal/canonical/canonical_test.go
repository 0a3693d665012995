package canonical

import (
	"strings"
	"testing"
)

func TestNormalize_CasePunctuationWhitespace(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"case", "Hundesteuer erhöhen", "hundesteuer erhöhen"},
		{"punctuation", "Hundesteuer erhöhen!", "hundesteuer erhöhen"},
		{"whitespace", "hundesteuer   erhöhen", "hundesteuer erhöhen"},
		{"quotes", `"Hundesteuer" erhöhen`, "hundesteuer erhöhen"},
		{"brackets", "[Hundesteuer] (erhöhen)", "hundesteuer erhöhen"},
		{"mixed", "  Hundesteuer,   ERHÖHEN!!  ", "hundesteuer erhöhen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.a); got != Normalize(tt.b) {
				t.Errorf("Normalize(%q) = %q, want same as Normalize(%q) = %q",
					tt.a, got, tt.b, Normalize(tt.b))
			}
		})
	}
}

func TestNormalize_UnicodeCompatibility(t *testing.T) {
	// NFKC folds the fullwidth digits used by some input methods.
	if Normalize("Tempo ３０") != Normalize("tempo 30") {
		t.Errorf("expected fullwidth digits to normalize: %q vs %q",
			Normalize("Tempo ３０"), Normalize("tempo 30"))
	}
}

func TestID_Deterministic(t *testing.T) {
	variants := []string{
		"Hundesteuer erhöhen!",
		"hundesteuer   erhöhen",
		"HUNDESTEUER ERHÖHEN.",
		`"Hundesteuer erhöhen"`,
	}

	want := IDFor(variants[0])
	for _, v := range variants[1:] {
		if got := IDFor(v); got != want {
			t.Errorf("IDFor(%q) = %s, want %s", v, got, want)
		}
	}

	if IDFor("Hundesteuer senken") == want {
		t.Error("different text must not collide on the happy path")
	}
}

func TestID_VersionedPrefix(t *testing.T) {
	id := IDFor("Tempo 30 vor Schulen")
	if !strings.HasPrefix(id, "claim:v1:") {
		t.Errorf("id %q missing version prefix", id)
	}
}

func TestTokens(t *testing.T) {
	got := Tokens(Normalize("Der Bezirk soll Tempo 30 einführen."))
	want := []string{"der", "bezirk", "soll", "tempo", "30", "einführen"}
	if len(got) != len(want) {
		t.Fatalf("Tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
