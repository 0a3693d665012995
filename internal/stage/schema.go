package stage

import (
	"fmt"
	"strings"

	"github.com/civicmesh/claimforge/internal/model"
)

// The wire types below are the boundary between untrusted provider output
// and the canonical internal schema. Prompt schemas have drifted over time
// (camelCase vs snake_case, renamed slots), so every wire type accepts the
// legacy spellings and the adapter collapses them into one internal shape.
// Pipeline logic never branches on schema version.

type wireTimeframe struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type wireClaim struct {
	Text string `json:"text"`

	Topic       string `json:"topic"`
	LegacyTheme string `json:"theme"` // legacy name for topic

	Timeframe *wireTimeframe `json:"timeframe"`

	Location string `json:"location"`

	JurisdictionLevel string `json:"jurisdiction_level"`
	LegacyLevelCamel  string `json:"jurisdictionLevel"`
	LegacyLevel       string `json:"level"`

	JurisdictionBody string `json:"jurisdiction_body"`
	LegacyBodyCamel  string `json:"jurisdictionBody"`

	AffectedGroups []string `json:"affected_groups"`
	LegacyGroups   []string `json:"affectedGroups"`

	Metric        string   `json:"metric"`
	Uncertainties []string `json:"uncertainties"`
}

// toModel translates one wire claim into the canonical shape. Empty required
// slots become needs-info markers - missing information is surfaced, never
// invented.
func (w wireClaim) toModel() model.CandidateClaim {
	c := model.CandidateClaim{
		Text:             strings.TrimSpace(w.Text),
		Topic:            coalesce(w.Topic, w.LegacyTheme),
		Location:         strings.TrimSpace(w.Location),
		JurisdictionBody: coalesce(w.JurisdictionBody, w.LegacyBodyCamel),
		Metric:           strings.TrimSpace(w.Metric),
		Uncertainties:    cleanList(w.Uncertainties, 8),
	}

	if w.Timeframe != nil && (w.Timeframe.From != "" || w.Timeframe.To != "") {
		c.Timeframe = &model.Timeframe{From: w.Timeframe.From, To: w.Timeframe.To}
	}

	groups := w.AffectedGroups
	if len(groups) == 0 {
		groups = w.LegacyGroups
	}
	c.AffectedGroups = cleanList(groups, 8)

	level := coalesce(w.JurisdictionLevel, w.LegacyLevelCamel, w.LegacyLevel)
	c.JurisdictionLevel = model.ParseJurisdictionLevel(level)

	if c.Topic == "" {
		c.Topic = model.NeedsInfoPrefix + "topic"
	}
	if c.Metric == "" {
		c.Metric = model.NeedsInfoPrefix + "metric"
	}

	return c
}

type wireClaimBatch struct {
	Claims []wireClaim `json:"claims"`
}

type wireEvidence struct {
	SourceType   string `json:"source_type"`
	LegacyType   string `json:"sourceType"`
	LegacyKind   string `json:"kind"`
	SearchQuery  string `json:"search_query"`
	LegacyQuery  string `json:"query"`
	Expected     string `json:"expected_metric"`
	LegacyExpect string `json:"expectedMetric"`
	Year         int    `json:"year"`
}

// toModel validates one hypothesis; the boolean is false when the entry is
// structurally unusable (unknown source type or missing query).
func (w wireEvidence) toModel(claimID string) (model.EvidenceHypothesis, bool) {
	sourceType, ok := model.ParseEvidenceSourceType(coalesce(w.SourceType, w.LegacyType, w.LegacyKind))
	if !ok {
		return model.EvidenceHypothesis{}, false
	}
	query := coalesce(w.SearchQuery, w.LegacyQuery)
	if query == "" {
		return model.EvidenceHypothesis{}, false
	}

	year := w.Year
	if year < 1900 || year > 2100 {
		year = 0
	}

	return model.EvidenceHypothesis{
		ClaimCanonicalID: claimID,
		SourceType:       sourceType,
		SearchQuery:      query,
		ExpectedMetric:   coalesce(w.Expected, w.LegacyExpect),
		Year:             year,
	}, true
}

type wireEvidenceBatch struct {
	Hypotheses []wireEvidence `json:"hypotheses"`
	LegacyList []wireEvidence `json:"evidence"`
}

func (w wireEvidenceBatch) entries() []wireEvidence {
	if len(w.Hypotheses) > 0 {
		return w.Hypotheses
	}
	return w.LegacyList
}

type wirePerspectives struct {
	Pro         []string `json:"pro"`
	LegacyPros  []string `json:"pros"`
	Con         []string `json:"con"`
	LegacyCons  []string `json:"cons"`
	Alternative string   `json:"alternative"`
	LegacyAlt   string   `json:"alternative_view"`
}

func (w wirePerspectives) toModel(claimID string) (*model.PerspectiveSet, error) {
	pro := w.Pro
	if len(pro) == 0 {
		pro = w.LegacyPros
	}
	con := w.Con
	if len(con) == 0 {
		con = w.LegacyCons
	}
	alternative := strings.TrimSpace(coalesce(w.Alternative, w.LegacyAlt))

	pro = cleanList(pro, model.MaxProArguments)
	con = cleanList(con, model.MaxConArguments)

	if len(pro) == 0 || len(con) == 0 {
		return nil, fmt.Errorf("perspectives must carry at least one pro and one con")
	}
	if alternative == "" {
		return nil, fmt.Errorf("perspectives missing the alternative framing")
	}

	return &model.PerspectiveSet{
		ClaimCanonicalID: claimID,
		Pro:              pro,
		Con:              con,
		Alternative:      alternative,
	}, nil
}

type wireDimension struct {
	Score         *float64 `json:"score"`
	LegacyValue   *float64 `json:"value"`
	Justification string   `json:"justification"`
	LegacyReason  string   `json:"reason"`
}

func (w wireDimension) toModel(name string) (model.ScoredDimension, error) {
	score := w.Score
	if score == nil {
		score = w.LegacyValue
	}
	if score == nil {
		return model.ScoredDimension{}, fmt.Errorf("dimension %s missing score", name)
	}
	return model.ScoredDimension{
		Score:         clamp01(*score),
		Justification: coalesce(w.Justification, w.LegacyReason),
	}, nil
}

type wireQuality struct {
	Precision    *wireDimension `json:"precision"`
	Checkability *wireDimension `json:"checkability"`
	Relevance    *wireDimension `json:"relevance"`
	Readability  *wireDimension `json:"readability"`
	Balance      *wireDimension `json:"balance"`
}

func (w wireQuality) toModel(claimID string) (*model.QualityScore, error) {
	score := &model.QualityScore{ClaimCanonicalID: claimID}

	type binding struct {
		name string
		wire *wireDimension
		dst  *model.ScoredDimension
	}
	dims := []binding{
		{"precision", w.Precision, &score.Precision},
		{"checkability", w.Checkability, &score.Checkability},
		{"relevance", w.Relevance, &score.Relevance},
		{"readability", w.Readability, &score.Readability},
		{"balance", w.Balance, &score.Balance},
	}

	for _, d := range dims {
		if d.wire == nil {
			return nil, fmt.Errorf("dimension %s missing", d.name)
		}
		dim, err := d.wire.toModel(d.name)
		if err != nil {
			return nil, err
		}
		*d.dst = dim
	}
	return score, nil
}

// coalesce returns the first non-empty trimmed value.
func coalesce(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// cleanList trims entries, drops empties, and caps the length.
func cleanList(items []string, max int) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
		if len(out) == max {
			break
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
