package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/civicmesh/claimforge/internal/model"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS claims (
    canonical_id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    topic TEXT NOT NULL DEFAULT '',
    timeframe_from TEXT NOT NULL DEFAULT '',
    timeframe_to TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    jurisdiction_level TEXT NOT NULL DEFAULT 'unclear',
    jurisdiction_body TEXT NOT NULL DEFAULT '',
    affected_groups TEXT NOT NULL DEFAULT '[]',
    metric TEXT NOT NULL DEFAULT '',
    uncertainties TEXT NOT NULL DEFAULT '[]',
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS evidence_hypotheses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    claim_canonical_id TEXT NOT NULL,
    source_type TEXT NOT NULL,
    search_query TEXT NOT NULL,
    expected_metric TEXT NOT NULL DEFAULT '',
    year INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS perspective_sets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    claim_canonical_id TEXT NOT NULL,
    pro TEXT NOT NULL DEFAULT '[]',
    con TEXT NOT NULL DEFAULT '[]',
    alternative TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS quality_scores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    claim_canonical_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_evidence_claim ON evidence_hypotheses(claim_canonical_id);
CREATE INDEX IF NOT EXISTS idx_perspectives_claim ON perspective_sets(claim_canonical_id);
CREATE INDEX IF NOT EXISTS idx_scores_claim ON quality_scores(claim_canonical_id);
`

// Open creates or opens the SQLite store at path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// OpenMemory creates an in-memory store, used by tests.
func OpenMemory() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// UpsertClaim inserts or replaces the claim keyed by canonical id.
func (s *SQLiteStore) UpsertClaim(ctx context.Context, claim model.CandidateClaim) error {
	groups, err := json.Marshal(claim.AffectedGroups)
	if err != nil {
		return fmt.Errorf("marshal affected groups: %w", err)
	}
	uncertainties, err := json.Marshal(claim.Uncertainties)
	if err != nil {
		return fmt.Errorf("marshal uncertainties: %w", err)
	}

	var from, to string
	if claim.Timeframe != nil {
		from, to = claim.Timeframe.From, claim.Timeframe.To
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claims (
			canonical_id, text, topic, timeframe_from, timeframe_to, location,
			jurisdiction_level, jurisdiction_body, affected_groups, metric, uncertainties
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(canonical_id) DO UPDATE SET
			text = excluded.text,
			topic = excluded.topic,
			timeframe_from = excluded.timeframe_from,
			timeframe_to = excluded.timeframe_to,
			location = excluded.location,
			jurisdiction_level = excluded.jurisdiction_level,
			jurisdiction_body = excluded.jurisdiction_body,
			affected_groups = excluded.affected_groups,
			metric = excluded.metric,
			uncertainties = excluded.uncertainties,
			updated_at = datetime('now')`,
		claim.CanonicalID, claim.Text, claim.Topic, from, to, claim.Location,
		string(claim.JurisdictionLevel), claim.JurisdictionBody,
		string(groups), claim.Metric, string(uncertainties))
	if err != nil {
		return fmt.Errorf("upsert claim: %w", err)
	}
	return nil
}

// AppendEvidence appends hypotheses; never rewrites existing rows.
func (s *SQLiteStore) AppendEvidence(ctx context.Context, hypotheses []model.EvidenceHypothesis) error {
	for _, h := range hypotheses {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO evidence_hypotheses (claim_canonical_id, source_type, search_query, expected_metric, year)
			VALUES (?, ?, ?, ?, ?)`,
			h.ClaimCanonicalID, string(h.SourceType), h.SearchQuery, h.ExpectedMetric, h.Year)
		if err != nil {
			return fmt.Errorf("append evidence: %w", err)
		}
	}
	return nil
}

// AppendPerspectives appends one perspective set.
func (s *SQLiteStore) AppendPerspectives(ctx context.Context, set model.PerspectiveSet) error {
	pro, err := json.Marshal(set.Pro)
	if err != nil {
		return fmt.Errorf("marshal pro: %w", err)
	}
	con, err := json.Marshal(set.Con)
	if err != nil {
		return fmt.Errorf("marshal con: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO perspective_sets (claim_canonical_id, pro, con, alternative)
		VALUES (?, ?, ?, ?)`,
		set.ClaimCanonicalID, string(pro), string(con), set.Alternative)
	if err != nil {
		return fmt.Errorf("append perspectives: %w", err)
	}
	return nil
}

// AppendScore appends one quality score as a JSON payload.
func (s *SQLiteStore) AppendScore(ctx context.Context, score model.QualityScore) error {
	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quality_scores (claim_canonical_id, payload) VALUES (?, ?)`,
		score.ClaimCanonicalID, string(payload))
	if err != nil {
		return fmt.Errorf("append score: %w", err)
	}
	return nil
}

// GetClaim reads one claim by canonical id.
func (s *SQLiteStore) GetClaim(ctx context.Context, canonicalID string) (model.CandidateClaim, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT canonical_id, text, topic, timeframe_from, timeframe_to, location,
		       jurisdiction_level, jurisdiction_body, affected_groups, metric, uncertainties
		FROM claims WHERE canonical_id = ?`, canonicalID)

	claim, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return model.CandidateClaim{}, false, nil
	}
	if err != nil {
		return model.CandidateClaim{}, false, fmt.Errorf("get claim: %w", err)
	}
	return claim, true, nil
}

// ListClaims reads all stored claims ordered by recency.
func (s *SQLiteStore) ListClaims(ctx context.Context) ([]model.CandidateClaim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT canonical_id, text, topic, timeframe_from, timeframe_to, location,
		       jurisdiction_level, jurisdiction_body, affected_groups, metric, uncertainties
		FROM claims ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var claims []model.CandidateClaim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("list claims: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (model.CandidateClaim, error) {
	var (
		claim         model.CandidateClaim
		level         string
		from, to      string
		groups        string
		uncertainties string
	)
	err := row.Scan(&claim.CanonicalID, &claim.Text, &claim.Topic, &from, &to,
		&claim.Location, &level, &claim.JurisdictionBody, &groups, &claim.Metric, &uncertainties)
	if err != nil {
		return model.CandidateClaim{}, err
	}

	claim.JurisdictionLevel = model.JurisdictionLevel(level)
	if from != "" || to != "" {
		claim.Timeframe = &model.Timeframe{From: from, To: to}
	}
	if err := json.Unmarshal([]byte(groups), &claim.AffectedGroups); err != nil {
		return model.CandidateClaim{}, fmt.Errorf("decode affected groups: %w", err)
	}
	if err := json.Unmarshal([]byte(uncertainties), &claim.Uncertainties); err != nil {
		return model.CandidateClaim{}, fmt.Errorf("decode uncertainties: %w", err)
	}
	return claim, nil
}
