package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/monitoring/logging"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// schemaDDL is the single-table schema the rule store owns.  Idempotent so
// EnsureSchema can run on every startup and in sync.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS jurisdiction_rules (
	code               TEXT PRIMARY KEY,
	state_name         TEXT NOT NULL,
	preliminary_notice JSONB NOT NULL,
	lien_filing        JSONB NOT NULL,
	special_flags      TEXT[] NOT NULL DEFAULT '{}',
	revision           BIGINT NOT NULL DEFAULT 1,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const upsertSQL = `
INSERT INTO jurisdiction_rules (code, state_name, preliminary_notice, lien_filing, special_flags)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (code) DO UPDATE SET
	state_name         = EXCLUDED.state_name,
	preliminary_notice = EXCLUDED.preliminary_notice,
	lien_filing        = EXCLUDED.lien_filing,
	special_flags      = EXCLUDED.special_flags,
	revision           = jurisdiction_rules.revision + 1,
	updated_at         = NOW()`

const selectColumns = `code, state_name, preliminary_notice, lien_filing, special_flags`

// queryExecutor is satisfied by both *sql.DB and *sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// RuleStore persists jurisdiction rule documents in PostgreSQL and serves
// them to the registry as a rule.Source.
type RuleStore struct {
	conn   *Connection
	logger logging.Logger
}

var _ rule.Source = (*RuleStore)(nil)

// NewRuleStore builds a store over an established connection.
func NewRuleStore(conn *Connection, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RuleStore{conn: conn, logger: logger.Named("postgres")}
}

// Name identifies the store in logs and reload traces.
func (s *RuleStore) Name() string { return "postgres" }

// EnsureSchema creates the jurisdiction_rules table if it does not exist.
func (s *RuleStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.DB().ExecContext(ctx, schemaDDL); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to ensure jurisdiction_rules schema")
	}
	return nil
}

// FetchAll returns every stored rule document keyed by jurisdiction code.
// An empty table is a valid result: the registry backfills missing codes
// from the embedded set.  A row whose JSON documents cannot be decoded fails
// the whole fetch; rows are never silently dropped.
func (s *RuleStore) FetchAll(ctx context.Context) (map[deadline.JurisdictionCode]*rule.JurisdictionRule, error) {
	query := `SELECT ` + selectColumns + ` FROM jurisdiction_rules`
	rows, err := s.conn.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query jurisdiction rules")
	}
	defer rows.Close()

	out := make(map[deadline.JurisdictionCode]*rule.JurisdictionRule)
	for rows.Next() {
		doc, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out[doc.Code] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate jurisdiction rules")
	}
	return out, nil
}

// FetchByCode returns the stored document for one code, or NotFound.
func (s *RuleStore) FetchByCode(ctx context.Context, code deadline.JurisdictionCode) (*rule.JurisdictionRule, error) {
	query := `SELECT ` + selectColumns + ` FROM jurisdiction_rules WHERE code = $1`
	doc, err := scanRule(s.conn.DB().QueryRowContext(ctx, query, code.String()))
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("no stored rule for jurisdiction %s", code))
		}
		return nil, err
	}
	return doc, nil
}

// Upsert writes one rule document, inserting or replacing the row for its
// code and bumping the revision.  The document is validated first; the store
// never persists a rule set the registry would reject.
func (s *RuleStore) Upsert(ctx context.Context, doc *rule.JurisdictionRule) error {
	return upsertIn(ctx, s.conn.DB(), doc)
}

// Delete removes the row for code.  Deleting an absent row is a no-op.
func (s *RuleStore) Delete(ctx context.Context, code deadline.JurisdictionCode) error {
	query := `DELETE FROM jurisdiction_rules WHERE code = $1`
	if _, err := s.conn.DB().ExecContext(ctx, query, code.String()); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError,
			fmt.Sprintf("failed to delete rule for %s", code))
	}
	return nil
}

// Seed writes every document in docs within one transaction, in lexical code
// order, and returns the number written.  Used by the sync command to
// populate a store from the embedded rule set.
func (s *RuleStore) Seed(ctx context.Context, docs map[deadline.JurisdictionCode]*rule.JurisdictionRule) (int, error) {
	codes := make([]deadline.JurisdictionCode, 0, len(docs))
	for code := range docs {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	tx, err := s.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin seed transaction")
	}
	defer tx.Rollback()

	for _, code := range codes {
		if err := upsertIn(ctx, tx, docs[code]); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit seed transaction")
	}

	s.logger.Info("seeded jurisdiction rules", logging.Int("count", len(codes)))
	return len(codes), nil
}

// upsertIn validates and writes one document through the given executor.
func upsertIn(ctx context.Context, ex queryExecutor, doc *rule.JurisdictionRule) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	noticeJSON, err := rule.EncodePolicy(doc.PreliminaryNotice)
	if err != nil {
		return err
	}
	lienJSON, err := rule.EncodeRule(doc.LienFiling)
	if err != nil {
		return err
	}

	flags := make([]string, len(doc.SpecialFlags))
	for i, f := range doc.SpecialFlags {
		flags[i] = string(f)
	}

	if _, err := ex.ExecContext(ctx, upsertSQL,
		doc.Code.String(), doc.StateName, noticeJSON, lienJSON, pq.Array(flags),
	); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError,
			fmt.Sprintf("failed to upsert rule for %s", doc.Code))
	}
	return nil
}

// scanRule reads one jurisdiction_rules row into a document.
func scanRule(row scanner) (*rule.JurisdictionRule, error) {
	var (
		code      string
		stateName string
		noticeRaw []byte
		lienRaw   []byte
		flags     pq.StringArray
	)
	if err := row.Scan(&code, &stateName, &noticeRaw, &lienRaw, &flags); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("jurisdiction rule not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan jurisdiction rule")
	}

	policy, err := rule.DecodePolicy(noticeRaw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleDecodeFailed,
			fmt.Sprintf("jurisdiction %s: stored notice policy is corrupt", code))
	}
	lien, err := rule.DecodeRule(lienRaw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleDecodeFailed,
			fmt.Sprintf("jurisdiction %s: stored lien rule is corrupt", code))
	}

	doc := &rule.JurisdictionRule{
		Code:              deadline.JurisdictionCode(code),
		StateName:         stateName,
		PreliminaryNotice: policy,
		LienFiling:        lien,
	}
	if len(flags) > 0 {
		doc.SpecialFlags = make([]rule.SpecialFlag, len(flags))
		for i, f := range flags {
			doc.SpecialFlags[i] = rule.SpecialFlag(f)
		}
	}
	return doc, nil
}
