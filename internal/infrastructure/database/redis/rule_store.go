package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noticeworks/lienclock/internal/config"
	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/monitoring/logging"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// RuleStore keeps one JSON document per jurisdiction under <prefix><CODE>,
// plus a store-wide revision counter under <prefix>revision that every
// mutation bumps. Documents are written without TTL: the store is durable
// rule data, not a cache.
type RuleStore struct {
	client *Client
	prefix string
	logger logging.Logger
}

var _ rule.Source = (*RuleStore)(nil)

// NewRuleStore builds a store over an established client. An empty prefix
// falls back to the configured default.
func NewRuleStore(client *Client, prefix string, logger logging.Logger) *RuleStore {
	if prefix == "" {
		prefix = config.DefaultRedisKeyPrefix
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RuleStore{client: client, prefix: prefix, logger: logger.Named("redis")}
}

// Name identifies the store in logs and reload traces.
func (s *RuleStore) Name() string { return "redis" }

func (s *RuleStore) key(code deadline.JurisdictionCode) string {
	return s.prefix + code.String()
}

func (s *RuleStore) revisionKey() string {
	return s.prefix + "revision"
}

// FetchAll returns every stored document keyed by jurisdiction code. The
// store addresses the known jurisdiction set directly with one MGET rather
// than scanning, so stray keys under the prefix never leak into the rule
// set. Missing codes are simply absent from the result.
func (s *RuleStore) FetchAll(ctx context.Context) (map[deadline.JurisdictionCode]*rule.JurisdictionRule, error) {
	codes := deadline.AllJurisdictions()
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = s.key(code)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to fetch jurisdiction rules")
	}

	out := make(map[deadline.JurisdictionCode]*rule.JurisdictionRule)
	for i, val := range vals {
		if val == nil {
			continue
		}
		raw, ok := val.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeRuleDecodeFailed,
				fmt.Sprintf("jurisdiction %s: unexpected value type %T", codes[i], val))
		}
		doc, err := rule.DecodeDocument([]byte(raw))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRuleDecodeFailed,
				fmt.Sprintf("jurisdiction %s: stored rule document is corrupt", codes[i]))
		}
		out[codes[i]] = doc
	}
	return out, nil
}

// FetchByCode returns the stored document for one code, or NotFound.
func (s *RuleStore) FetchByCode(ctx context.Context, code deadline.JurisdictionCode) (*rule.JurisdictionRule, error) {
	raw, err := s.client.Get(ctx, s.key(code)).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFound(fmt.Sprintf("no stored rule for jurisdiction %s", code))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError,
			fmt.Sprintf("failed to fetch rule for %s", code))
	}
	doc, err := rule.DecodeDocument(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleDecodeFailed,
			fmt.Sprintf("jurisdiction %s: stored rule document is corrupt", code))
	}
	return doc, nil
}

// Upsert writes one validated document and bumps the revision counter, both
// in a single transaction.
func (s *RuleStore) Upsert(ctx context.Context, doc *rule.JurisdictionRule) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := rule.EncodeDocument(doc)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(doc.Code), data, 0)
	pipe.Incr(ctx, s.revisionKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError,
			fmt.Sprintf("failed to upsert rule for %s", doc.Code))
	}
	return nil
}

// Delete removes the document for code. Deleting an absent code is a no-op
// and does not bump the revision.
func (s *RuleStore) Delete(ctx context.Context, code deadline.JurisdictionCode) error {
	removed, err := s.client.Del(ctx, s.key(code)).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError,
			fmt.Sprintf("failed to delete rule for %s", code))
	}
	if removed > 0 {
		if err := s.client.Incr(ctx, s.revisionKey()).Err(); err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "failed to bump rule revision")
		}
	}
	return nil
}

// Seed writes every document in docs in one transaction with a single
// revision bump, and returns the number written. Used by the sync command
// to populate a store from the embedded rule set.
func (s *RuleStore) Seed(ctx context.Context, docs map[deadline.JurisdictionCode]*rule.JurisdictionRule) (int, error) {
	pipe := s.client.TxPipeline()
	n := 0
	for _, code := range deadline.AllJurisdictions() {
		doc, ok := docs[code]
		if !ok {
			continue
		}
		if err := doc.Validate(); err != nil {
			return 0, err
		}
		data, err := rule.EncodeDocument(doc)
		if err != nil {
			return 0, err
		}
		pipe.Set(ctx, s.key(code), data, 0)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	pipe.Incr(ctx, s.revisionKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "failed to seed jurisdiction rules")
	}

	s.logger.Info("seeded jurisdiction rules", logging.Int("count", n))
	return n, nil
}

// Revision returns the store-wide revision counter, zero when nothing has
// been written yet.
func (s *RuleStore) Revision(ctx context.Context) (int64, error) {
	rev, err := s.client.Get(ctx, s.revisionKey()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read rule revision")
	}
	return rev, nil
}
