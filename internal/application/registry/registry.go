// Package registry owns the in-memory rule set the engine resolves against:
// loading it from a durable source with the embedded static backstop,
// swapping it atomically on reload, and serving lock-free reads in between.
package registry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/monitoring/logging"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// Origin labels for snapshot provenance.
const (
	OriginStatic = "static"
)

// Info describes the currently published rule snapshot.
type Info struct {
	Origin     string    `json:"origin"`
	Revision   int64     `json:"revision"`
	RulesTotal int       `json:"rules_total"`
	FromStore  int       `json:"from_store"`
	FromStatic int       `json:"from_static"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Entry is the per-jurisdiction diagnostic view of the published snapshot.
type Entry struct {
	Code      deadline.JurisdictionCode `json:"code"`
	StateName string                    `json:"state_name"`
	Origin    string                    `json:"origin"`
	Flags     []rule.SpecialFlag        `json:"flags,omitempty"`
}

// snapshot is an immutable published rule set. Readers dereference one
// pointer and then work against data that never changes underneath them.
type snapshot struct {
	rules   map[deadline.JurisdictionCode]*rule.JurisdictionRule
	origins map[deadline.JurisdictionCode]string
	info    Info
}

// Registry serves jurisdiction rules to the resolution path. Reads are a
// single atomic pointer dereference plus a map lookup; all store I/O happens
// in Load and Reload.
type Registry struct {
	source rule.Source // nil means static-only operation
	logger logging.Logger

	snap   atomic.Pointer[snapshot]
	rev    atomic.Int64
	flight singleflight.Group
}

// New builds a registry backed by source. A nil source runs the registry on
// the embedded static rule set alone.
func New(source rule.Source, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{source: source, logger: logger.Named("registry")}
}

// Load builds and publishes the initial snapshot. Store problems are not
// fatal here: an unreachable store falls back to all-static, a malformed or
// miskeyed row falls back to that code's static rule, and both are logged.
// Load is safe to call repeatedly; concurrent calls share one fetch.
func (r *Registry) Load(ctx context.Context) error {
	_, err, _ := r.flight.Do("load", func() (interface{}, error) {
		snap := r.buildLenient(ctx)
		snap.info.Revision = r.rev.Add(1)
		r.snap.Store(snap)
		r.logger.Info("rule snapshot published",
			logging.String("origin", snap.info.Origin),
			logging.Int64("revision", snap.info.Revision),
			logging.Int("rules", snap.info.RulesTotal),
			logging.Int("from_store", snap.info.FromStore))
		return nil, nil
	})
	return err
}

// Reload re-fetches the rule set and atomically replaces the snapshot.
// Unlike Load it is strict: an unreachable store is RegistryUnavailable and
// a malformed row is RuleDataIncomplete, and in both cases the previous
// snapshot stays published so in-flight resolutions are never degraded by a
// failed reload.
func (r *Registry) Reload(ctx context.Context) error {
	_, err, _ := r.flight.Do("reload", func() (interface{}, error) {
		snap, err := r.buildStrict(ctx)
		if err != nil {
			r.logger.Error("rule reload rejected, keeping previous snapshot",
				logging.Err(err))
			return nil, err
		}
		snap.info.Revision = r.rev.Add(1)
		r.snap.Store(snap)
		r.logger.Info("rule snapshot reloaded",
			logging.String("origin", snap.info.Origin),
			logging.Int64("revision", snap.info.Revision),
			logging.Int("rules", snap.info.RulesTotal),
			logging.Int("from_store", snap.info.FromStore))
		return nil, nil
	})
	return err
}

// Resolve returns the rule document for a validated jurisdiction code. The
// first call triggers a lazy Load when the process skipped warmup. Callers
// must treat the returned document as read-only; it is shared across every
// resolution on the same snapshot.
func (r *Registry) Resolve(ctx context.Context, code deadline.JurisdictionCode) (*rule.JurisdictionRule, error) {
	snap := r.snap.Load()
	if snap == nil {
		if err := r.Load(ctx); err != nil {
			return nil, err
		}
		snap = r.snap.Load()
	}
	doc, ok := snap.rules[code]
	if !ok {
		// The static backstop covers every valid code, so this only fires
		// for codes that bypassed validation.
		return nil, errors.New(errors.ErrCodeRuleNotFound,
			fmt.Sprintf("no rule loaded for jurisdiction %q", code))
	}
	return doc, nil
}

// Info reports provenance of the published snapshot. The zero Info means no
// snapshot has been published yet.
func (r *Registry) Info() Info {
	if snap := r.snap.Load(); snap != nil {
		return snap.info
	}
	return Info{}
}

// Entries returns one diagnostic row per jurisdiction in the published
// snapshot, in lexical code order. Nil when no snapshot is published.
func (r *Registry) Entries() []Entry {
	snap := r.snap.Load()
	if snap == nil {
		return nil
	}
	entries := make([]Entry, 0, len(snap.rules))
	for _, code := range deadline.AllJurisdictions() {
		doc, ok := snap.rules[code]
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Code:      code,
			StateName: doc.StateName,
			Origin:    snap.origins[code],
			Flags:     doc.SpecialFlags,
		})
	}
	return entries
}

// buildLenient assembles a snapshot for initial load: static base, store
// rows layered on top where they are present and valid.
func (r *Registry) buildLenient(ctx context.Context) *snapshot {
	rules := rule.StaticRules()
	origins := staticOrigins(rules)
	info := Info{Origin: OriginStatic, LoadedAt: time.Now().UTC()}

	if r.source != nil {
		stored, err := r.source.FetchAll(ctx)
		switch {
		case err != nil:
			r.logger.Warn("rule store unreachable, serving embedded rules",
				logging.String("source", r.source.Name()),
				logging.Err(err))
		default:
			applied := 0
			for code, doc := range stored {
				if vErr := acceptStoreRow(code, doc); vErr != nil {
					r.logger.Warn("rule store row rejected, keeping embedded rule",
						logging.Jurisdiction(code),
						logging.Err(vErr))
					continue
				}
				rules[code] = doc
				origins[code] = r.source.Name()
				applied++
			}
			info.FromStore = applied
			if applied > 0 {
				info.Origin = r.source.Name()
			}
		}
	}

	info.RulesTotal = len(rules)
	info.FromStatic = info.RulesTotal - info.FromStore
	return &snapshot{rules: rules, origins: origins, info: info}
}

// buildStrict assembles a snapshot for explicit reload, failing on the first
// store problem instead of degrading.
func (r *Registry) buildStrict(ctx context.Context) (*snapshot, error) {
	rules := rule.StaticRules()
	origins := staticOrigins(rules)
	info := Info{Origin: OriginStatic, LoadedAt: time.Now().UTC()}

	if r.source != nil {
		stored, err := r.source.FetchAll(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRegistryUnavailable,
				fmt.Sprintf("rule store %s unreachable during reload", r.source.Name()))
		}
		for code, doc := range stored {
			if vErr := acceptStoreRow(code, doc); vErr != nil {
				return nil, vErr
			}
			rules[code] = doc
			origins[code] = r.source.Name()
		}
		info.FromStore = len(stored)
		if info.FromStore > 0 {
			info.Origin = r.source.Name()
		}
	}

	info.RulesTotal = len(rules)
	info.FromStatic = info.RulesTotal - info.FromStore
	return &snapshot{rules: rules, origins: origins, info: info}, nil
}

func staticOrigins(rules map[deadline.JurisdictionCode]*rule.JurisdictionRule) map[deadline.JurisdictionCode]string {
	origins := make(map[deadline.JurisdictionCode]string, len(rules))
	for code := range rules {
		origins[code] = OriginStatic
	}
	return origins
}

// acceptStoreRow checks one store row before it may shadow the embedded rule
// for its code.
func acceptStoreRow(code deadline.JurisdictionCode, doc *rule.JurisdictionRule) error {
	if !code.IsValid() {
		return errors.RuleDataIncomplete(
			fmt.Sprintf("store holds a row for unsupported jurisdiction %q", code))
	}
	if doc == nil {
		return errors.RuleDataIncomplete(
			fmt.Sprintf("store returned a nil rule for %s", code))
	}
	if doc.Code != code {
		return errors.RuleDataIncomplete(
			fmt.Sprintf("store row keyed %s carries code %s", code, doc.Code))
	}
	return doc.Validate()
}
