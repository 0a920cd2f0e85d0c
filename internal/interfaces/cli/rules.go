package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noticeworks/lienclock/internal/application/registry"
	"github.com/noticeworks/lienclock/internal/config"
	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/internal/infrastructure/database/postgres"
	"github.com/noticeworks/lienclock/internal/infrastructure/database/redis"
	"github.com/noticeworks/lienclock/pkg/client"
	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// NewRulesCmd creates the rules command group.
func NewRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and manage the jurisdiction rule set",
	}
	cmd.AddCommand(
		newRulesListCmd(),
		newRulesShowCmd(),
		newRulesValidateCmd(),
		newRulesReloadCmd(),
		newRulesSyncCmd(),
	)
	return cmd
}

func newRulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every jurisdiction and the origin of its rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			cl, err := buildClient(cliCtx)
			if err != nil {
				return err
			}
			defer cl.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			if err := cl.Warm(ctx); err != nil {
				return err
			}
			return PrintResult(cmd, &rulesListView{cl.Snapshot()})
		},
	}
}

func newRulesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <jurisdiction>",
		Short: "Show the full rule document for one jurisdiction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			code := deadline.NormalizeJurisdiction(args[0])
			if !code.IsValid() {
				return errors.UnknownJurisdiction(args[0])
			}

			src, closer, err := buildRuleSource(cliCtx)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			reg := registry.New(src, cliCtx.Logger)
			doc, err := reg.Resolve(ctx, code)
			if err != nil {
				return err
			}

			origin := registry.OriginStatic
			for _, e := range reg.Entries() {
				if e.Code == code {
					origin = e.Origin
				}
			}
			return PrintResult(cmd, &ruleShowView{JurisdictionRule: doc, Origin: origin})
		},
	}
}

func newRulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Strictly validate the configured rule source",
		Long: "Fetch the configured rule source and validate every row the way a\n" +
			"reload would, without serving the result. The embedded static set is\n" +
			"validated when no durable backend is configured.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			src, closer, err := buildRuleSource(cliCtx)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			reg := registry.New(src, cliCtx.Logger)
			if err := reg.Reload(ctx); err != nil {
				return err
			}

			info := reg.Info()
			PrintSuccess(cmd, fmt.Sprintf("rule set valid: %d rules (%d from store, %d embedded)",
				info.RulesTotal, info.FromStore, info.FromStatic))
			return nil
		},
	}
}

func newRulesReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Re-fetch the rule set from the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			cl, err := buildClient(cliCtx)
			if err != nil {
				return err
			}
			defer cl.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			if err := cl.ReloadRules(ctx); err != nil {
				return err
			}

			snap := cl.Snapshot()
			PrintSuccess(cmd, fmt.Sprintf("rule snapshot revision %d: %d rules, origin %s",
				snap.Revision, snap.RulesTotal, snap.Origin))
			return nil
		},
	}
}

func newRulesSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Seed the configured durable store from the embedded rule set",
		Long: "Write the embedded rule set for all jurisdictions into the configured\n" +
			"durable store, creating the schema when needed. Existing rows are\n" +
			"overwritten and their revision advances.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			cfg := cliCtx.Config
			switch cfg.Rules.Backend {
			case config.RuleBackendPostgres:
				return syncPostgres(ctx, cmd, cliCtx)
			case config.RuleBackendRedis:
				return syncRedis(ctx, cmd, cliCtx)
			default:
				return errors.InvalidArgument("rules sync requires a durable backend (postgres or redis)")
			}
		},
	}
}

func syncPostgres(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext) error {
	conn, err := postgres.NewConnection(cliCtx.Config.Database, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := postgres.NewRuleStore(conn, cliCtx.Logger)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	n, err := store.Seed(ctx, rule.StaticRules())
	if err != nil {
		return err
	}
	PrintSuccess(cmd, fmt.Sprintf("seeded %d jurisdictions into postgres", n))
	return nil
}

func syncRedis(ctx context.Context, cmd *cobra.Command, cliCtx *CLIContext) error {
	rc, err := redis.NewClient(cliCtx.Config.Redis, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer rc.Close()

	prefix := cliCtx.Config.Redis.KeyPrefix
	if prefix == "" {
		prefix = config.DefaultRedisKeyPrefix
	}

	// One writer at a time; concurrent syncs would interleave their pipelines.
	lock := redis.NewLock(rc, prefix+"sync.lock", 30*time.Second)
	ok, err := lock.TryAcquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Conflict("another rules sync holds the seed lock")
	}
	defer lock.Release(ctx)

	store := redis.NewRuleStore(rc, prefix, cliCtx.Logger)
	n, err := store.Seed(ctx, rule.StaticRules())
	if err != nil {
		return err
	}
	PrintSuccess(cmd, fmt.Sprintf("seeded %d jurisdictions into redis", n))
	return nil
}

// rulesListView renders the snapshot for each output format.
type rulesListView struct {
	client.Snapshot
}

func (v *rulesListView) TableHeaders() []string {
	return []string{"CODE", "STATE", "ORIGIN", "FLAGS"}
}

func (v *rulesListView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		rows = append(rows, []string{e.Code, e.StateName, e.Origin, strings.Join(e.Flags, ",")})
	}
	return rows
}

func (v *rulesListView) String() string {
	var sb strings.Builder
	sb.WriteString(FormatTable(v.TableHeaders(), v.TableRows()))
	fmt.Fprintf(&sb, "\n%d rules, revision %d (%d from store, %d embedded)\n",
		v.RulesTotal, v.Revision, v.FromStore, v.FromStatic)
	return sb.String()
}

// ruleShowView renders one jurisdiction's rule document.
type ruleShowView struct {
	*rule.JurisdictionRule
	Origin string `json:"origin"`
}

func (v *ruleShowView) TableHeaders() []string {
	return []string{"FIELD", "VALUE"}
}

func (v *ruleShowView) TableRows() [][]string {
	rows := [][]string{
		{"code", string(v.Code)},
		{"state", v.StateName},
		{"origin", v.Origin},
		{"preliminary notice", v.noticeSummary()},
		{"lien filing", describeRule(v.LienFiling)},
	}
	if len(v.SpecialFlags) > 0 {
		flags := make([]string, 0, len(v.SpecialFlags))
		for _, f := range v.SpecialFlags {
			flags = append(flags, string(f))
		}
		rows = append(rows, []string{"flags", strings.Join(flags, ",")})
	}
	return rows
}

func (v *ruleShowView) String() string {
	return FormatTable(v.TableHeaders(), v.TableRows())
}

func (v *ruleShowView) noticeSummary() string {
	if v.PreliminaryNotice.Kind == rule.PolicyNone {
		return "not required"
	}
	return describeRule(v.PreliminaryNotice.Rule)
}

// describeRule renders a rule tree as one line of prose.
func describeRule(r *rule.DeadlineRule) string {
	if r == nil {
		return "none"
	}
	switch r.Kind {
	case rule.KindFlatDays:
		return fmt.Sprintf("%d calendar days", r.Days)
	case rule.KindBusinessDays:
		return fmt.Sprintf("%d business days", r.Days)
	case rule.KindMonthPlusDay:
		return fmt.Sprintf("day %d of the %s month after", r.Day, ordinal(r.Months))
	case rule.KindRoleDependent:
		parts := make([]string, 0, len(r.ByRole))
		for _, role := range deadline.PartyRoles() {
			if sub, ok := r.ByRole[role]; ok {
				parts = append(parts, fmt.Sprintf("%s: %s", role, describeRule(sub)))
			}
		}
		return "by role (" + strings.Join(parts, "; ") + ")"
	case rule.KindConditional:
		if r.IfFalse == nil {
			return fmt.Sprintf("if %s: %s, otherwise not required", r.Predicate, describeRule(r.IfTrue))
		}
		return fmt.Sprintf("if %s: %s, otherwise %s", r.Predicate, describeRule(r.IfTrue), describeRule(r.IfFalse))
	default:
		return string(r.Kind)
	}
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
