package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/common"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

var (
	computeJurisdiction  string
	computeProjectType   string
	computeRole          string
	computeReferenceDate string
	computeFacts         []string
)

// NewComputeCmd creates the compute command.
func NewComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute preliminary-notice and lien-filing deadlines",
		Long: "Compute the preliminary-notice and lien-filing deadlines for one claim\n" +
			"from the jurisdiction's rules, the claimant's role and project type, and\n" +
			"the reference date the statute counts from.",
		Example: `  lienclock compute -j TX --role subcontractor --reference-date 2024-01-10
  lienclock compute -j OH --role subcontractor --reference-date 2024-02-01 \
      --fact notice_of_commencement_filed=true -o json`,
		RunE: runCompute,
	}

	f := cmd.Flags()
	f.StringVarP(&computeJurisdiction, "jurisdiction", "j", "", "jurisdiction code (two-letter state or DC)")
	f.StringVar(&computeProjectType, "project-type", "nonresidential", "project type (residential, nonresidential)")
	f.StringVar(&computeRole, "role", "", "claimant role (contractor, subcontractor, supplier)")
	f.StringVar(&computeReferenceDate, "reference-date", "", "date the statute counts from (YYYY-MM-DD)")
	f.StringArrayVar(&computeFacts, "fact", nil, "conditional fact as name=true|false (repeatable)")
	cmd.MarkFlagRequired("jurisdiction")
	cmd.MarkFlagRequired("role")
	cmd.MarkFlagRequired("reference-date")

	return cmd
}

func runCompute(cmd *cobra.Command, _ []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	ref, err := common.ParseDate(computeReferenceDate)
	if err != nil {
		return err
	}
	facts, err := parseFacts(computeFacts)
	if err != nil {
		return err
	}

	req := &deadline.RequestContext{
		Jurisdiction:     deadline.NormalizeJurisdiction(computeJurisdiction),
		ProjectType:      deadline.ProjectType(strings.ToLower(computeProjectType)),
		PartyRole:        deadline.PartyRole(strings.ToLower(computeRole)),
		ReferenceDate:    ref,
		ConditionalFacts: facts,
	}

	cl, err := buildClient(cliCtx)
	if err != nil {
		return err
	}
	defer cl.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	res, err := cl.ComputeDeadlines(ctx, req)
	if err != nil {
		return err
	}

	return PrintResult(cmd, &computeView{Result: res})
}

// parseFacts turns repeated name=true|false flags into a fact map.
func parseFacts(pairs []string) (deadline.Facts, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	facts := make(deadline.Facts, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.InvalidParam(fmt.Sprintf("fact %q is not of the form name=true|false", pair))
		}
		val, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, errors.InvalidParam(fmt.Sprintf("fact %q is not of the form name=true|false", pair))
		}
		facts[name] = val
	}
	return facts, nil
}

// computeView renders a deadline result for each output format.
type computeView struct {
	*deadline.Result
}

func (v *computeView) TableHeaders() []string {
	return []string{"DEADLINE", "DATE", "NOTE"}
}

func (v *computeView) TableRows() [][]string {
	var rows [][]string
	if v.PreliminaryNotice.Required() {
		rows = append(rows, []string{"preliminary notice", v.PreliminaryNotice.Deadline.String(), ""})
	} else {
		rows = append(rows, []string{"preliminary notice", "-", v.noticeAbsence()})
	}
	rows = append(rows, []string{"lien filing", v.LienFiling.String(), ""})
	for _, w := range v.Warnings {
		rows = append(rows, []string{"warning", "", w})
	}
	return rows
}

func (v *computeView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", v.StateName, v.Jurisdiction)
	if v.PreliminaryNotice.Required() {
		fmt.Fprintf(&sb, "  preliminary notice due: %s\n", v.PreliminaryNotice.Deadline)
	} else {
		fmt.Fprintf(&sb, "  preliminary notice:     not required (%s)\n", v.noticeAbsence())
	}
	fmt.Fprintf(&sb, "  lien filing due:        %s\n", v.LienFiling)
	for _, w := range v.Warnings {
		fmt.Fprintf(&sb, "  warning: %s\n", w)
	}
	return sb.String()
}

func (v *computeView) noticeAbsence() string {
	if v.PreliminaryNotice.Condition != "" {
		return fmt.Sprintf("%s: %s", v.PreliminaryNotice.Reason, v.PreliminaryNotice.Condition)
	}
	return string(v.PreliminaryNotice.Reason)
}
