package rule

import (
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// Embedded rule set covering every supported jurisdiction. It is the
// correctness backstop behind the durable store: load-time backfill uses it
// for any code the store lacks, and a completely unreachable store at
// startup leaves the engine running on this set alone. Values reflect the
// statutory deadline charts for each state as of mid-2026; corrections ship
// through the durable store first and land here at the next release.
//
// Notices that fall due before the reference date (pre-furnishing notices,
// notices of intent served shortly before filing) are not computable from a
// reference date and are carried as "no notice" here.

// StaticRules returns a freshly built rule document for every supported
// jurisdiction. Each call returns new values, so callers may mutate their
// copy freely.
func StaticRules() map[deadline.JurisdictionCode]*JurisdictionRule {
	return map[deadline.JurisdictionCode]*JurisdictionRule{
		"AL": doc("AL", NoNotice(),
			byRole(FlatDays(180), FlatDays(120), FlatDays(120))),
		"AK": doc("AK", NoticeRule(FlatDays(30)),
			FlatDays(90)),
		"AZ": doc("AZ", NoticeRule(FlatDays(20)),
			Conditional(FactNoticeOfCompletionRecorded, FlatDays(60), FlatDays(120))),
		"AR": doc("AR", NoticeRule(FlatDays(75)),
			FlatDays(120)),
		"CA": doc("CA", NoticeRule(FlatDays(20)),
			Conditional(FactNoticeOfCompletionRecorded, FlatDays(60), FlatDays(90))),
		"CO": doc("CO", NoNotice(),
			FlatDays(120)),
		"CT": doc("CT", NoNotice(),
			FlatDays(90)),
		"DE": doc("DE", NoNotice(),
			byRole(FlatDays(180), FlatDays(120), FlatDays(120))),
		"DC": doc("DC", NoNotice(),
			FlatDays(90)),
		"FL": doc("FL", NoticeRule(FlatDays(45)),
			FlatDays(90)),
		"GA": doc("GA", NoticeRule(Conditional(FactNoticeOfCommencementFiled, FlatDays(30), nil)),
			FlatDays(90)),
		"HI": doc("HI", NoNotice(),
			FlatDays(45), FlagShortestDeadline),
		"ID": doc("ID", NoNotice(),
			FlatDays(90)),
		"IL": doc("IL", NoticeRule(residential(FlatDays(60), FlatDays(90))),
			FlatDays(120)),
		"IN": doc("IN", NoticeRule(residential(FlatDays(30), FlatDays(60))),
			residential(FlatDays(60), FlatDays(90))),
		"IA": doc("IA", NoticeRule(FlatDays(30)),
			FlatDays(90)),
		"KS": doc("KS", NoNotice(),
			byRole(FlatDays(120), FlatDays(90), FlatDays(90))),
		"KY": doc("KY", NoticeRule(FlatDays(75)),
			FlatDays(180)),
		"LA": doc("LA", NoNotice(),
			FlatDays(60), FlagPrivilegeTerminology),
		"ME": doc("ME", NoNotice(),
			FlatDays(90)),
		"MD": doc("MD", NoticeRule(FlatDays(120)),
			FlatDays(180)),
		"MA": doc("MA", NoNotice(),
			FlatDays(90)),
		"MI": doc("MI", NoticeRule(FlatDays(20)),
			FlatDays(90)),
		"MN": doc("MN", NoticeRule(FlatDays(45)),
			FlatDays(120)),
		"MS": doc("MS", NoNotice(),
			FlatDays(90)),
		"MO": doc("MO", NoNotice(),
			FlatDays(180)),
		"MT": doc("MT", NoticeRule(FlatDays(20)),
			FlatDays(90)),
		"NE": doc("NE", NoNotice(),
			FlatDays(120)),
		"NV": doc("NV", NoticeRule(FlatDays(31)),
			Conditional(FactNoticeOfCompletionRecorded, FlatDays(40), FlatDays(90))),
		"NH": doc("NH", NoNotice(),
			FlatDays(120)),
		"NJ": doc("NJ", NoticeRule(Conditional(deadline.FactProjectIsResidential, FlatDays(60), nil)),
			residential(FlatDays(120), FlatDays(90))),
		"NM": doc("NM", NoticeRule(FlatDays(60)),
			byRole(FlatDays(120), FlatDays(90), FlatDays(90))),
		"NY": doc("NY", NoNotice(),
			residential(FlatDays(120), FlatDays(240))),
		"NC": doc("NC", NoNotice(),
			FlatDays(120)),
		"ND": doc("ND", NoNotice(),
			FlatDays(90)),
		"OH": doc("OH", NoticeRule(Conditional(FactNoticeOfCommencementFiled, FlatDays(21), nil)),
			residential(FlatDays(60), FlatDays(75))),
		"OK": doc("OK", NoticeRule(FlatDays(75)),
			byRole(FlatDays(120), FlatDays(90), FlatDays(90))),
		// Oregon's notice window runs in business days, the only state
		// counted that way.
		"OR": doc("OR", NoticeRule(BusinessDays(8)),
			FlatDays(75), FlagBusinessDaysOnly),
		"PA": doc("PA", NoNotice(),
			FlatDays(180)),
		"RI": doc("RI", NoNotice(),
			FlatDays(200)),
		"SC": doc("SC", NoNotice(),
			FlatDays(90)),
		"SD": doc("SD", NoNotice(),
			FlatDays(120)),
		"TN": doc("TN", NoNotice(),
			byRole(FlatDays(365), FlatDays(90), FlatDays(90))),
		// Texas runs on the "15th day of the Nth month" statutory formula,
		// one month earlier on residential projects.
		"TX": doc("TX", NoticeRule(residential(MonthPlusDay(2, 15), MonthPlusDay(3, 15))),
			residential(MonthPlusDay(3, 15), MonthPlusDay(4, 15))),
		"UT": doc("UT", NoticeRule(FlatDays(20)),
			Conditional(FactNoticeOfCompletionRecorded, FlatDays(90), FlatDays(180))),
		"VT": doc("VT", NoNotice(),
			FlatDays(180)),
		// Virginia counts ninety days from the end of the month in which
		// work last happened; the clamped end-of-month formula captures it.
		"VA": doc("VA", NoNotice(),
			MonthPlusDay(3, 31)),
		"WA": doc("WA", NoticeRule(residential(FlatDays(10), FlatDays(60))),
			FlatDays(90)),
		"WV": doc("WV", NoNotice(),
			FlatDays(100)),
		"WI": doc("WI", NoticeRule(FlatDays(60)),
			FlatDays(180)),
		"WY": doc("WY", NoticeRule(FlatDays(30)),
			byRole(FlatDays(150), FlatDays(120), FlatDays(120))),
	}
}

// Custom predicates the embedded rule set branches on. Callers supply them
// through conditional_facts; the project-type facts are derived by the
// engine instead.
const (
	// FactNoticeOfCommencementFiled — whether the owner recorded a Notice
	// of Commencement for the project.
	FactNoticeOfCommencementFiled = "notice_of_commencement_filed"
	// FactNoticeOfCompletionRecorded — whether a Notice of Completion was
	// recorded, which shortens several lien windows.
	FactNoticeOfCompletionRecorded = "notice_of_completion_recorded"
)

func doc(code deadline.JurisdictionCode, prelim NoticePolicy, lien *DeadlineRule, flags ...SpecialFlag) *JurisdictionRule {
	return &JurisdictionRule{
		Code:              code,
		StateName:         code.StateName(),
		PreliminaryNotice: prelim,
		LienFiling:        lien,
		SpecialFlags:      flags,
	}
}

// byRole builds a role map covering every supported role, so resolution can
// never miss.
func byRole(contractor, subcontractor, supplier *DeadlineRule) *DeadlineRule {
	return RoleDependent(map[deadline.PartyRole]*DeadlineRule{
		deadline.RoleContractor:    contractor,
		deadline.RoleSubcontractor: subcontractor,
		deadline.RoleSupplier:      supplier,
	})
}

// residential branches on the engine-derived residential fact.
func residential(ifResidential, otherwise *DeadlineRule) *DeadlineRule {
	return Conditional(deadline.FactProjectIsResidential, ifResidential, otherwise)
}
