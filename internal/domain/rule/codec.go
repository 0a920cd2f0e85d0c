package rule

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/noticeworks/lienclock/pkg/errors"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// ruleDoc is the wire shape of a DeadlineRule. The "type" field
// discriminates the variant; only that variant's fields are emitted.
type ruleDoc struct {
	Type      VariantKind                          `json:"type"`
	Days      int                                  `json:"days,omitempty"`
	Months    int                                  `json:"months,omitempty"`
	Day       int                                  `json:"day,omitempty"`
	ByRole    map[deadline.PartyRole]*DeadlineRule `json:"by_role,omitempty"`
	Predicate string                               `json:"predicate,omitempty"`
	IfTrue    *DeadlineRule                        `json:"if_true,omitempty"`
	IfFalse   *DeadlineRule                        `json:"if_false,omitempty"`
}

var jsonNull = []byte("null")

// MarshalJSON emits the discriminated wire form.
func (r DeadlineRule) MarshalJSON() ([]byte, error) {
	doc := ruleDoc{Type: r.Kind}
	switch r.Kind {
	case KindFlatDays, KindBusinessDays:
		doc.Days = r.Days
	case KindMonthPlusDay:
		doc.Months = r.Months
		doc.Day = r.Day
	case KindRoleDependent:
		doc.ByRole = r.ByRole
	case KindConditional:
		doc.Predicate = r.Predicate
		doc.IfTrue = r.IfTrue
		doc.IfFalse = r.IfFalse
	default:
		return nil, errors.New(errors.ErrCodeRuleUnknownVariant,
			fmt.Sprintf("cannot encode rule variant %q", r.Kind))
	}
	return json.Marshal(doc)
}

// UnmarshalJSON parses the discriminated wire form. Unknown discriminators
// are rejected here; structural completeness is the job of Validate.
func (r *DeadlineRule) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	var doc ruleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, errors.ErrCodeRuleDecodeFailed, "malformed rule document")
	}
	if !doc.Type.IsValid() {
		return errors.New(errors.ErrCodeRuleUnknownVariant,
			fmt.Sprintf("unknown rule variant %q", doc.Type))
	}
	*r = DeadlineRule{
		Kind:      doc.Type,
		Days:      doc.Days,
		Months:    doc.Months,
		Day:       doc.Day,
		ByRole:    doc.ByRole,
		Predicate: doc.Predicate,
		IfTrue:    doc.IfTrue,
		IfFalse:   doc.IfFalse,
	}
	return nil
}

// EncodeRule serializes a rule tree for storage.
func EncodeRule(r *DeadlineRule) ([]byte, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeRuleDecodeFailed, "cannot encode nil rule")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode rule")
	}
	return data, nil
}

// DecodeRule parses a stored rule tree. It does not validate; callers that
// load rules into the registry validate the enclosing document.
func DecodeRule(data []byte) (*DeadlineRule, error) {
	var r DeadlineRule
	if err := json.Unmarshal(data, &r); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.Wrap(err, errors.ErrCodeRuleDecodeFailed, "decode rule")
	}
	return &r, nil
}

// EncodeDocument serializes a whole jurisdiction document, for stores that
// keep one value per code.
func EncodeDocument(doc *JurisdictionRule) ([]byte, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeRuleDecodeFailed, "cannot encode nil document")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode jurisdiction document")
	}
	return data, nil
}

// DecodeDocument parses a stored jurisdiction document.
func DecodeDocument(data []byte) (*JurisdictionRule, error) {
	var doc JurisdictionRule
	if err := json.Unmarshal(data, &doc); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.Wrap(err, errors.ErrCodeRuleDecodeFailed, "decode jurisdiction document")
	}
	return &doc, nil
}

// EncodePolicy serializes a notice policy for storage.
func EncodePolicy(p NoticePolicy) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode notice policy")
	}
	return data, nil
}

// DecodePolicy parses a stored notice policy.
func DecodePolicy(data []byte) (NoticePolicy, error) {
	var p NoticePolicy
	if err := json.Unmarshal(data, &p); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return NoticePolicy{}, appErr
		}
		return NoticePolicy{}, errors.Wrap(err, errors.ErrCodeRuleDecodeFailed, "decode notice policy")
	}
	return p, nil
}
