package testutil

import (
	"context"
	"sync"

	"github.com/noticeworks/lienclock/internal/domain/rule"
	"github.com/noticeworks/lienclock/pkg/types/deadline"
)

// MockRuleSource implements rule.Source with settable contents and failure
// mode. FetchAll clones every document so callers cannot corrupt the mock's
// state through published snapshots.
type MockRuleSource struct {
	mu         sync.Mutex
	sourceName string
	rows       map[deadline.JurisdictionCode]*rule.JurisdictionRule
	err        error
	fetchCalls int
}

var _ rule.Source = (*MockRuleSource)(nil)

func NewMockRuleSource() *MockRuleSource {
	return &MockRuleSource{
		sourceName: "mock",
		rows:       make(map[deadline.JurisdictionCode]*rule.JurisdictionRule),
	}
}

func (m *MockRuleSource) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sourceName
}

func (m *MockRuleSource) FetchAll(ctx context.Context) (map[deadline.JurisdictionCode]*rule.JurisdictionRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[deadline.JurisdictionCode]*rule.JurisdictionRule, len(m.rows))
	for code, doc := range m.rows {
		out[code] = doc.Clone()
	}
	return out, nil
}

// SetName changes the reported source name.
func (m *MockRuleSource) SetName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceName = name
}

// SetRow stores one document.
func (m *MockRuleSource) SetRow(doc *rule.JurisdictionRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[doc.Code] = doc
}

// SetError makes every subsequent FetchAll fail with err; nil restores
// normal operation.
func (m *MockRuleSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FetchCalls reports how many times FetchAll has run.
func (m *MockRuleSource) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}
