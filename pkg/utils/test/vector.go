package testutils

import (
	"context"

	"github.com/papercomputeco/verbatim/pkg/vector"
)

// MockVectorDriver is a test vector driver backed by slices. Supports
// optional metadata storage so engine init paths can be exercised.
type MockVectorDriver struct {
	Records []vector.Record

	// Results is returned from Query, truncated to topK.
	Results []vector.QueryResult

	// QueryErr, AddErr, and CountErr force failures.
	QueryErr error
	AddErr   error
	CountErr error

	// Meta holds written index metadata; HasMeta tracks whether any was
	// written.
	Meta    vector.IndexMeta
	HasMeta bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{}
}

func (m *MockVectorDriver) Add(_ context.Context, records []vector.Record) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Records = append(m.Records, records...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, topK int) ([]vector.QueryResult, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if len(m.Results) < topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

func (m *MockVectorDriver) Count(_ context.Context) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return len(m.Records), nil
}

func (m *MockVectorDriver) WriteMeta(_ context.Context, meta vector.IndexMeta) error {
	m.Meta = meta
	m.HasMeta = true
	return nil
}

func (m *MockVectorDriver) ReadMeta(_ context.Context) (vector.IndexMeta, error) {
	if !m.HasMeta {
		return vector.IndexMeta{}, vector.ErrNoMeta
	}
	return m.Meta, nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}

var (
	_ vector.Driver    = (*MockVectorDriver)(nil)
	_ vector.MetaStore = (*MockVectorDriver)(nil)
)
