package iostore

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetCheckpointStore implements the StoreManager interface.
func (m *MockStoreManager) GetCheckpointStore() contract.CheckpointStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CheckpointStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockCheckpointStore is a mock implementation of CheckpointStore for testing.
type MockCheckpointStore struct {
	mock.Mock
}

var _ contract.CheckpointStore = &MockCheckpointStore{} // Compile-time check

// Get implements the CheckpointStore interface.
func (m *MockCheckpointStore) Get(sha, fingerprint string) (schema.CommitMetricRow, bool, error) {
	args := m.Called(sha, fingerprint)
	return args.Get(0).(schema.CommitMetricRow), args.Bool(1), args.Error(2)
}

// Put implements the CheckpointStore interface.
func (m *MockCheckpointStore) Put(row schema.CommitMetricRow, fingerprint string, timestamp int64) error {
	args := m.Called(row, fingerprint, timestamp)
	return args.Error(0)
}

// All implements the CheckpointStore interface.
func (m *MockCheckpointStore) All(fingerprint string) ([]schema.CommitMetricRow, error) {
	args := m.Called(fingerprint)
	rows, _ := args.Get(0).([]schema.CommitMetricRow)
	return rows, args.Error(1)
}

// GetStatus implements the CheckpointStore interface.
func (m *MockCheckpointStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Clear implements the CheckpointStore interface.
func (m *MockCheckpointStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the CheckpointStore interface.
func (m *MockCheckpointStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(start time.Time, workers int, notes string) (int64, error) {
	args := m.Called(start, workers, notes)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(id int64, end time.Time, summary schema.CollectSummary) error {
	args := m.Called(id, end, summary)
	return args.Error(0)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Clear implements the RunStore interface.
func (m *MockRunStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
