// Package iostore persists collector state across runs.
package iostore

import (
	"sync"

	"github.com/claritylab/clarity/internal/contract"
)

// StoreManagerImpl manages the checkpoint and run stores.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	checkpoints  contract.CheckpointStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetCheckpointStore returns the checkpoint CheckpointStore.
func (mgr *StoreManagerImpl) GetCheckpointStore() contract.CheckpointStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.checkpoints
}

// GetRunStore returns the run RunStore. It is nil when run tracking
// is disabled.
func (mgr *StoreManagerImpl) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
