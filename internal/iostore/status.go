package iostore

import (
	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// CollectStoreStatuses gathers status from every configured store. A
// store that fails its status query is reported as a warning and left
// out, so a broken backend does not block the status command.
func CollectStoreStatuses(mgr contract.StoreManager) []schema.StoreStatus {
	var statuses []schema.StoreStatus

	if checkpoints := mgr.GetCheckpointStore(); checkpoints != nil {
		status, err := checkpoints.GetStatus()
		if err != nil {
			contract.LogWarn("checkpoint store status", err)
		} else {
			statuses = append(statuses, status)
		}
	}

	if runs := mgr.GetRunStore(); runs != nil {
		status, err := runs.GetStatus()
		if err != nil {
			contract.LogWarn("run store status", err)
		} else {
			statuses = append(statuses, status)
		}
	}

	return statuses
}
