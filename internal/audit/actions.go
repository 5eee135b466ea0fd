package audit

// Action is the closed vocabulary of lifecycle event codes.
// Extending it requires a coordinated change to the transition and
// reconciliation logic that interprets these codes.
type Action string

const (
	ActionCreate           Action = "create"
	ActionEdit             Action = "edit"
	ActionReactivate       Action = "reactivate"
	ActionDelete           Action = "delete"
	ActionCancel           Action = "cancel"
	ActionArchive          Action = "archive"
	ActionApprove          Action = "approve"
	ActionReject           Action = "reject"
	ActionChangeStatus     Action = "change_status"
	ActionAddPhase         Action = "add_phase"
	ActionUpdatePhase      Action = "update_phase"
	ActionRequestInput     Action = "request_input"
	ActionSendNotification Action = "send_notification"
	ActionRequestUpdate    Action = "request_update"
	ActionAssignOwner      Action = "assign_owner"
	ActionRequestChange    Action = "request_change"
	ActionApproveManager   Action = "approve_manager"
	ActionRejectManager    Action = "reject_manager"
	ActionApproveCommittee Action = "approve_committee"
	ActionRejectCommittee  Action = "reject_committee"
	ActionApproveTechnical Action = "approve_technical"
	ActionRejectTechnical  Action = "reject_technical"
	ActionLogDailyUpdate   Action = "log_daily_update"
	ActionScopeChange      Action = "scope_change"
)

var knownActions = map[Action]struct{}{
	ActionCreate: {}, ActionEdit: {}, ActionReactivate: {}, ActionDelete: {},
	ActionCancel: {}, ActionArchive: {}, ActionApprove: {}, ActionReject: {},
	ActionChangeStatus: {}, ActionAddPhase: {}, ActionUpdatePhase: {},
	ActionRequestInput: {}, ActionSendNotification: {}, ActionRequestUpdate: {},
	ActionAssignOwner: {}, ActionRequestChange: {}, ActionApproveManager: {},
	ActionRejectManager: {}, ActionApproveCommittee: {}, ActionRejectCommittee: {},
	ActionApproveTechnical: {}, ActionRejectTechnical: {}, ActionLogDailyUpdate: {},
	ActionScopeChange: {},
}

func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}
