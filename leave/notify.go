package leave

import (
	"context"
	"log/slog"
)

// Notifier is told about approval-chain events after the transition
// committed. Implementations must not block; delivery failures never
// roll back a transition.
type Notifier interface {
	// ApprovalRequested fires when a new request enters the chain.
	ApprovalRequested(ctx context.Context, req LeaveRequest, pending Role)
	// Progressed fires when a non-final role approved.
	Progressed(ctx context.Context, req LeaveRequest, approved Role, next Role)
	// Finalized fires on APPROVED, REJECTED, or CANCELLED.
	Finalized(ctx context.Context, req LeaveRequest)
}

// LogNotifier records the notification fact via structured logging.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) ApprovalRequested(ctx context.Context, req LeaveRequest, pending Role) {
	n.Logger.InfoContext(ctx, "approval requested",
		"request_id", req.ID, "employee_id", req.EmployeeID, "pending_role", string(pending))
}

func (n *LogNotifier) Progressed(ctx context.Context, req LeaveRequest, approved Role, next Role) {
	n.Logger.InfoContext(ctx, "approval step completed",
		"request_id", req.ID, "approved_by_role", string(approved), "next_role", string(next))
}

func (n *LogNotifier) Finalized(ctx context.Context, req LeaveRequest) {
	n.Logger.InfoContext(ctx, "request finalized",
		"request_id", req.ID, "employee_id", req.EmployeeID, "status", string(req.Status))
}

// NopNotifier discards all events. Used in tests.
type NopNotifier struct{}

func (NopNotifier) ApprovalRequested(context.Context, LeaveRequest, Role) {}
func (NopNotifier) Progressed(context.Context, LeaveRequest, Role, Role)  {}
func (NopNotifier) Finalized(context.Context, LeaveRequest)               {}
