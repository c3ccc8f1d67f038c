package booking

type Status string

const (
	StatusPendingCustomerConfirmation   Status = "PendingCustomerConfirmation"
	StatusPendingTechnicianConfirmation Status = "PendingTechnicianConfirmation"
	StatusConfirmed                     Status = "Confirmed"
	StatusOnTheWay                      Status = "OnTheWay"
	StatusInProgress                    Status = "InProgress"
	StatusCompleted                     Status = "Completed"
	StatusCancelled                     Status = "Cancelled"
)

// progression orders the forward path of the lifecycle. Cancelled sits
// outside it, reachable from any non-terminal state.
var progression = map[Status]int{
	StatusPendingCustomerConfirmation:   0,
	StatusPendingTechnicianConfirmation: 1,
	StatusConfirmed:                     2,
	StatusOnTheWay:                      3,
	StatusInProgress:                    4,
	StatusCompleted:                     5,
}

func (s Status) IsValid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := progression[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanAdvanceTo permits single forward steps along the progression. Complete
// is intentionally reachable from any non-cancelled state (see Complete on
// the entity), so this gate applies only to the intermediate confirmations.
func (s Status) CanAdvanceTo(next Status) bool {
	cur, ok := progression[s]
	if !ok {
		return false
	}
	nxt, ok := progression[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}
