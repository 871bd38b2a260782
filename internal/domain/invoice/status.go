package invoice

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

var allowedTransitions = map[Status][]Status{
	StatusDraft:     {StatusPending, StatusSubmitted, StatusCancelled},
	StatusPending:   {StatusSubmitted, StatusApproved, StatusCancelled},
	StatusSubmitted: {StatusApproved, StatusPaid, StatusCancelled},
	StatusApproved:  {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// AllowedTransitions returns the statuses reachable from s in one step.
func (s Status) AllowedTransitions() []Status {
	next := allowedTransitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// OpenStatuses are the statuses of invoices that still expect payment.
func OpenStatuses() []Status {
	return []Status{StatusDraft, StatusPending, StatusSubmitted, StatusApproved}
}

// Type distinguishes invoices the company issued from supplier invoices it received.
type Type string

const (
	TypeIssued   Type = "issued"
	TypeReceived Type = "received"
)

func (t Type) IsValid() bool {
	return t == TypeIssued || t == TypeReceived
}
