package procurement

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusPendingApproval   Status = "pending_approval"
	StatusApproved          Status = "approved"
	StatusSentToSupplier    Status = "sent_to_supplier"
	StatusAcknowledged      Status = "acknowledged"
	StatusPartiallyReceived Status = "partially_received"
	StatusFullyReceived     Status = "fully_received"
	StatusInvoiced          Status = "invoiced"
	StatusClosed            Status = "closed"
	StatusCancelled         Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:             {StatusPendingApproval, StatusCancelled},
	StatusPendingApproval:   {StatusApproved, StatusDraft, StatusCancelled},
	StatusApproved:          {StatusSentToSupplier, StatusCancelled},
	StatusSentToSupplier:    {StatusAcknowledged, StatusPartiallyReceived, StatusFullyReceived, StatusCancelled},
	StatusAcknowledged:      {StatusPartiallyReceived, StatusFullyReceived, StatusCancelled},
	StatusPartiallyReceived: {StatusPartiallyReceived, StatusFullyReceived, StatusCancelled},
	StatusFullyReceived:     {StatusInvoiced},
	StatusInvoiced:          {StatusClosed},
	StatusClosed:            {},
	StatusCancelled:         {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// CanReceive reports whether goods may be booked against the order.
func (s Status) CanReceive() bool {
	return s == StatusSentToSupplier || s == StatusAcknowledged || s == StatusPartiallyReceived
}

func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// LineStatus tracks receiving per line.
type LineStatus string

const (
	LineStatusOpen              LineStatus = "open"
	LineStatusPartiallyReceived LineStatus = "partially_received"
	LineStatusFullyReceived     LineStatus = "fully_received"
	LineStatusCancelled         LineStatus = "cancelled"
)
