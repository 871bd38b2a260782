package identity

import (
	"github.com/documentiulia/backend/internal/domain/shared"
)

const AggregateTypeUser = "User"

const (
	EventTypeUserCreated = "UserCreated"
	EventTypeUserLocked  = "UserLocked"
)

type UserEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func NewUserEvent(eventType string, u *User) *UserEvent {
	return &UserEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeUser, u.ID, u.TenantID),
		Username:        u.Username,
		Role:            u.Role,
	}
}
