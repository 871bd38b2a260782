package content

import (
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypeForumTopic = "ForumTopic"
	AggregateTypeBlogPost   = "BlogPost"
)

const (
	EventTypeTopicCreated  = "ForumTopicCreated"
	EventTypeBlogPublished = "BlogPostPublished"
)

type ContentEvent struct {
	shared.BaseDomainEvent
}

func NewContentEvent(eventType, aggType string, aggID, tenantID uuid.UUID) *ContentEvent {
	return &ContentEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, aggID, tenantID)}
}
