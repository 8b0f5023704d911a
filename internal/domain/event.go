package domain

import "time"

// DefaultRoom is joined automatically by every client on connect.
const DefaultRoom = "news-updates"

type EventType string

const (
	EventNewArticle   EventType = "new-article"
	EventBulkUpdate   EventType = "bulk-update"
	EventLiveUpdate   EventType = "live-update"
	EventBreakingNews EventType = "breaking-news"
	EventAPIStatus    EventType = "api-status"
	EventNotification EventType = "notification"
	EventHeartbeat    EventType = "heartbeat"
)

// Event is the wire envelope broadcast to connected clients.
// It is ephemeral and never persisted.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Breaking  bool      `json:"isBreaking,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// BulkPayload carries the result of an ingestion tick that added
// more than one article.
type BulkPayload struct {
	Count    int       `json:"count"`
	Articles []Article `json:"articles,omitempty"`
}

func NewArticleEvent(article Article, breaking bool, at time.Time) Event {
	t := EventNewArticle
	if breaking {
		t = EventBreakingNews
	}
	return Event{Type: t, Timestamp: at, Breaking: breaking, Payload: article}
}

func NewBulkUpdateEvent(articles []Article, at time.Time) Event {
	return Event{
		Type:      EventBulkUpdate,
		Timestamp: at,
		Payload:   BulkPayload{Count: len(articles), Articles: articles},
	}
}

func NewHeartbeatEvent(at time.Time) Event {
	return Event{Type: EventHeartbeat, Timestamp: at}
}
