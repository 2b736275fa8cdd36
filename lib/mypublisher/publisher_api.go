package mypublisher

import (
	"context"
	"time"
)

type EventEnvelope struct {
	UID           string    `json:"uid"`
	CreatedAt     time.Time `json:"createdAt"`
	Topic         string    `json:"topic"`
	AggregateUID  string    `json:"aggregateUid"`
	EventTypeName string    `json:"eventTypeName"`
	EventPayload  string    `json:"eventPayload"`
}

func (e EventEnvelope) String() string {
	return e.Topic + "." + e.EventTypeName + "." + e.AggregateUID
}

type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}

//go:generate mockgen -source=publisher_api.go -package mypublisher -destination publisher_mock.go Publisher
type Publisher interface {
	CreateTopic(c context.Context, topic string) error
	Publish(c context.Context, topic string, event Event) error
}
