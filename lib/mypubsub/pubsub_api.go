package mypubsub

import "context"

//go:generate mockgen -source=pubsub_api.go -package mypubsub -destination pubsub_mock.go PubSub
type PubSub interface {
	Publish(c context.Context, topic string, data string) error
	CreateTopic(c context.Context, topic string) error
}

type Backend string

const (
	BackendLog    Backend = "log"
	BackendPubSub Backend = "pubsub"
)

func New(c context.Context, backend Backend, projectID string) (PubSub, func(), error) {
	switch backend {
	case BackendPubSub:
		return newGcloudPubSub(c, projectID)
	default:
		return newLoggingPubSub(), func() {}, nil
	}
}
