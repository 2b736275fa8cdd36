package mypubsub

import (
	"context"

	"github.com/Haazy99/AgencyTest2/lib/mylog"
)

type loggingPubSub struct {
	logger mylog.Logger
}

func newLoggingPubSub() *loggingPubSub {
	return &loggingPubSub{
		logger: mylog.New("pubsub"),
	}
}

func (ps *loggingPubSub) CreateTopic(c context.Context, topic string) error {
	return nil
}

func (ps *loggingPubSub) Publish(c context.Context, topic string, data string) error {
	ps.logger.Log(c, topic, mylog.SeverityInfo, "Event: %s", data)
	return nil
}
