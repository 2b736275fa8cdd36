package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mypubsub"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/lib/myuuid"
)

type publisher struct {
	pubsub mypubsub.PubSub
	nower  mytime.Nower
	uuider myuuid.UUIDer
	logger mylog.Logger
}

func New(pubsub mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) *publisher {
	return &publisher{
		pubsub: pubsub,
		nower:  nower,
		uuider: uuider,
		logger: mylog.New("publisher"),
	}
}

func (p *publisher) CreateTopic(c context.Context, topic string) error {
	return p.pubsub.CreateTopic(c, topic)
}

func (p *publisher) Publish(c context.Context, topic string, event Event) error {
	envelope, err := p.envelope(topic, event)
	if err != nil {
		return err
	}

	jsonBytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("error serializing envelope: %s", err)
	}

	err = p.pubsub.Publish(c, topic, string(jsonBytes))
	if err != nil {
		return fmt.Errorf("error publishing event %s: %s", envelope, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityDebug, "Published event %s", envelope)

	return nil
}

func (p *publisher) envelope(topic string, event Event) (EventEnvelope, error) {
	jsonPayload, err := json.Marshal(event)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("error marshalling event-payload: %s", err)
	}
	return EventEnvelope{
		UID:           p.uuider.Create(),
		CreatedAt:     p.nower.Now(),
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(jsonPayload),
	}, nil
}
