package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Haazy99/AgencyTest2/lib/mypubsub"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/lib/myuuid"
)

type exampleEvent struct {
	CompanyID string `json:"companyId"`
}

func (e exampleEvent) GetEventTypeName() string { return "example.happened" }
func (e exampleEvent) GetAggregateName() string { return e.CompanyID }

func TestPublisher(t *testing.T) {
	c := context.Background()

	setup := func(t *testing.T, ctrl *gomock.Controller) (*publisher, *mypubsub.MockPubSub) {
		pubsubMock := mypubsub.NewMockPubSub(ctrl)
		nowerMock := mytime.NewMockNower(ctrl)
		nowerMock.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		uuiderMock := myuuid.NewMockUUIDer(ctrl)
		uuiderMock.EXPECT().Create().Return("abc123").AnyTimes()
		return New(pubsubMock, nowerMock, uuiderMock), pubsubMock
	}

	t.Run("Publish wraps event in envelope", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, pubsubMock := setup(t, ctrl)

		pubsubMock.EXPECT().Publish(gomock.Any(), "ghl", gomock.Any()).DoAndReturn(func(c context.Context, topic string, data string) error {
			envelope := EventEnvelope{}
			require.NoError(t, json.Unmarshal([]byte(data), &envelope))
			assert.Equal(t, "abc123", envelope.UID)
			assert.Equal(t, mytime.ExampleTime, envelope.CreatedAt)
			assert.Equal(t, "ghl", envelope.Topic)
			assert.Equal(t, "comp1", envelope.AggregateUID)
			assert.Equal(t, "example.happened", envelope.EventTypeName)
			assert.JSONEq(t, `{"companyId":"comp1"}`, envelope.EventPayload)
			return nil
		})

		err := sut.Publish(c, "ghl", exampleEvent{CompanyID: "comp1"})
		assert.NoError(t, err)
	})

	t.Run("Publish failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sut, pubsubMock := setup(t, ctrl)

		pubsubMock.EXPECT().Publish(gomock.Any(), "ghl", gomock.Any()).Return(fmt.Errorf("broker down"))

		err := sut.Publish(c, "ghl", exampleEvent{CompanyID: "comp1"})
		assert.ErrorContains(t, err, "broker down")
	})
}

func TestCreateTopic(t *testing.T) {
	ctrl := gomock.NewController(t)
	pubsubMock := mypubsub.NewMockPubSub(ctrl)
	pubsubMock.EXPECT().CreateTopic(gomock.Any(), "ghl").Return(nil)

	sut := New(pubsubMock, mytime.NewMockNower(ctrl), myuuid.NewMockUUIDer(ctrl))
	assert.NoError(t, sut.CreateTopic(context.Background(), "ghl"))
}
