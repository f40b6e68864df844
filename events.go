package qurantag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/future-architect/gocloudurls"
	"go.uber.org/zap"
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub"
)

// ShardEvent is published after a shard finishes a stage.
type ShardEvent struct {
	RunID    string `json:"run"`
	Stage    string `json:"stage"`
	Shard    int    `json:"shard"`
	Revision string `json:"revision"`
	Total    int    `json:"total"`
	Unknown  int    `json:"unknown"`
	Resolved int    `json:"resolved"`
	Partial  int    `json:"partial"`
}

var dummyFanOut = func(message *pubsub.Message) error { return nil }

func openTopic(ctx context.Context, eventUrl string) (*pubsub.Topic, error) {
	url, err := gocloudurls.NormalizePubSubURL(eventUrl)
	if err != nil {
		return nil, fmt.Errorf("Can't parse event URL: %w", err)
	}
	topic, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("Can't open topic: %w", err)
	}
	return topic, nil
}

// DecodeShardEvent reads the body of a received message.
func DecodeShardEvent(msg *pubsub.Message) (ShardEvent, error) {
	var event ShardEvent
	err := json.Unmarshal(msg.Body, &event)
	return event, err
}

// publish never fails a stage. A send error is only logged.
func (p *Pipeline) publish(report ShardReport) {
	event := ShardEvent{
		RunID:    p.runID,
		Stage:    report.Stage,
		Shard:    report.Shard,
		Revision: report.Revision,
		Total:    report.Total,
		Unknown:  report.StillUnknown,
		Resolved: report.Reclassified,
		Partial:  report.Partial,
	}
	body, err := json.Marshal(&event)
	if err != nil {
		p.logger.Warn("can't encode shard event", zap.Error(err))
		return
	}
	err = p.fanOut(&pubsub.Message{
		Body: body,
		Metadata: map[string]string{
			"stage": event.Stage,
			"shard": strconv.Itoa(event.Shard),
			"run":   event.RunID,
		},
	})
	if err != nil {
		p.logger.Warn("can't publish shard event",
			zap.String("stage", event.Stage), zap.Int("shard", event.Shard), zap.Error(err))
	}
}
