package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"petheaven/internal/notify"
)

// Notifier consumes booking events from Kafka and hands them to the
// dispatch boundary. It fails independently of the order path: a bad
// dispatch is logged and the consumer moves on.
type Notifier struct {
	r          *kafka.Reader
	dispatcher notify.Dispatcher
}

func NewNotifier(brokers []string, topic, groupID string, dispatcher notify.Dispatcher) *Notifier {
	return &Notifier{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		dispatcher: dispatcher,
	}
}

func (n *Notifier) Close() error { return n.r.Close() }

func (n *Notifier) Run(ctx context.Context) {
	for {
		m, err := n.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancelled or connection lost
		}

		var ev BookingEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			log.Printf("[NOTIFIER] [WARN] unmarshal: %v", err)
			continue
		}
		if err := ev.Validate(); err != nil {
			log.Printf("[NOTIFIER] [WARN] invalid event id=%s: %v", ev.EventID, err)
			continue
		}

		notification := notify.Notification{
			Kind:      ev.Kind,
			Recipient: ev.Recipient,
			OrderID:   ev.OrderID,
			Facts: map[string]string{
				"petName":     ev.PetName,
				"serviceName": ev.ServiceName,
				"scheduledAt": ev.ScheduledAt,
			},
		}
		if err := n.dispatcher.Dispatch(ctx, notification); err != nil {
			log.Printf("[NOTIFIER] [WARN] dispatch %s order=%s: %v", ev.Kind, ev.OrderID, err)
		}
	}
}
