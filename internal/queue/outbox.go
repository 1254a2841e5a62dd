package queue

import (
	"context"
	"encoding/json"

	rd "github.com/redis/go-redis/v9"
)

// Outbox appends booking events to a Redis Stream after the owning
// transaction has committed. The stream decouples the order path from
// notification delivery: the relay drains it into Kafka on its own time.
type Outbox struct {
	rdb    *rd.Client
	stream string
}

func NewOutbox(rdb *rd.Client, stream string) *Outbox {
	return &Outbox{rdb: rdb, stream: stream}
}

// Emit appends one event. Callers treat failure as a warning, never as a
// reason to fail the already-committed order.
func (o *Outbox) Emit(ctx context.Context, ev BookingEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return o.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: o.stream,
		Values: map[string]interface{}{"payload": payload},
	}).Err()
}
