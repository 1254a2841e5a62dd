package queue

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// Relay forwards booking events from the Redis Stream outbox to Kafka.
// An entry is ACKed only after its Kafka publish succeeds; failures leave
// the entry pending for the next pass.
type Relay struct {
	rdb      *rd.Client
	producer *Producer

	stream   string
	group    string
	consumer string
}

func NewRelay(rdb *rd.Client, producer *Producer, stream, group, consumer string) *Relay {
	return &Relay{
		rdb:      rdb,
		producer: producer,
		stream:   stream,
		group:    group,
		consumer: consumer,
	}
}

func (r *Relay) Run(ctx context.Context) {
	if err := r.ensureGroup(ctx); err != nil {
		log.Printf("[RELAY] [ERROR] ensure group: %v", err)
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}

		// Drain this consumer's pending entries before reading new ones.
		msgs, err := r.readGroup(ctx, "0", 0)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("[RELAY] [ERROR] read pending: %v", err)
			time.Sleep(300 * time.Millisecond)
			continue
		}
		if len(msgs) == 0 {
			msgs, err = r.readGroup(ctx, ">", 2*time.Second)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("[RELAY] [ERROR] read new: %v", err)
				time.Sleep(300 * time.Millisecond)
				continue
			}
		}

		for _, xm := range msgs {
			if err := r.processOne(ctx, xm); err != nil {
				log.Printf("[RELAY] [WARN] message id=%s: %v", xm.ID, err)
				time.Sleep(200 * time.Millisecond)
				break
			}
		}
	}
}

func (r *Relay) ensureGroup(ctx context.Context) error {
	err := r.rdb.XGroupCreateMkStream(ctx, r.stream, r.group, "0").Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

func (r *Relay) readGroup(ctx context.Context, streamID string, block time.Duration) ([]rd.XMessage, error) {
	streams, err := r.rdb.XReadGroup(ctx, &rd.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, streamID},
		Count:    16,
		Block:    block,
		NoAck:    false,
	}).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return streams[0].Messages, nil
}

func (r *Relay) processOne(ctx context.Context, xm rd.XMessage) error {
	raw, ok := xm.Values["payload"].(string)
	if !ok {
		// Malformed entry, drop it so it cannot wedge the stream.
		log.Printf("[RELAY] [WARN] dropping entry without payload id=%s", xm.ID)
		return r.rdb.XAck(ctx, r.stream, r.group, xm.ID).Err()
	}

	if err := r.producer.PublishRaw(ctx, xm.ID, []byte(raw)); err != nil {
		return err
	}
	return r.rdb.XAck(ctx, r.stream, r.group, xm.ID).Err()
}
