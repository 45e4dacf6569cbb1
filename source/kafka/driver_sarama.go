package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"
	"golang.org/x/sync/semaphore"

	"augment/internal/frame"
	"augment/internal/logging"
)

// SaramaDriver consumes a consumer group and emits one frame per record.
// In-flight frames are bounded by Config.MaxInFlight; in e2e mode a slot is
// only returned when the frame's checkpoint is acked.
type SaramaDriver struct {
	cfg      Config
	group    sarama.ConsumerGroup
	inflight *semaphore.Weighted
	log      *slog.Logger

	mu      sync.Mutex
	pending map[frame.Checkpoint]func()
}

func (d *SaramaDriver) Configure(config Config) error {
	d.cfg = config
	d.pending = make(map[frame.Checkpoint]func())
	d.inflight = semaphore.NewWeighted(config.MaxInFlight)
	d.log = logging.For("kafka-source").With("group", config.GroupID)

	ver, err := sarama.ParseKafkaVersion(config.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	sc.Consumer.Offsets.AutoCommit.Enable = true
	sc.Consumer.Offsets.AutoCommit.Interval = config.CommitInt
	if config.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if config.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = config.SASLUser, config.SASLPass
	}
	switch config.StartFrom {
	case "oldest":
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	default:
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	d.group, err = sarama.NewConsumerGroup(config.Brokers, config.GroupID, sc)
	if err != nil {
		return fmt.Errorf("kafka: consumer group: %w", err)
	}
	return nil
}

func (d *SaramaDriver) Run(ctx context.Context, emit EmitFunc) error {
	go func() {
		for err := range d.group.Errors() {
			d.log.Warn("consumer group error", "err", err)
		}
	}()

	handler := &groupHandler{driver: d, emit: emit}
	for {
		if err := d.group.Consume(ctx, d.cfg.Topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (d *SaramaDriver) Close() error {
	if d.group == nil {
		return nil
	}
	return d.group.Close()
}

// OnAck resolves the frame identified by cp. Unknown checkpoints (auto mode,
// or frames from a revoked session) are ignored.
func (d *SaramaDriver) OnAck(cp frame.Checkpoint) {
	d.mu.Lock()
	cb, ok := d.pending[cp]
	if ok {
		delete(d.pending, cp)
	}
	d.mu.Unlock()
	if ok {
		cb()
		d.log.Debug("kafka ack released", "checkpoint", cp.String())
	}
}

func (d *SaramaDriver) track(cp frame.Checkpoint, cb func()) {
	d.mu.Lock()
	d.pending[cp] = cb
	d.mu.Unlock()
}

func (d *SaramaDriver) untrack(cp frame.Checkpoint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[cp]
	delete(d.pending, cp)
	return ok
}

type groupHandler struct {
	driver *SaramaDriver
	emit   EmitFunc
}

func (*groupHandler) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup drops callbacks of the ending session and returns their slots; the
// records will be redelivered to whichever member owns the partition next.
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	d := h.driver
	d.mu.Lock()
	dropped := len(d.pending)
	d.pending = make(map[frame.Checkpoint]func())
	d.mu.Unlock()

	if dropped > 0 {
		d.inflight.Release(int64(dropped))
		d.log.Info("rebalance cleared pending acks", "count", dropped)
	}
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	d := h.driver
	var offsets tracker[*sarama.ConsumerMessage]
	for {
		select {
		case <-sess.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := d.inflight.Acquire(sess.Context(), 1); err != nil {
				return nil
			}

			f := &frame.Frame{
				Key:        msg.Key,
				Value:      msg.Value,
				Headers:    toHeaderMap(msg.Headers),
				Ts:         msg.Timestamp,
				Checkpoint: frame.Checkpoint{Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset},
			}

			if d.cfg.CommitMode == CommitAuto {
				err := h.emit(f)
				sess.MarkMessage(msg, "")
				d.inflight.Release(1)
				if err != nil {
					return err
				}
				continue
			}

			// Tracked before emit: sinks may ack synchronously.
			resolve := offsets.Track(msg)
			d.track(f.Checkpoint, func() {
				if hi := resolve(); hi != nil {
					sess.MarkMessage(*hi, "")
				}
				d.inflight.Release(1)
			})
			if err := h.emit(f); err != nil {
				if d.untrack(f.Checkpoint) {
					d.inflight.Release(1)
				}
				return err
			}
		}
	}
}

func toHeaderMap(src []*sarama.RecordHeader) map[string][]byte {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(src))
	for _, h := range src {
		out[string(h.Key)] = h.Value
	}
	return out
}
