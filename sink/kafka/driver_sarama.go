package kafka

import (
	"fmt"

	"github.com/IBM/sarama"

	"augment/internal/frame"
	"augment/sink"
)

type Config struct {
	Brokers []string
	Topic   string
	Acks    int16 // 0, 1, -1
}

// driver produces each frame synchronously and acks it once the broker
// confirmed the write.
type driver struct {
	cfg Config
	p   sarama.SyncProducer
	ack sink.EmitFn
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: expected Config, got %T", c)
	}
	if cfg.Topic == "" || len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka-sink: brokers and topic are required")
	}
	d.cfg = cfg

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return fmt.Errorf("kafka-sink: %w", err)
	}
	d.p = p
	return nil
}

func (d *driver) Push(f *frame.Frame) error {
	msg := &sarama.ProducerMessage{
		Topic:     d.cfg.Topic,
		Key:       sarama.ByteEncoder(f.Key),
		Value:     sarama.ByteEncoder(f.Value),
		Timestamp: f.Ts,
	}
	for k, v := range f.Headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(k), Value: v})
	}
	if _, _, err := d.p.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka-sink: send %s: %w", f.Checkpoint, err)
	}
	if d.ack != nil {
		d.ack(f.Checkpoint)
	}
	return nil
}

func (d *driver) BindAck(fn sink.EmitFn) { d.ack = fn }

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	err := d.p.Close()
	d.p = nil
	return err
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
