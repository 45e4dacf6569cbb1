package kafka

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"augment/internal/frame"
)

func TestDriver_PushAcksAfterSend(t *testing.T) {
	sc := mocks.NewTestConfig()
	sc.Producer.Return.Successes = true
	p := mocks.NewSyncProducer(t, sc)
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "payload" {
			return errors.New("unexpected value")
		}
		return nil
	})
	p.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	d := &driver{cfg: Config{Topic: "media-out"}, p: p}
	var acked []frame.Checkpoint
	d.BindAck(func(cp frame.Checkpoint) { acked = append(acked, cp) })

	ok := &frame.Frame{Value: []byte("payload"), Headers: map[string][]byte{"k": []byte("v")}, Checkpoint: frame.Checkpoint{Topic: "in", Offset: 1}}
	if err := d.Push(ok); err != nil {
		t.Fatalf("Push: %v", err)
	}
	bad := &frame.Frame{Value: []byte("payload"), Checkpoint: frame.Checkpoint{Topic: "in", Offset: 2}}
	if err := d.Push(bad); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("want ErrOutOfBrokers, got %v", err)
	}
	if len(acked) != 1 || acked[0].Offset != 1 {
		t.Fatalf("only the delivered frame should be acked, got %v", acked)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDriver_ConfigureValidates(t *testing.T) {
	d := &driver{}
	if err := d.Configure(Config{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Fatal("expected missing topic error")
	}
	if err := d.Configure("nope"); err == nil {
		t.Fatal("expected type error")
	}
}
