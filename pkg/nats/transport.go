package nats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName holds every ingest subject. Work-queue retention deletes a
	// job once the consumer acks it.
	StreamName    = "AXIOM_INGEST"
	subjectPrefix = "ingest."
	uuidHeader    = "Watermill-Uuid"
	module        = "nats"
)

var errClosed = errors.New("nats transport is closed")

// Transport carries watermill messages over JetStream so ingest jobs survive
// a restart. It satisfies both message.Publisher and message.Subscriber.
type Transport struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger

	closing  chan struct{}
	mu       sync.Mutex
	closed   bool
	consumes []jetstream.ConsumeContext
	outputs  []chan *message.Message
}

var (
	_ message.Publisher  = (*Transport)(nil)
	_ message.Subscriber = (*Transport)(nil)
)

func Connect(ctx context.Context, url string, log logger.ILogger) (*Transport, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", StreamName, err)
	}

	return &Transport{nc: nc, js: js, logger: log, closing: make(chan struct{})}, nil
}

func Subject(topic string) string {
	return subjectPrefix + topic
}

func durableName(topic string) string {
	return "axiom-" + topic
}

func (t *Transport) Publish(topic string, messages ...*message.Message) error {
	if t.isClosed() {
		return errClosed
	}
	for _, msg := range messages {
		ctx := msg.Context()
		if _, err := t.js.PublishMsg(ctx, toNatsMsg(Subject(topic), msg)); err != nil {
			return fmt.Errorf("publish %s to %s: %w", msg.UUID, topic, err)
		}
	}
	return nil
}

// Subscribe delivers one message at a time and waits for its ack before
// pulling the next. A nack or a cancelled context redelivers the job.
func (t *Transport) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, errClosed
	}

	consumer, err := t.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName(topic),
		FilterSubject: Subject(topic),
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxAckPending: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer for %s: %w", topic, err)
	}

	output := make(chan *message.Message)
	cc, err := consumer.Consume(func(jm jetstream.Msg) {
		t.deliver(ctx, output, jm)
	})
	if err != nil {
		close(output)
		return nil, fmt.Errorf("consume %s: %w", topic, err)
	}

	t.consumes = append(t.consumes, cc)
	t.outputs = append(t.outputs, output)
	return output, nil
}

func (t *Transport) deliver(ctx context.Context, output chan<- *message.Message, jm jetstream.Msg) {
	msg := fromNats(jm.Headers(), jm.Data())
	msgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	msg.SetContext(msgCtx)

	select {
	case output <- msg:
	case <-ctx.Done():
		_ = jm.Nak()
		return
	case <-t.closing:
		_ = jm.Nak()
		return
	}

	select {
	case <-msg.Acked():
		if err := jm.Ack(); err != nil {
			t.logger.Warn(module, "Ack failed", map[string]interface{}{
				"message_id": msg.UUID,
				"error":      err.Error(),
			})
		}
	case <-msg.Nacked():
		_ = jm.Nak()
	case <-ctx.Done():
		_ = jm.Nak()
	case <-t.closing:
		_ = jm.Nak()
	}
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.closing)
	consumes := t.consumes
	outputs := t.outputs
	t.mu.Unlock()

	for _, cc := range consumes {
		cc.Stop()
	}
	for _, cc := range consumes {
		<-cc.Closed()
	}
	for _, out := range outputs {
		close(out)
	}

	if err := t.nc.Drain(); err != nil {
		t.nc.Close()
		return err
	}
	return nil
}

func toNatsMsg(subject string, msg *message.Message) *nats.Msg {
	nm := nats.NewMsg(subject)
	nm.Data = msg.Payload
	nm.Header.Set(uuidHeader, msg.UUID)
	for k, v := range msg.Metadata {
		nm.Header.Set(k, v)
	}
	return nm
}

func fromNats(header nats.Header, data []byte) *message.Message {
	msg := message.NewMessage(header.Get(uuidHeader), data)
	for k := range header {
		if k == uuidHeader {
			continue
		}
		msg.Metadata.Set(k, header.Get(k))
	}
	return msg
}
