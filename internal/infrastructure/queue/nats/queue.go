package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/infrastructure/resilience"
)

const (
	DefaultSubject    = "board.servo.angle"
	DefaultQueueGroup = "actuators"

	msgIDHeader = "Nats-Msg-Id"
)

// Queue carries servo commands between the API and actuator workers.
type Queue struct {
	conn        *nats.Conn
	subject     string
	queueGroup  string
	executor    *resilience.Executor
	onMalformed func(error)
}

type Options struct {
	ClientName           string
	QueueGroup           string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	// OnMalformed is called for every message that fails to decode.
	OnMalformed func(error)
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	name := options.ClientName
	if name == "" {
		name = "oracion-board"
	}

	conn, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newQueue(conn, subject, options), nil
}

func newQueue(conn *nats.Conn, subject string, options Options) *Queue {
	if subject == "" {
		subject = DefaultSubject
	}
	group := options.QueueGroup
	if group == "" {
		group = DefaultQueueGroup
	}
	return &Queue{
		conn:        conn,
		subject:     subject,
		queueGroup:  group,
		executor:    options.ResilienceExecutor,
		onMalformed: options.OnMalformed,
	}
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishCommand(ctx context.Context, cmd domain.ActuatorCommand) error {
	data, err := encodeCommand(cmd)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(q.subject)
	msg.Header.Set(msgIDHeader, cmd.CommandID)
	msg.Data = data

	call := func(_ context.Context) error {
		if err := q.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeCommands blocks until ctx is done, then drains the subscription.
func (q *Queue) SubscribeCommands(ctx context.Context, handler func(context.Context, domain.ActuatorCommand) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, q.queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		q.dispatch(ctx, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *Queue) dispatch(ctx context.Context, data []byte, handler func(context.Context, domain.ActuatorCommand) error) {
	cmd, err := decodeCommand(data)
	if err != nil {
		slog.Warn("actuator_command_dropped", "subject", q.subject, "error", err)
		if q.onMalformed != nil {
			q.onMalformed(err)
		}
		return
	}

	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := handler(handlerCtx, cmd); err != nil {
		slog.Error("actuator_handler_error", "command_id", cmd.CommandID, "angle", cmd.Angle, "error", err)
	}
}
