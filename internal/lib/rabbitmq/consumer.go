package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
)

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, body []byte) error

// Consume читает очередь queueName и обрабатывает до prefetch сообщений одновременно.
// Возвращается после отмены ctx или закрытия канала, дождавшись запущенных обработчиков.
func Consume(ctx context.Context, ch *amqp.Channel, queueName string, handler Handler, log *slog.Logger) error {
	const op = "rabbitmq.Consume"
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	Dispatch(ctx, deliveries, handler, log)
	return nil
}

// Dispatch раздаёт доставки обработчику с ограничением параллелизма.
func Dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler, log *slog.Logger) {
	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, prefetch)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := handler(ctx, d.Body); err != nil {
					log.Error("failed to handle message", slog.String("queue", d.RoutingKey), sl.Err(err))
					if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		}
	}
}
