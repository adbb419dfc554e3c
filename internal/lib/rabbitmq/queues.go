package rabbitmq

// Exchange — обменник, через который ходят все уведомления.
const Exchange = "notifications"

// Очередь и ключ маршрутизации уведомлений об истечении подписки.
const (
	QueueExpiring      = "notification.expiring"
	RoutingKeyExpiring = "expiring"
)

const prefetch = 10

// QueueConfig описывает очередь и ключ, которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди, которые объявляют и планировщик, и отправитель.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueExpiring, RoutingKey: RoutingKeyExpiring},
	}
}
