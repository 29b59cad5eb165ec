package notifier

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/beanery/order-service/internal/config"
	"github.com/beanery/order-service/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

var (
	emailsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "notifier",
		Name:      "emails_enqueued_total",
		Help:      "Total number of emails accepted into the queue.",
	})

	emailsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "notifier",
		Name:      "emails_dropped_total",
		Help:      "Total number of emails dropped because the queue was full.",
	})

	emailsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "notifier",
		Name:      "emails_published_total",
		Help:      "Total number of emails published to the notifications topic.",
	})

	emailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "notifier",
		Name:      "emails_failed_total",
		Help:      "Total number of failed email publish attempts.",
	})
)

// message — полезная нагрузка для внешнего почтового релея
type message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type kafkaNotifier struct {
	logger *slog.Logger
	writer *kafka.Writer
	from   string
	queue  chan service.Email
}

func NewKafkaNotifier(logger *slog.Logger, cfg config.Kafka, mail config.Mail) *kafkaNotifier {
	return &kafkaNotifier{
		logger: logger.With(slog.String("component", "notifier")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		from:  mail.From,
		queue: make(chan service.Email, mail.QueueSize),
	}
}

// Enqueue никогда не блокирует запрос: при переполнении письмо теряется,
// это фиксируется в логе и метрике
func (n *kafkaNotifier) Enqueue(email service.Email) {
	select {
	case n.queue <- email:
		emailsEnqueued.Inc()
	default:
		emailsDropped.Inc()
		n.logger.Warn("notification queue full, email dropped", slog.String("to", email.To))
	}
}

// Start запускает фонового воркера. Публикация идёт после того, как ответ
// уже отдан клиенту, и её исход до вызывающего не доходит.
func (n *kafkaNotifier) Start(ctx context.Context) error {
	go func() {
		for {
			select {
			case email := <-n.queue:
				n.publish(ctx, email)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (n *kafkaNotifier) publish(ctx context.Context, email service.Email) {
	payload, err := json.Marshal(message{
		From:    n.from,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		emailsFailed.Inc()
		n.logger.Error("failed to marshal email", slog.Any("error", err))
		return
	}

	// at-most-once: ошибка публикации только логируется, повторов нет
	if err := n.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		emailsFailed.Inc()
		n.logger.Error("failed to publish email", slog.String("to", email.To), slog.Any("error", err))
		return
	}

	emailsPublished.Inc()
}

func (n *kafkaNotifier) Close() error {
	return n.writer.Close()
}
