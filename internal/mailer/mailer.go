// Package mailer moves outbound email off the request path. Handlers and
// services publish EmailJob messages to RabbitMQ; the worker consumes them
// and delivers over SMTP.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"gopkg.in/gomail.v2"

	"github.com/dessertshop/storefront-api/internal/config"
	"github.com/dessertshop/storefront-api/internal/model"
)

const (
	emailQueueName = "emails"
	dlxExchange    = "emails.dlx"
	dlqQueueName   = "emails.dlq"
)

// SetupRabbitMQ declares the email queue with its dead-letter exchange and
// queue. Messages that fail delivery are nacked without requeue and land in
// the DLQ for inspection.
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, emailQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(emailQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": emailQueueName,
	}); err != nil {
		return fmt.Errorf("declare email queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

// Publisher implements the mail-publisher side over an AMQP channel.
type Publisher struct {
	channel *amqp.Channel
}

func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{channel: ch}
}

func (p *Publisher) PublishEmail(ctx context.Context, job model.EmailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	err = p.channel.PublishWithContext(ctx, "", emailQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}
	return nil
}

// Sender delivers one email. The SMTP implementation is swapped for a fake
// in worker tests.
type Sender interface {
	Send(job model.EmailJob) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) Send(job model.EmailJob) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", job.To)
	if job.ReplyTo != "" {
		msg.SetHeader("Reply-To", job.ReplyTo)
	}
	msg.SetHeader("Subject", job.Subject)
	msg.SetBody("text/plain", job.Body)
	return s.dialer.DialAndSend(msg)
}

// Worker consumes the email queue and delivers through a Sender.
type Worker struct {
	channel *amqp.Channel
	sender  Sender
	log     *slog.Logger
	done    chan struct{}
}

func NewWorker(ch *amqp.Channel, sender Sender, log *slog.Logger) *Worker {
	return &Worker{channel: ch, sender: sender, log: log, done: make(chan struct{})}
}

func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(emailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("mail worker started")
	return nil
}

func (w *Worker) Stop() { close(w.done) }

func (w *Worker) processMessage(msg amqp.Delivery) {
	var job model.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		w.log.Error("unmarshal email job", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("job_id", job.ID, "to", job.To)
	if err := w.sender.Send(job); err != nil {
		log.Error("send email failed", "error", err)
		_ = msg.Nack(false, false) // to DLQ
		return
	}

	_ = msg.Ack(false)
	log.Info("email sent")
}
