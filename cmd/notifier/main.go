package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/bomberos-dev/guardias/backend/internal/config"
	"github.com/bomberos-dev/guardias/backend/internal/domain"
)

// Fallback channel: the WhatsApp pipeline consumes the same queue; this
// worker mails a digest to the group contact so roster changes are never
// silent when that pipeline is down.
var digestTemplates = map[string]*template.Template{
	domain.NotificationAssignmentsCreated: template.Must(template.New(domain.NotificationAssignmentsCreated).Parse(
		`<p>Se cargaron <b>{{.Count}}</b> guardias nuevas para el grupo {{.GroupID}}.</p>`)),
	domain.NotificationDayReplaced: template.Must(template.New(domain.NotificationDayReplaced).Parse(
		`<p>Se reemplazó la agenda del grupo {{.GroupID}} para el día <b>{{.Fecha}}</b>: ahora tiene {{.Count}} guardias.</p>`)),
	domain.NotificationRangeDeleted: template.Must(template.New(domain.NotificationRangeDeleted).Parse(
		`<p>Se eliminaron <b>{{.Count}}</b> guardias del grupo {{.GroupID}} entre {{.Desde}} y {{.Hasta}}.</p>`)),
}

var digestSubjects = map[string]string{
	domain.NotificationAssignmentsCreated: "Guardias - nuevas asignaciones",
	domain.NotificationDayReplaced:        "Guardias - día reemplazado",
	domain.NotificationRangeDeleted:       "Guardias - asignaciones eliminadas",
}

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * mail client
	 **********************************************/
	client, err := mail.NewClient(cfg.Notifications.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Notifications.SMTP.Port),
		mail.WithUsername(cfg.Notifications.SMTP.Username),
		mail.WithPassword(cfg.Notifications.SMTP.Password),
	)
	if err != nil {
		logger.Error("no se pudo crear el cliente de correo", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Notifications.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("no se pudo conectar al servidor de correo", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("no se pudo conectar a rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("no se pudo abrir el canal de rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,  // durable, survives broker restarts
		false, // no auto-delete when there is no consumer
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo declarar la cola de notificaciones", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo consumir la cola", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("mensaje recibido", slog.String("message", string(msg.Body)))

				notification := domain.NotificationMessage{}
				if err := json.Unmarshal(msg.Body, &notification); err != nil {
					logger.Error("no se pudo deserializar la notificación", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				tmpl, ok := digestTemplates[notification.Type]
				if !ok {
					logger.Error("tipo de notificación desconocido", slog.String("type", notification.Type))
					_ = msg.Nack(false, false)
					continue
				}

				if notification.To == "" {
					// the group has no contact address; the WhatsApp pipeline
					// is the only consumer for this message
					_ = msg.Ack(false)
					continue
				}

				m := mail.NewMsg()
				if err := m.From(cfg.Notifications.SMTP.Username); err != nil {
					logger.Error("no se pudo fijar el remitente", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(notification.To); err != nil {
					logger.Error("no se pudo fijar el destinatario", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.SetBodyHTMLTemplate(tmpl, notification); err != nil {
					logger.Error("no se pudo armar el cuerpo del correo", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				m.Subject(digestSubjects[notification.Type])

				if err := client.DialAndSend(m); err != nil {
					logger.Error("no se pudo enviar el correo", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue, transient transport failure
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("esperando notificaciones... (CTRL+C para salir)")
	<-sigChan

	slog.Info("apagando el notifier...")
	cancel()
	wg.Wait()
	slog.Info("notifier apagado correctamente")
}
