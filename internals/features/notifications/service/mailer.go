package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/wneessen/go-mail"

	"fcehub_backend/internals/configs"
	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
)

const sendTimeout = 30 * time.Second

type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Mailer is the SMTP-backed lifecycle.Notifier. Notify returns at once;
// delivery happens on its own goroutine with its own deadline.
type Mailer struct {
	client  sender
	from    string
	timeout time.Duration
	wg      sync.WaitGroup
}

var _ lifecycle.Notifier = (*Mailer)(nil)

// NewMailerFromEnv returns a mailer that only logs when SMTP_HOST is unset.
func NewMailerFromEnv() *Mailer {
	m := &Mailer{from: configs.MailFrom, timeout: sendTimeout}
	if configs.SMTPHost == "" {
		return m
	}

	opts := []mail.Option{
		mail.WithPort(configs.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(sendTimeout),
	}
	if configs.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(configs.SMTPUsername),
			mail.WithPassword(configs.SMTPPassword),
		)
	}
	c, err := mail.NewClient(configs.SMTPHost, opts...)
	if err != nil {
		log.Printf("[MAIL] ❌ smtp client: %v (emails disabled)", err)
		return m
	}
	m.client = c
	log.Printf("[MAIL] ✅ smtp %s:%d", configs.SMTPHost, configs.SMTPPort)
	return m
}

func (m *Mailer) Notify(ctx context.Context, template string, app model.ApplicationModel) {
	email, err := Render(template, app)
	if err != nil {
		log.Printf("[MAIL] skip %s for application=%s: %v", template, app.ApplicationID, err)
		return
	}
	if m.client == nil {
		log.Printf("[MAIL] (smtp disabled) %s → %s: %s", template, email.To, email.Subject)
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		if err := m.send(sendCtx, email); err != nil {
			log.Printf("[MAIL] ❌ %s → %s application=%s: %v", template, email.To, app.ApplicationID, err)
			return
		}
		log.Printf("[MAIL] ✅ %s → %s application=%s", template, email.To, app.ApplicationID)
	}()
}

func (m *Mailer) send(ctx context.Context, e *Email) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(e.To); err != nil {
		return err
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextPlain, e.Body)
	return m.client.DialAndSendWithContext(ctx, msg)
}

// Wait blocks until queued emails are sent or timed out. Called on shutdown.
func (m *Mailer) Wait() { m.wg.Wait() }
