package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/constants"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

const (
	ChannelSMTP     = "smtp"
	ChannelSendGrid = "sendgrid"
	ChannelSMS      = "sms"
)

type Email struct {
	FromName  string
	FromEmail string
	ToName    string
	ToEmail   string
	Subject   string
	PlainText string
	HTML      string
}

type EmailSender interface {
	Send(ctx context.Context, e Email) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type SMTPCredentials struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Delivery holds the outbound channels. Platform and SMS are nil when the
// platform SendGrid or Twilio account is not configured.
type Delivery struct {
	NewSMTP   func(SMTPCredentials) EmailSender
	Platform  EmailSender
	SMS       SMSSender
	FromEmail string
}

func NewDelivery(cfg *config.Config) *Delivery {
	d := &Delivery{
		NewSMTP:   func(c SMTPCredentials) EmailSender { return NewSMTPSender(c) },
		FromEmail: cfg.LDFlag_SendgridFromEmail,
	}
	if cfg.SendGridAPIKey != "" {
		d.Platform = NewSendGridSender(sendgrid.NewSendClient(cfg.SendGridAPIKey), cfg.LDFlag_SendgridSandboxMode)
	} else {
		utils.Logger.Info("SENDGRID_API_KEY not set; platform email fallback disabled")
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.LDFlag_TwilioFromPhone != "" {
		tw := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
		d.SMS = NewTwilioSMSSender(tw, cfg.LDFlag_TwilioFromPhone)
	}
	return d
}

// emailSender picks the landlord's own mailbox when credentials exist and
// the platform account otherwise.
func (d *Delivery) emailSender(creds *SMTPCredentials) (EmailSender, string, error) {
	if creds != nil {
		return d.NewSMTP(*creds), ChannelSMTP, nil
	}
	if d.Platform != nil {
		return d.Platform, ChannelSendGrid, nil
	}
	return nil, "", internal_utils.ErrSMTPCredentialsMissing
}

/* ------------------------------------------------------------------
   SMTP
------------------------------------------------------------------ */

// SMTPSender sends through the landlord's mailbox: implicit TLS on 465,
// STARTTLS when the server offers it on any other port.
type SMTPSender struct {
	creds   SMTPCredentials
	timeout time.Duration
}

func NewSMTPSender(creds SMTPCredentials) *SMTPSender {
	return &SMTPSender{creds: creds, timeout: constants.SMTPDialTimeout}
}

func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	addr := net.JoinHostPort(s.creds.Host, strconv.Itoa(s.creds.Port))
	dialer := &net.Dialer{Timeout: s.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(2 * s.timeout))
	}

	tlsConfig := &tls.Config{ServerName: s.creds.Host, MinVersion: tls.VersionTLS12}
	if s.creds.Port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.creds.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if s.creds.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	auth := smtp.PlainAuth("", s.creds.Username, s.creds.Password, s.creds.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.creds.Username); err != nil {
		return fmt.Errorf("smtp sender: %w", err)
	}
	if err := client.Rcpt(e.ToEmail); err != nil {
		return fmt.Errorf("smtp recipient: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write([]byte(buildMIMEMessage(s.creds.Username, e))); err != nil {
		wc.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return client.Quit()
}

const mimeBoundary = "gestion-locative-alt"

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), addr)
}

func buildMIMEMessage(from string, e Email) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", formatAddress(e.FromName, from))
	fmt.Fprintf(&b, "To: %s\r\n", formatAddress(e.ToName, e.ToEmail))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(e.PlainText)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(e.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return b.String()
}

/* ------------------------------------------------------------------
   SendGrid
------------------------------------------------------------------ */

type SendGridSender struct {
	client  *sendgrid.Client
	sandbox bool
}

func NewSendGridSender(client *sendgrid.Client, sandbox bool) *SendGridSender {
	return &SendGridSender{client: client, sandbox: sandbox}
}

func (s *SendGridSender) Send(ctx context.Context, e Email) error {
	from := mail.NewEmail(e.FromName, e.FromEmail)
	to := mail.NewEmail(e.ToName, e.ToEmail)
	msg := mail.NewSingleEmail(from, e.Subject, to, e.PlainText, e.HTML)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %w", resp.StatusCode, utils.ErrExternalServiceFailure)
	}
	return nil
}

/* ------------------------------------------------------------------
   Twilio
------------------------------------------------------------------ */

type TwilioSMSSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMSSender(client *twilio.RestClient, from string) *TwilioSMSSender {
	return &TwilioSMSSender{client: client, from: from}
}

func (s *TwilioSMSSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("sms recipient is empty")
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	return nil
}
