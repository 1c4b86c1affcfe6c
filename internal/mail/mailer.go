package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/myanmatch/backend/internal/config"
)

// Mailer sends the OTP template over SMTP with implicit TLS (port 465).
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewMailer builds a Mailer from config. Returns an error when the relay
// is not configured, so the caller can decide whether that is fatal.
func NewMailer(cfg *config.Config) (*Mailer, error) {
	if cfg.Mail.Host == "" || cfg.Mail.User == "" {
		return nil, fmt.Errorf("mail relay is not configured")
	}
	return &Mailer{
		host: cfg.Mail.Host,
		port: cfg.Mail.Port,
		user: cfg.Mail.User,
		pass: cfg.Mail.Pass,
		from: cfg.Mail.From,
	}, nil
}

// Send delivers a single HTML message.
func (m *Mailer) Send(to, subject, body string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := m.host + ":" + m.port

	// Implicit TLS for port 465
	tlsConfig := &tls.Config{
		ServerName: m.host,
	}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return nil
}

// SendOTP renders the fixed password-reset template.
func (m *Mailer) SendOTP(to, code string) error {
	body := fmt.Sprintf(`
		<div style="font-family:sans-serif">
			<h2>MyanMatch password reset</h2>
			<p>Your verification code is:</p>
			<p style="font-size:28px;letter-spacing:6px"><b>%s</b></p>
			<p>The code expires in 10 minutes. If you did not request a
			reset, you can ignore this message.</p>
		</div>`, code)
	return m.Send(to, "Your MyanMatch verification code", body)
}
