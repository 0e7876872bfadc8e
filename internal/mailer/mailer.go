// Package mailer sends account emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

const temporaryPasswordSubject = "[이어톡] 임시 비밀번호 발급 안내"

var temporaryPasswordBody = template.Must(template.New("temporary-password").Parse(`<html>
    <body>
        <p style="font-size: 16px;">귀하의 임시 비밀번호는 다음과 같습니다.</p>
        <p style="font-size: 20px;"><b>{{.}}</b></p>
        <p style="font-size: 16px;">임시 비밀번호로 로그인 한 뒤, 비밀번호를 변경해 주세요.</p>
    </body>
</html>
`))

// Config holds SMTP settings. The connection uses implicit TLS when Port is 465.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// DialFunc opens an SMTP session.
type DialFunc func() (gomail.SendCloser, error)

// Mailer sends temporary-password emails.
type Mailer struct {
	from string
	dial DialFunc
}

// New creates a Mailer that dials the configured SMTP server for every message.
func New(cfg Config) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewWithDialer(cfg.From, d.Dial)
}

// NewWithDialer creates a Mailer using dial to open sessions.
func NewWithDialer(from string, dial DialFunc) *Mailer {
	return &Mailer{from: from, dial: dial}
}

// TemporaryPasswordMessage builds the email carrying password.
func (m *Mailer) TemporaryPasswordMessage(to, password string) (*gomail.Message, error) {
	var body strings.Builder
	if err := temporaryPasswordBody.Execute(&body, password); err != nil {
		return nil, fmt.Errorf("failed to render email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", temporaryPasswordSubject)
	msg.SetBody("text/html", body.String())
	return msg, nil
}

// SendTemporaryPassword mails password to the address to.
func (m *Mailer) SendTemporaryPassword(ctx context.Context, to, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.TemporaryPasswordMessage(to, password)
	if err != nil {
		return err
	}

	s, err := m.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer s.Close()

	if err := gomail.Send(s, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
