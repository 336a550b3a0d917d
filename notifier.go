package cwn

import (
	"fmt"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"net/smtp"
	"strings"
)

const SendGridMailSendPath = "/v3/mail/send"

// Notifier delivers an html report to the configured recipient. sent is true
// only when the provider acknowledged the message.
type Notifier interface {
	Name() string
	Notify(subject string, htmlBody string) (sent bool, err error)
}

func NewNotifier(config *Config, creds *Credentials) Notifier {
	switch config.Notifier {
	case NotifierSMTP:
		return &SMTPNotifier{
			Host:     config.SmtpHost,
			Port:     config.SmtpPort,
			Username: config.SmtpUsername,
			Password: config.SmtpPassword,
			FromAddr: creds.FromAddr,
			ToAddr:   creds.ToAddr,
		}
	default:
		return &SendGridNotifier{
			ApiKey:   creds.ApiKey,
			FromAddr: creds.FromAddr,
			ToAddr:   creds.ToAddr,
			Host:     config.SendGridHost,
		}
	}
}

type SendGridNotifier struct {
	ApiKey   string
	FromAddr string
	ToAddr   string
	Host     string // empty means the public sendgrid api
}

func (n *SendGridNotifier) Name() string {
	return NotifierSendGrid
}

func (n *SendGridNotifier) Notify(subject string, htmlBody string) (bool, error) {
	from := mail.NewEmail("", n.FromAddr)
	to := mail.NewEmail("", n.ToAddr)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	request := sendgrid.GetRequest(n.ApiKey, SendGridMailSendPath, n.Host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequest(request)
	if err != nil {
		return false, &NotifyError{Provider: n.Name(), Err: fmt.Errorf("%s", redact(err.Error(), n.ApiKey))}
	}

	Log.Debugf("SendGrid responded with status code %d", response.StatusCode)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		Log.Errorf("SendGrid status code is %d: %s", response.StatusCode, redact(response.Body, n.ApiKey))
		return false, nil
	}

	return true, nil
}

type SMTPNotifier struct {
	Host     string
	Port     int
	Username string
	Password string
	FromAddr string
	ToAddr   string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (n *SMTPNotifier) Name() string {
	return NotifierSMTP
}

func (n *SMTPNotifier) Notify(subject string, htmlBody string) (bool, error) {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("From: %s\r\n", n.FromAddr))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", n.ToAddr))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody)

	var auth smtp.Auth
	if len(n.Username) > 0 {
		auth = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}

	send := n.send
	if send == nil {
		send = smtp.SendMail
	}

	err := send(fmt.Sprintf("%s:%d", n.Host, n.Port), auth, n.FromAddr, []string{n.ToAddr}, []byte(sb.String()))
	if err != nil {
		Log.Errorf("sendEmail: %+v", err)
		return false, &NotifyError{Provider: n.Name(), Err: err}
	}

	return true, nil
}
