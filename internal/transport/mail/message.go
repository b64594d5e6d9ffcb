package mail

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/njprem/user_admin_backend/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = mustLoadTemplates()

func mustLoadTemplates() map[domain.NotificationKind]*template.Template {
	kinds := []domain.NotificationKind{
		domain.NotificationRegisterActivate,
		domain.NotificationPasswordResetRequest,
		domain.NotificationPasswordResetSuccess,
		domain.NotificationPasswordChangeSuccess,
	}
	out := make(map[domain.NotificationKind]*template.Template, len(kinds))
	for _, kind := range kinds {
		out[kind] = template.Must(template.ParseFS(templateFS, "templates/"+string(kind)+".tmpl"))
	}
	return out
}

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Render builds the message for a notification from its embedded template.
func Render(from string, n domain.Notification) (*Message, error) {
	tmpl, ok := templates[n.Kind]
	if !ok {
		return nil, fmt.Errorf("no template for notification kind %q", n.Kind)
	}
	var subject, body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", n); err != nil {
		return nil, fmt.Errorf("render %s subject: %w", n.Kind, err)
	}
	if err := tmpl.ExecuteTemplate(&body, "body", n); err != nil {
		return nil, fmt.Errorf("render %s body: %w", n.Kind, err)
	}
	return &Message{
		From:    from,
		To:      n.Recipient,
		Subject: strings.TrimSpace(subject.String()),
		Body:    body.String(),
	}, nil
}

// Bytes encodes the message as a plain text RFC 5322 mail.
func (m *Message) Bytes() []byte {
	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.From))
	message.WriteString(fmt.Sprintf("To: %s\r\n", m.To))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", m.Subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(message.String())
}
