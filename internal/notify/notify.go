// Package notify composes and delivers task notification emails.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/yukikurage/collab-api/internal/config"
)

// Message is a single HTML email to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const (
	subjectTaskAssigned  = "New Task Assigned"
	subjectStatusUpdated = "Task Status Updated"
)

var (
	assignedTmpl = template.Must(template.New("assigned").Parse(`<h3>You've been assigned a new task!</h3>
<p><strong>Task:</strong> {{.Task}}</p>
<p><strong>Project:</strong> {{.Project}}</p>
<p>Log in to your dashboard to view details.</p>
`))

	statusTmpl = template.Must(template.New("status").Parse(`<h3>Task status has been updated</h3>
<p><strong>Task:</strong> {{.Task}}</p>
<p><strong>New Status:</strong> {{.Status}}</p>
`))
)

// TaskAssigned builds the notification sent to each assignee of a new task.
func TaskAssigned(to, taskTitle, projectName string) (Message, error) {
	body, err := render(assignedTmpl, map[string]string{
		"Task":    taskTitle,
		"Project": projectName,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subjectTaskAssigned, HTML: body}, nil
}

// StatusUpdated builds the notification sent to each assignee after a status change.
func StatusUpdated(to, taskTitle, status string) (Message, error) {
	body, err := render(statusTmpl, map[string]string{
		"Task":   taskTitle,
		"Status": status,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subjectStatusUpdated, HTML: body}, nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// NewSender returns an SMTP sender when a host is configured and a
// log-only sender otherwise.
func NewSender(cfg config.EmailConfig, log *zap.SugaredLogger) Sender {
	if cfg.Host == "" {
		log.Warn("email host not configured, notifications will only be logged")
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg)
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *zap.SugaredLogger
}

func NewLogSender(log *zap.SugaredLogger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Infow("email notification", "to", msg.To, "subject", msg.Subject)
	return nil
}
