package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// ConnectionData fills the connection request and acceptance templates.
type ConnectionData struct {
	RecipientName    string
	SenderName       string
	SenderProfileURL string
	NotificationsURL string
}

var connectionRequestTemplate = template.Must(template.New("connection_request").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <p>Hi {{.RecipientName}},</p>
  <p><a href="{{.SenderProfileURL}}">{{.SenderName}}</a> sent you a connection request on AU Connect.</p>
  <p><a href="{{.NotificationsURL}}" style="display:inline-block;padding:10px 18px;background:#0c2340;color:#ffffff;text-decoration:none;border-radius:4px;">View request</a></p>
</body>
</html>`))

var connectionAcceptedTemplate = template.Must(template.New("connection_accepted").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <p>Hi {{.RecipientName}},</p>
  <p><a href="{{.SenderProfileURL}}">{{.SenderName}}</a> accepted your connection request on AU Connect.</p>
  <p><a href="{{.NotificationsURL}}" style="display:inline-block;padding:10px 18px;background:#0c2340;color:#ffffff;text-decoration:none;border-radius:4px;">View notifications</a></p>
</body>
</html>`))

// ConnectionRequestMessage renders the email sent to the addressee of a
// connection request.
func ConnectionRequestMessage(to string, data ConnectionData) (Message, error) {
	html, err := render(connectionRequestTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s sent you a connection request", data.SenderName),
		HTML:    html,
		Text: fmt.Sprintf("%s sent you a connection request on AU Connect.\n\nView it at %s",
			data.SenderName, data.NotificationsURL),
	}, nil
}

// ConnectionAcceptedMessage renders the email sent to the requester once a
// connection request is accepted.
func ConnectionAcceptedMessage(to string, data ConnectionData) (Message, error) {
	html, err := render(connectionAcceptedTemplate, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s accepted your connection request", data.SenderName),
		HTML:    html,
		Text: fmt.Sprintf("%s accepted your connection request on AU Connect.\n\nView their profile at %s",
			data.SenderName, data.SenderProfileURL),
	}, nil
}

func render(tmpl *template.Template, data ConnectionData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
