package service

import (
	"bytes"
	"html/template"
	"time"

	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

const resetSubject = "Reset your pharmacy account password"

var resetTpl = template.Must(template.New("reset").Parse(`
<!DOCTYPE html>
<html>
<head>
    <title>Password reset</title>
</head>
<body style="font-family: Arial, sans-serif;">
    <h2>Password reset</h2>
    <p>Hello {{.Name}},</p>
    <p>We received a request to reset the password of your account ({{.UserID}}).</p>
    <p><a href="{{.Link}}" style="padding: 10px 15px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px;">Choose a new password</a></p>
    <p>The link expires in {{.Expires}}. If you did not ask for a reset, ignore this email.</p>
</body>
</html>
`))

func resetLinkMessage(user *domain.User, link string, ttl time.Duration) (ports.MailMessage, error) {
	data := struct {
		Name    string
		UserID  string
		Link    string
		Expires string
	}{
		Name:    user.FirstName,
		UserID:  user.UserID,
		Link:    link,
		Expires: ttl.String(),
	}

	var body bytes.Buffer
	if err := resetTpl.Execute(&body, data); err != nil {
		return ports.MailMessage{}, err
	}
	return ports.MailMessage{To: user.Email, Subject: resetSubject, HTMLBody: body.String()}, nil
}
