package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var (
	otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif;">
    <h2>Verify your DevElevate account</h2>
    <p>Your one-time code is:</p>
    <p style="font-size: 28px; letter-spacing: 6px;"><strong>{{.Code}}</strong></p>
    <p>The code expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>
  </body>
</html>
`))

	welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif;">
    <h2>Welcome to DevElevate, {{.Name}}!</h2>
    <p>Your account is active. Keep your streak going by learning a little every day.</p>
  </body>
</html>
`))
)

func renderOTP(code string, ttl time.Duration) (string, error) {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return render(otpTemplate, struct {
		Code    string
		Minutes int
	}{code, minutes})
}

func renderWelcome(name string) (string, error) {
	if name == "" {
		name = "there"
	}
	return render(welcomeTemplate, struct{ Name string }{name})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
