package notify

import (
	"fmt"
	"strings"
	"text/template"
)

type messageTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]messageTemplate{
	KindInvite: {
		subject: "You have been invited",
		body: template.Must(template.New("invite").Parse(
			`You have been invited to create a {{.account_type}} account.

Your invite code is {{.code}}. It expires on {{.expires_at}}.

Sign up here: {{.link}}
`)),
	},
	KindSignupConfirmation: {
		subject: "Confirm your email address",
		body: template.Must(template.New("signup_confirmation").Parse(
			`Hi {{.full_name}},

Your account has been created. Confirm your email address to sign in:

{{.link}}
`)),
	},
}

// Render produces the subject and plain-text body for msg.
func Render(msg Message) (string, string, error) {
	tmpl, ok := templates[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}

	var b strings.Builder
	if err := tmpl.body.Execute(&b, msg.Vars); err != nil {
		return "", "", fmt.Errorf("render %s: %w", msg.Kind, err)
	}
	return tmpl.subject, b.String(), nil
}
