package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

var invitationTemplate = template.Must(template.New("invitation").Parse(`<h3>{{.SenderName}} invited you to a board on Workflo</h3>
<p>You have been invited to join <strong>{{.BoardName}}</strong> as {{.Role}}.</p>
<p><a href="{{.Link}}">Open the invitation</a></p>
<p>The link is valid until {{.ExpiresAt}}.</p>
`))

type Invitation struct {
	To         string
	SenderName string
	BoardName  string
	Role       string
	Token      string
	ExpiresAt  string
}

// InvitationLink builds the frontend URL that carries the token as invite_hash.
func InvitationLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/invite?" + url.Values{"invite_hash": {token}}.Encode()
}

func NewInvitationMessage(frontendURL string, inv Invitation) (Message, error) {
	var buf bytes.Buffer
	err := invitationTemplate.Execute(&buf, struct {
		Invitation
		Link string
	}{inv, InvitationLink(frontendURL, inv.Token)})
	if err != nil {
		return Message{}, fmt.Errorf("render invitation: %w", err)
	}

	return Message{
		To:      inv.To,
		Subject: fmt.Sprintf("%s invited you to %s", inv.SenderName, inv.BoardName),
		HTML:    buf.String(),
	}, nil
}
