package email

import (
	"bytes"
	"html/template"
)

const (
	subjectEscalation = "Escalation alert"
	subjectProposal   = "Proposal dispatched"
	subjectContract   = "Contract dispatched"
	subjectConfirmed  = "Client confirmed"
	subjectArchived   = "Account archived"
)

type emailData struct {
	Title   string
	Heading string
	Body    string
}

var baseTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="center" style="padding:24px;">
        <table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
          <tr>
            <td style="padding:32px;">
              <h1 style="margin:0 0 16px;font-size:20px;color:#1a1a2e;">{{.Heading}}</h1>
              <p style="margin:0;font-size:14px;line-height:22px;color:#51545e;">{{.Body}}</p>
            </td>
          </tr>
          <tr>
            <td style="padding:0 32px 24px;">
              <p style="margin:0;font-size:12px;color:#9a9ea6;">This message was generated by the case management system.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

func renderEmailTemplate(data emailData) (string, error) {
	var buf bytes.Buffer
	if err := baseTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
