package notifier

import (
	"bytes"
	"html/template"
	"log"
	"strings"
)

var brandedTemplate = template.Must(template.New("email").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #2563eb 0%, #1e40af 100%); padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="color: white; margin: 0; font-size: 28px;">CivicFix</h1>
    <p style="color: #e0e7ff; margin: 5px 0 0 0; font-size: 14px;">Community Complaint Management</p>
  </div>
  <div style="background: #f8fafc; padding: 30px; border-radius: 0 0 8px 8px; border: 1px solid #e2e8f0;">
    <p style="color: #1e293b; font-size: 16px; line-height: 1.6;">{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
    <div style="margin-top: 20px; padding-top: 20px; border-top: 1px solid #e2e8f0;">
      <p style="color: #64748b; font-size: 12px; margin: 0;">
        &copy; CivicFix. All rights reserved.<br>
        This is an automated message. Please do not reply directly.
      </p>
    </div>
  </div>
</div>
`))

// RenderHTML wraps a plain-text body in the branded CivicFix layout.
func RenderHTML(text string) string {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")

	var buf bytes.Buffer
	err := brandedTemplate.Execute(&buf, struct{ Lines []string }{Lines: strings.Split(text, "\n")})
	if err != nil {
		log.Printf("Failed to render email template: %v", err)
		return "<p>" + template.HTMLEscapeString(text) + "</p>"
	}
	return buf.String()
}
