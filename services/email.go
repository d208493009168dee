package services

import (
	"fmt"
	"html/template"
)

func statusChangedHTML(name, title, status, comment string) string {
	esc := template.HTMLEscapeString
	return fmt.Sprintf(`<p>Hello %s,</p>
<p>The status of your complaint "<b>%s</b>" is now <b>%s</b>.</p>
<p><b>Admin Comment:</b> %s</p>`, esc(name), esc(title), esc(status), esc(comment))
}
