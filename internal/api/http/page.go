package httpapi

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

// defaultRiders is how many riders the form plots unless told otherwise.
const defaultRiders = 10

type page struct {
	Seasons []int
	Form    chartQuery
	Chart   string
	Error   string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>MotoGP riders' standings</title>
<style>
body { font-family: sans-serif; margin: 2em; }
form label { margin-right: 1em; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>MotoGP riders' standings</h1>
<form method="post" action="/">
<label>Season
<select name="season">
{{- range .Seasons}}
<option value="{{.}}"{{if eq . $.Form.Season}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
</label>
<label><input type="checkbox" name="history" value="true"{{if .Form.History}} checked{{end}}> Show historical average</label>
<label>Riders from <input type="number" name="from" min="1" value="{{.Form.From}}"></label>
<label>to <input type="number" name="to" min="1" value="{{.Form.To}}"></label>
<button type="submit">Plot</button>
</form>
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
{{- if .Chart}}
<img alt="standings chart for {{.Form.Season}}" src="data:image/png;base64,{{.Chart}}">
{{- end}}
</body>
</html>
`))

func (h *handlers) renderPage(c *fiber.Ctx, status int, p page) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
