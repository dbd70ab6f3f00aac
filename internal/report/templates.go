package report

import (
	"bytes"
	_ "embed"
	htmltemplate "html/template"
	"time"

	texttemplate "text/template"
)

//go:embed templates/report.txt.tmpl
var textTemplateSource string

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var (
	textTemplate = texttemplate.Must(texttemplate.New("report.txt").Parse(textTemplateSource))
	htmlTemplate = htmltemplate.Must(htmltemplate.New("report.html").Parse(htmlTemplateSource))
)

type reportData struct {
	Username            string
	AccountID           string
	StartTime           time.Time
	EndTime             time.Time
	SSOUserActivity     []map[string]string
	AssumedRoleActivity []map[string]string
}

func renderReport(data reportData) (text string, html string, err error) {
	var textBuf bytes.Buffer
	if err := textTemplate.Execute(&textBuf, data); err != nil {
		return "", "", err
	}

	var htmlBuf bytes.Buffer
	if err := htmlTemplate.Execute(&htmlBuf, data); err != nil {
		return "", "", err
	}

	return textBuf.String(), htmlBuf.String(), nil
}
