package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/gia-feedback/feedback-api/internal/models"
	"go.uber.org/zap"
)

// PDFRenderer produces one PDF document per response by rendering an HTML
// report and handing it to wkhtmltopdf. All user-supplied text goes through
// html/template, which escapes it for the markup.
type PDFRenderer struct {
	log *zap.Logger
}

func NewPDFRenderer(log *zap.Logger) *PDFRenderer {
	return &PDFRenderer{log: log}
}

type pdfSubAnswer struct {
	Label string
	Value string
}

type pdfItem struct {
	Number     int
	QText      string
	Value      string
	FilePath   string
	SubAnswers []pdfSubAnswer
}

type pdfData struct {
	ResponseID  uint
	SubmittedAt string
	VisitorName string
	Items       []pdfItem
}

var pdfTemplate = template.Must(template.New("response").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<title>Response {{.ResponseID}}</title>
<style>
body { font-family: Arial, sans-serif; padding: 20px; }
h1 { font-size: 20px; margin-bottom: 8px; }
.meta { font-size: 12px; color: #666; margin-bottom: 10px; }
.q { margin-bottom: 12px; }
.label { font-weight: bold; margin-bottom: 4px; }
.answer { margin-left: 8px; color: #333; }
.sub { margin-left: 16px; margin-bottom: 4px; }
.sublabel { font-style: italic; }
.file { font-size: 11px; color: #888; }
</style>
</head>
<body>
<h1>Form Response #{{.ResponseID}}</h1>
<div class="meta">Submitted at: {{.SubmittedAt}}{{if .VisitorName}} by {{.VisitorName}}{{end}}</div>
{{range .Items}}
<div class="q">
<div class="label">{{.Number}}. {{.QText}}</div>
{{if .SubAnswers}}
{{range .SubAnswers}}<div class="sub"><span class="sublabel">{{.Label}}:</span> {{.Value}}</div>
{{end}}
{{else}}<div class="answer">{{.Value}}{{if .FilePath}}<div class="file">File: {{.FilePath}}</div>{{end}}</div>
{{end}}
</div>
{{end}}
</body>
</html>
`))

// RenderHTML builds the intermediate markup for a response. Groups arrive in
// canonical question order and are numbered sequentially from 1; sub-answers
// render under their labels with values passed through FormatAnswerValue.
func (r *PDFRenderer) RenderHTML(response *models.Response, groups []AnswerGroup) (string, error) {
	data := pdfData{
		ResponseID:  response.ID,
		SubmittedAt: response.SubmittedAt.Format(time.RFC1123),
	}
	if response.Visitor != nil {
		data.VisitorName = response.Visitor.Name
	}

	for i, g := range groups {
		item := pdfItem{Number: i + 1, QText: g.QText}
		if len(g.SubAnswers) > 0 {
			for _, sub := range g.SubAnswers {
				item.SubAnswers = append(item.SubAnswers, pdfSubAnswer{
					Label: sub.SubQuestionLabel,
					Value: FormatAnswerValue(sub.Value),
				})
			}
		} else {
			item.Value = FormatAnswerValue(g.Value)
			if g.FilePath != nil {
				item.FilePath = *g.FilePath
			}
		}
		data.Items = append(data.Items, item)
	}

	var html bytes.Buffer
	if err := pdfTemplate.Execute(&html, data); err != nil {
		return "", &RenderError{Format: "PDF", Err: fmt.Errorf("render template: %w", err)}
	}
	return html.String(), nil
}

// Render produces the final PDF bytes. Engine failures come back as a
// RenderError carrying only a generic message; the underlying error is logged.
func (r *PDFRenderer) Render(response *models.Response, groups []AnswerGroup) ([]byte, error) {
	html, err := r.RenderHTML(response, groups)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		r.log.Error("wkhtmltopdf unavailable", zap.Error(err))
		return nil, &RenderError{Format: "PDF", Err: err}
	}
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.MarginTop.Set(10)
	pdfg.MarginBottom.Set(10)
	pdfg.MarginLeft.Set(10)
	pdfg.MarginRight.Set(10)
	pdfg.AddPage(wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(html))))

	if err := pdfg.Create(); err != nil {
		r.log.Error("pdf generation failed",
			zap.Uint("response_id", response.ID),
			zap.Error(err))
		return nil, &RenderError{Format: "PDF", Err: err}
	}
	return pdfg.Bytes(), nil
}
