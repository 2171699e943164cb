// internal/render/renderer.go
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
)

// Renderer turns a document type plus a field bag into bytes. Rendering is
// deterministic: the same inputs always produce the same output, which is
// what lets the document store cache by content hash.
type Renderer interface {
	Render(documentType models.DocumentType, fields Fields) ([]byte, error)
	ContentType() string
}

// HTMLRenderer renders the lifecycle documents from fixed HTML templates.
type HTMLRenderer struct {
	templates map[models.DocumentType]*template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	r := &HTMLRenderer{
		templates: make(map[models.DocumentType]*template.Template),
	}

	for docType, body := range documentTemplates {
		r.templates[docType] = template.Must(
			template.New(string(docType)).Parse(documentLayoutHead + body + documentLayoutFoot),
		)
	}

	return r
}

func (r *HTMLRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *HTMLRenderer) Render(documentType models.DocumentType, fields Fields) ([]byte, error) {
	tmpl, ok := r.templates[documentType]
	if !ok {
		return nil, fmt.Errorf("no template registered for document type %q", documentType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, fields); err != nil {
		return nil, fmt.Errorf("failed to execute template %q: %w", documentType, err)
	}

	return buf.Bytes(), nil
}

const documentLayoutHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Get "document_title"}}</title>
<style>
body { font-family: Georgia, serif; margin: 48px; color: #1a1a1a; }
h1 { font-size: 22px; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
.letterhead { font-size: 13px; color: #555; margin-bottom: 32px; }
.signature { margin-top: 64px; }
table.meta { border-collapse: collapse; margin: 16px 0; }
table.meta td { border: 1px solid #ccc; padding: 6px 12px; font-size: 14px; }
</style>
</head>
<body>
<div class="letterhead">{{.Get "issuer_name"}} &middot; {{.Get "issuer_location"}}</div>
`

const documentLayoutFoot = `
<div class="signature">
<p>For {{.Get "issuer_name"}},</p>
<p><strong>Program Office</strong></p>
</div>
</body>
</html>
`

var documentTemplates = map[models.DocumentType]string{
	models.DocumentTypeMOU: `
<h1>Memorandum of Understanding</h1>
<p>This memorandum records the terms under which <strong>{{.Get "student_name"}}</strong>
({{.Get "student_email"}}) will undertake the internship
<strong>{{.Get "internship_title"}}</strong> in the {{.Get "internship_domain"}} domain.</p>
<table class="meta">
<tr><td>Start date</td><td>{{.Get "start_date"}}</td></tr>
<tr><td>End date</td><td>{{.Get "end_date"}}</td></tr>
<tr><td>Duration</td><td>{{.Get "duration_weeks"}} weeks</td></tr>
</table>
<p>The intern agrees to complete the assigned tasks during the stated period.
The organisation agrees to provide mentorship and, on successful completion,
a verifiable certificate.</p>`,

	models.DocumentTypeOfferLetter: `
<h1>Internship Offer Letter</h1>
<p>Dear {{.Get "student_name"}},</p>
<p>We are pleased to offer you an internship position for
<strong>{{.Get "internship_title"}}</strong> ({{.Get "internship_domain"}}).</p>
<table class="meta">
<tr><td>Start date</td><td>{{.Get "start_date"}}</td></tr>
<tr><td>End date</td><td>{{.Get "end_date"}}</td></tr>
<tr><td>Duration</td><td>{{.Get "duration_weeks"}} weeks</td></tr>
</table>
<p>Please treat this letter, together with the memorandum of understanding,
as confirmation of your enrollment.</p>`,

	models.DocumentTypePartialCompletionLetter: `
<h1>Partial Completion Letter</h1>
<p>This is to certify that <strong>{{.Get "student_name"}}</strong> was enrolled in
<strong>{{.Get "internship_title"}}</strong> ({{.Get "internship_domain"}}) and completed
<strong>{{.Get "tasks_completed"}}</strong> of <strong>{{.Get "total_tasks"}}</strong>
assigned tasks ({{.Get "progress_percent"}}%) before exiting the program on
{{.Get "withdrawn_on"}}.</p>
<p>The work completed up to that date was carried out satisfactorily.</p>`,

	models.DocumentTypeRelievingLetter: `
<h1>Relieving Letter</h1>
<p>Dear {{.Get "student_name"}},</p>
<p>Your request to withdraw from the internship
<strong>{{.Get "internship_title"}}</strong> has been accepted, and you stand
relieved from the program effective {{.Get "withdrawn_on"}}.</p>
<p>We thank you for your contribution of {{.Get "tasks_completed"}} completed
tasks and wish you success in your future endeavours.</p>`,

	models.DocumentTypeCompletionLetter: `
<h1>Internship Completion Letter</h1>
<p>This is to certify that <strong>{{.Get "student_name"}}</strong> has successfully
completed the internship <strong>{{.Get "internship_title"}}</strong> in the
{{.Get "internship_domain"}} domain on {{.Get "completed_on"}}.</p>
<table class="meta">
<tr><td>Marks</td><td>{{.Get "marks"}} / 50</td></tr>
<tr><td>Grade</td><td>{{.Get "grade"}}</td></tr>
</table>
<p>During the internship the candidate worked on: {{.Get "responsibilities"}}.</p>
<p>Skills demonstrated: {{.Get "skills"}}.</p>`,

	models.DocumentTypeCertificate: `
<h1>Certificate of Completion</h1>
<p>This certifies that</p>
<p style="font-size:28px"><strong>{{.Get "student_name"}}</strong></p>
<p>has successfully completed the internship</p>
<p style="font-size:20px"><strong>{{.Get "internship_title"}}</strong></p>
<p>with grade <strong>{{.Get "grade"}}</strong> ({{.Get "marks"}}/50).</p>
<table class="meta">
<tr><td>Certificate code</td><td>{{.Get "certificate_code"}}</td></tr>
<tr><td>Issued on</td><td>{{.Get "issued_on"}}</td></tr>
<tr><td>Verify at</td><td>{{.Get "verify_url"}}</td></tr>
</table>`,
}
