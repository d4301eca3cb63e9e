// Package digest renders a list of newly seen articles into the email
// document. Rendering is pure: no network, no storage, deterministic
// for a given article list and date.
package digest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	"arsdigest/internal/types"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// dateFormat is the long-form date shown in the digest header,
// e.g. "Tuesday, June 03, 2025".
const dateFormat = "Monday, January 02, 2006"

// RenderedEmail holds the pre-rendered digest content ready for
// transmission. Both an HTML body and a plaintext alternative are
// produced from the same data.
type RenderedEmail struct {
	BodyHTML string
	BodyText string
}

// templateData is the struct passed into both templates.
type templateData struct {
	Date  string
	Items []types.Article
}

// Renderer turns articles into the digest document using embedded
// templates parsed once at construction.
type Renderer struct {
	html *template.Template
	text *texttemplate.Template
}

// NewRenderer parses the embedded templates. It returns an error only
// if a template fails to parse, which indicates a build defect.
func NewRenderer() (*Renderer, error) {
	// The feed supplies the summary as an HTML excerpt; "safe" opts it
	// out of contextual escaping so it renders as markup.
	funcs := template.FuncMap{
		"safe": func(s string) template.HTML { return template.HTML(s) },
	}

	htmlTpl, err := template.New("digest.html").Funcs(funcs).ParseFS(templateFS, "templates/digest.html")
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to parse digest.html: %w", err)
	}

	textTpl, err := texttemplate.ParseFS(templateFS, "templates/digest.txt")
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to parse digest.txt: %w", err)
	}

	return &Renderer{html: htmlTpl, text: textTpl}, nil
}

// Render produces the digest for the given articles and date. Callers
// guard against an empty article list: a digest is only rendered when
// there is something new to report.
func (r *Renderer) Render(items []types.Article, now time.Time) (RenderedEmail, error) {
	data := templateData{
		Date:  now.Format(dateFormat),
		Items: items,
	}

	var htmlBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("renderer: executing digest.html: %w", err)
	}

	var textBuf bytes.Buffer
	if err := r.text.Execute(&textBuf, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("renderer: executing digest.txt: %w", err)
	}

	return RenderedEmail{
		BodyHTML: htmlBuf.String(),
		BodyText: textBuf.String(),
	}, nil
}
