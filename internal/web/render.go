package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"strings"

	"aficionado-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

type Choice struct {
	Index int
	Text  string
}

type FileEntry struct {
	Emoji string
	Name  string
}

// PageData is the template data for the assistant page.
type PageData struct {
	Title        string
	Username     string
	Question     string
	Choices      []Choice
	Files        []FileEntry
	ResponseHTML template.HTML
	HasResponse  bool
	CanSave      bool
	SavedAs      string
	Error        *store.InlineError
	Accept       string
}

// Renderer parses the page templates once and renders model output safely.
type Renderer struct {
	templates map[string]*template.Template
	markdown  goldmark.Markdown
	policy    *bluemonday.Policy
}

func NewRenderer() *Renderer {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}

	layout := template.Must(template.New("layout").ParseFS(sub, "layout.html"))
	pages := map[string]string{
		"assistant":       "assistant.html",
		"unauthenticated": "unauthenticated.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layout.Clone())
		template.Must(t.ParseFS(sub, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:    bluemonday.UGCPolicy(),
	}
}

func (r *Renderer) render(ctx *fiber.Ctx, status int, name string, data any) error {
	t, ok := r.templates[name]
	if !ok {
		return fiber.NewError(fiber.StatusInternalServerError, "template "+name+" not found")
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.Status(status).Send(buf.Bytes())
}

// Markdown converts model output to HTML and strips anything unsafe. The
// model's answer is untrusted input.
func (r *Renderer) Markdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

func acceptAttr(extensions []string) string {
	parts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		parts = append(parts, "."+strings.TrimPrefix(ext, "."))
	}
	return strings.Join(parts, ",")
}
