package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"smartflow/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*.css static/*.js
var staticFS embed.FS

// StaticFS serves the embedded stylesheet and scripts under /assets/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is the data handed to every template. Content carries the page specific view.
type Page struct {
	Title     string
	Path      string
	Session   *models.Session
	CSRFToken string
	Flash     *models.Flash
	Content   any
}

const (
	PageLogin             = "login"
	PageSignup            = "signup"
	PageSignupPending     = "signup_pending"
	PageForgotPassword    = "forgot_password"
	PageResetPassword     = "reset_password"
	PageDashboard         = "dashboard"
	PageStyleguide        = "styleguide"
	PageNotFound          = "not_found"
	styleguideComponentID = "styleguide_component"
)

var pages = []string{
	PageLogin,
	PageSignup,
	PageSignupPending,
	PageForgotPassword,
	PageResetPassword,
	PageDashboard,
	PageNotFound,
}

// ComponentPage is the renderer key for a styleguide component demo.
func ComponentPage(slug string) string {
	return "styleguide/" + slug
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"isActive": func(current, href string) bool {
		return current == href
	},
	"lower": strings.ToLower,
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, name := range pages {
		page, err := base.Clone()
		if err != nil {
			return nil, err
		}

		if _, err := page.ParseFS(templatesFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}

		r.pages[name] = page
	}

	styleguide, err := base.Clone()
	if err != nil {
		return nil, err
	}

	if _, err := styleguide.ParseFS(templatesFS, "templates/styleguide_layout.html", "templates/styleguide_demos.html"); err != nil {
		return nil, fmt.Errorf("failed to parse styleguide: %w", err)
	}

	index, err := styleguide.Clone()
	if err != nil {
		return nil, err
	}

	if _, err := index.ParseFS(templatesFS, "templates/styleguide.html"); err != nil {
		return nil, fmt.Errorf("failed to parse styleguide index: %w", err)
	}
	r.pages[PageStyleguide] = index

	for _, component := range Components {
		page, err := styleguide.Clone()
		if err != nil {
			return nil, err
		}

		if _, err := page.ParseFS(templatesFS, "templates/"+styleguideComponentID+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse component page: %w", err)
		}

		demo := page.Lookup("demo-" + component.Slug)
		if demo == nil {
			return nil, fmt.Errorf("missing demo template for component %s", component.Slug)
		}

		if _, err := page.AddParseTree("demo", demo.Tree.Copy()); err != nil {
			return nil, fmt.Errorf("failed to bind demo for component %s: %w", component.Slug, err)
		}

		r.pages[ComponentPage(component.Slug)] = page
	}

	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any) error {
	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	return page.ExecuteTemplate(w, "layout", data)
}
