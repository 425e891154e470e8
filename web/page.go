// Package web serves the single editor page: the grouped task list, the add
// form, delete buttons and export/import controls.
package web

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"prism-todo/codec"
	"prism-todo/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Editor is the session the page renders and changes.
type Editor interface {
	Groups() []domain.Group
	Add(title string, category domain.Category) (domain.Task, error)
	DeleteKey(key string) bool
	Import(r io.Reader) (int, error)
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded page templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type categoryOption struct {
	Value    string
	Label    string
	Selected bool
}

type groupSection struct {
	Label string
	Items []domain.Task
}

type pageData struct {
	Alert      string
	Categories []categoryOption
	Groups     []groupSection
	ExportName string
}

// Register wires the page routes. The echo instance must have a Renderer
// from NewRenderer.
func Register(e *echo.Echo, editor Editor, exportName string, logger *log.Logger) {
	e.GET("/", index(editor, exportName))
	e.POST("/tasks", addTask(editor, logger))
	e.POST("/tasks/delete", deleteTask(editor))
	e.POST("/import", importTasks(editor, exportName, logger))
}

func buildPage(editor Editor, selected domain.Category, exportName, alert string) pageData {
	if !selected.Valid() {
		selected = domain.Categories()[0]
	}
	data := pageData{Alert: alert, ExportName: exportName}
	for _, cat := range domain.Categories() {
		data.Categories = append(data.Categories, categoryOption{
			Value:    cat.String(),
			Label:    cat.DisplayName(),
			Selected: cat == selected,
		})
	}
	// Empty groups are not shown.
	for _, g := range editor.Groups() {
		if len(g.Items) == 0 {
			continue
		}
		data.Groups = append(data.Groups, groupSection{Label: g.Category.DisplayName(), Items: g.Items})
	}
	return data
}

func index(editor Editor, exportName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		selected := domain.Category(c.QueryParam("category"))
		return c.Render(http.StatusOK, "index.html", buildPage(editor, selected, exportName, ""))
	}
}

func redirectHome(c echo.Context, category domain.Category) error {
	target := "/"
	if category.Valid() {
		target += "?" + url.Values{"category": {category.String()}}.Encode()
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func addTask(editor Editor, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		category := domain.Category(c.FormValue("category"))
		if _, err := editor.Add(c.FormValue("title"), category); err != nil {
			// Invalid input is a no-op, as in the store.
			logger.WithField("category", category).Debugf("page add ignored: %v", err)
		}
		return redirectHome(c, category)
	}
}

func deleteTask(editor Editor) echo.HandlerFunc {
	return func(c echo.Context) error {
		editor.DeleteKey(c.FormValue("id"))
		return redirectHome(c, "")
	}
}

func importTasks(editor Editor, exportName string, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.ContentLength > codec.MaxUploadSize {
			return renderImportError(c, editor, exportName, &codec.ImportError{Kind: codec.TooLarge, Size: req.ContentLength})
		}
		req.Body = http.MaxBytesReader(c.Response(), req.Body, codec.MaxUploadSize)

		fh, err := c.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			// No file picked: nothing to do.
			return redirectHome(c, "")
		}
		if err != nil {
			return renderImportError(c, editor, exportName, err)
		}
		if err := codec.CheckSize(fh.Size); err != nil {
			return renderImportError(c, editor, exportName, err)
		}
		f, err := fh.Open()
		if err != nil {
			logger.Errorf("open upload: %v", err)
			return renderImportError(c, editor, exportName, err)
		}
		defer f.Close()

		if _, err := editor.Import(f); err != nil {
			return renderImportError(c, editor, exportName, err)
		}
		return redirectHome(c, "")
	}
}

func renderImportError(c echo.Context, editor Editor, exportName string, err error) error {
	if tooLarge := codec.UploadTooLarge(err); tooLarge != nil {
		err = tooLarge
	}
	status := http.StatusBadRequest
	alert := "Error importing file: " + err.Error()
	var ie *codec.ImportError
	if errors.As(err, &ie) {
		alert = ie.Message()
		if ie.Kind == codec.TooLarge {
			status = http.StatusRequestEntityTooLarge
		}
	}
	return c.Render(status, "index.html", buildPage(editor, "", exportName, alert))
}
