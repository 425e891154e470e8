package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"prism-todo/codec"
	"prism-todo/domain"
)

const defaultExportName = "todos.json"

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, editor Editor, opts Options, logger *log.Logger) {
	if opts.ExportName == "" {
		opts.ExportName = defaultExportName
	}
	e.GET("/api/tasks", getTasks(editor))
	e.POST("/api/tasks", postTask(editor))
	e.DELETE("/api/tasks/:id", deleteTask(editor))
	e.POST("/api/commands", postCommands(editor))
	e.GET("/api/categories", getCategories())
	e.GET("/api/export", getExport(editor, opts.ExportName, logger))
	e.POST("/api/import", postImport(editor, logger))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func groupViews(groups []domain.Group) []groupView {
	out := make([]groupView, len(groups))
	for i, g := range groups {
		out[i] = groupView{Category: g.Category.String(), Label: g.Category.DisplayName(), Items: g.Items}
	}
	return out
}

func getTasks(editor Editor) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks := editor.Tasks()
		return c.JSON(http.StatusOK, tasksResponse{
			Tasks:  tasks,
			Groups: groupViews(domain.GroupByCategory(tasks)),
		})
	}
}

func getCategories() echo.HandlerFunc {
	return func(c echo.Context) error {
		cats := domain.Categories()
		out := make([]categoryView, len(cats))
		for i, cat := range cats {
			out[i] = categoryView{Category: cat.String(), Label: cat.DisplayName()}
		}
		return c.JSON(http.StatusOK, out)
	}
}

func postTask(editor Editor) echo.HandlerFunc {
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, postTaskMaxSize)
		dec := jsonAPI.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req postTaskRequest
		if err := dec.Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		task, err := editor.Add(req.Title, domain.Category(req.Category))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func deleteTask(editor Editor) echo.HandlerFunc {
	return func(c echo.Context) error {
		editor.DeleteKey(pathParam(c, "id"))
		return c.NoContent(http.StatusNoContent)
	}
}

// pathParam returns the decoded value of a path parameter. echo routes on
// the escaped path when the URL has one, leaving sequences such as %2F in
// the parameter.
func pathParam(c echo.Context, name string) string {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func postCommands(editor Editor) echo.HandlerFunc {
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, postCommandMaxSize)
		dec := jsonAPI.NewDecoder(lr)
		dec.DisallowUnknownFields()

		cmds := make([]domain.Command, 0, 4)
		if err := dec.Decode(&cmds); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		for _, cmd := range cmds {
			switch cmd.Type {
			case domain.CommandAdd, domain.CommandDelete, domain.CommandSet:
			default:
				return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown command type %q", cmd.Type)})
			}
		}

		n := editor.Apply(cmds)
		return c.JSON(http.StatusAccepted, countResponse{Tasks: n})
	}
}

func getExport(editor Editor, fileName string, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, spanCtx := newDocumentRequestMetrics(c.Request().Context(), logger, "/api/export")
		c.SetRequest(c.Request().WithContext(spanCtx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		encodeStart := time.Now()
		data, exportErr := editor.Export()
		metrics.ObserveEncode(time.Since(encodeStart))
		if exportErr != nil {
			metrics.SetErrorStage("encode")
			c.Logger().Error(exportErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to export tasks"})
			return err
		}
		metrics.SetDocumentBytes(int64(len(data)))
		metrics.SetTasks(len(editor.Tasks()))

		c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
		err = c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
		return err
	}
}

func postImport(editor Editor, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, spanCtx := newDocumentRequestMetrics(c.Request().Context(), logger, "/api/import")
		c.SetRequest(c.Request().WithContext(spanCtx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		req := c.Request()
		if req.ContentLength > codec.MaxUploadSize {
			tooLarge := &codec.ImportError{Kind: codec.TooLarge, Size: req.ContentLength}
			metrics.SetErrorStage(importErrorStage(tooLarge))
			return importFailure(c, tooLarge)
		}
		req.Body = http.MaxBytesReader(c.Response(), req.Body, codec.MaxUploadSize)

		readStart := time.Now()
		body, size, openErr := importSource(c)
		metrics.ObserveRead(time.Since(readStart))
		if openErr != nil {
			metrics.SetErrorStage(importErrorStage(openErr))
			return importFailure(c, openErr)
		}
		defer body.Close()
		metrics.SetDocumentBytes(size)

		if size > 0 {
			if sizeErr := codec.CheckSize(size); sizeErr != nil {
				metrics.SetErrorStage(importErrorStage(sizeErr))
				return importFailure(c, sizeErr)
			}
		}

		decodeStart := time.Now()
		n, importErr := editor.Import(body)
		metrics.ObserveDecode(time.Since(decodeStart))
		if importErr != nil {
			metrics.SetErrorStage(importErrorStage(importErr))
			return importFailure(c, importErr)
		}
		metrics.SetTasks(n)
		err = c.JSON(http.StatusOK, countResponse{Tasks: n})
		return err
	}
}

// importSource returns the uploaded document and its declared size, or -1
// when the size is not known before reading. Multipart uploads are read
// from the "file" field; any other body is taken as the document itself.
func importSource(c echo.Context) (io.ReadCloser, int64, error) {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, 0, fmt.Errorf("read upload: %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, 0, fmt.Errorf("open upload: %w", err)
		}
		return f, fh.Size, nil
	}
	return io.NopCloser(req.Body), req.ContentLength, nil
}

func importErrorStage(err error) string {
	if ie := codec.UploadTooLarge(err); ie != nil {
		return ie.Kind.String()
	}
	var ie *codec.ImportError
	if errors.As(err, &ie) {
		return ie.Kind.String()
	}
	return "read"
}

// importFailure writes the response for a refused import. The session is
// untouched at this point.
func importFailure(c echo.Context, err error) error {
	if tooLarge := codec.UploadTooLarge(err); tooLarge != nil {
		err = tooLarge
	}
	var ie *codec.ImportError
	if errors.As(err, &ie) {
		status := http.StatusBadRequest
		if ie.Kind == codec.TooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		return c.JSON(status, errorResponse{Error: ie.Message(), Kind: ie.Kind.String()})
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge {
		return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: (&codec.ImportError{Kind: codec.TooLarge}).Message(), Kind: codec.TooLarge.String()})
	}
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "Error importing file: " + err.Error()})
}
