package view

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/graphql-sample/userview/graphql"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page renders a full HTML document around root.
func Page(root *Node) (string, error) {
	var b strings.Builder
	err := pageTemplate.Execute(&b, struct {
		Title string
		Body  template.HTML
	}{
		Title: Title,
		Body:  template.HTML(root.HTML()),
	})
	return b.String(), err
}

type pageHandler struct {
	app     App
	client  *graphql.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler serves the App as a web page.  Each request mounts the App,
// waits up to timeout for the query to settle and renders whatever state it
// reached.  GET / uses the App's user; GET /users/{id} any other.
func NewHandler(app App, client *graphql.Client, gatherer prometheus.Gatherer, timeout time.Duration, logger *zap.Logger) http.Handler {
	h := &pageHandler{app: app, client: client, timeout: timeout, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, h.app)
	})
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, NewApp(chi.URLParam(r, "id")))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func (h *pageHandler) render(w http.ResponseWriter, r *http.Request, app App) {
	ctx, cancel := context.WithTimeout(graphql.NewContext(r.Context(), h.client), h.timeout)
	defer cancel()

	q := app.User.Mount(ctx)
	defer q.Close()
	state := q.Wait(ctx)

	page, err := Page(app.Render(state))
	if err != nil {
		h.logger.Error("render page", zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
