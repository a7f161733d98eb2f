package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/pgdiscovery/internal/database"
	"github.com/koustreak/pgdiscovery/internal/discovery"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/koustreak/pgdiscovery/internal/logger"
	"github.com/koustreak/pgdiscovery/internal/schema"
)

// Handler serves the discovery operations over HTTP.
type Handler struct {
	discoverer   discovery.SchemaDiscoverer
	reader       schema.Reader
	db           database.DB
	log          *logger.Logger
	queryTimeout time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithQueryTimeout bounds every request's catalog work. Zero disables it.
func WithQueryTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) { h.queryTimeout = d }
}

// WithHandlerLogger sets the logger used for failed requests.
func WithHandlerLogger(l *logger.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler returns a Handler. db is used only by the health check.
func NewHandler(d discovery.SchemaDiscoverer, r schema.Reader, db database.DB, opts ...HandlerOption) *Handler {
	h := &Handler{
		discoverer: d,
		reader:     r,
		db:         db,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/snapshot", h.Snapshot)
		r.Get("/tables", h.Tables)
		r.Route("/tables/{table}", func(r chi.Router) {
			r.Get("/", h.Table)
			r.Get("/columns", h.Columns)
			r.Get("/primary-keys", h.PrimaryKeys)
			r.Get("/foreign-keys", h.ForeignKeys)
			r.Get("/exported-foreign-keys", h.ExportedForeignKeys)
		})
	})
}

// ListResponse wraps every descriptor listing.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// HealthResponse reports the catalog connection.
type HealthResponse struct {
	Status string               `json:"status"`
	Server *database.ServerInfo `json:"server,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Health reports whether the catalog answers, with its version and session.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	info, err := database.Info(ctx, h.db)
	if err != nil {
		h.log.ErrorWith("health check failed", err, nil)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Server: info})
}

// Tables lists tables, then views when views=true.
func (h *Handler) Tables(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	rows, err := h.discoverer.DiscoverModelDefinitions(ctx, opts)
	respond(h, w, r, rows, err)
}

// Table returns one table with its columns and keys.
func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	rel, err := h.reader.InspectTable(ctx, opts.OwnerName(), chi.URLParam(r, "table"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

// Columns lists the columns of {table}.
func (h *Handler) Columns(w http.ResponseWriter, r *http.Request) {
	perTable(h, w, r, h.discoverer.DiscoverModelProperties)
}

// PrimaryKeys lists the primary key columns of {table}.
func (h *Handler) PrimaryKeys(w http.ResponseWriter, r *http.Request) {
	perTable(h, w, r, h.discoverer.DiscoverPrimaryKeys)
}

// ForeignKeys lists the foreign keys declared on {table}.
func (h *Handler) ForeignKeys(w http.ResponseWriter, r *http.Request) {
	perTable(h, w, r, h.discoverer.DiscoverForeignKeys)
}

// ExportedForeignKeys lists the foreign keys that reference {table}.
func (h *Handler) ExportedForeignKeys(w http.ResponseWriter, r *http.Request) {
	perTable(h, w, r, h.discoverer.DiscoverExportedForeignKeys)
}

// Snapshot returns the whole catalog scope, as JSON unless ?format=yaml.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	format := schema.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		if format, err = schema.ParseFormat(f); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	snap, err := h.reader.InspectSchema(ctx, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	if err := schema.Encode(w, format, snap); err != nil {
		h.log.ErrorWith("failed to encode snapshot", err, nil)
	}
}

func perTable[T any](h *Handler, w http.ResponseWriter, r *http.Request,
	op func(context.Context, string, *discovery.Options) ([]T, error)) {
	opts, err := parseOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	rows, err := op(ctx, chi.URLParam(r, "table"), opts)
	respond(h, w, r, rows, err)
}

func respond[T any](h *Handler, w http.ResponseWriter, r *http.Request, rows []T, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[T]{Data: rows, Count: len(rows)})
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.queryTimeout)
}

// parseOptions reads the discovery options from the query string.
func parseOptions(r *http.Request) (*discovery.Options, error) {
	q := r.URL.Query()
	opts := &discovery.Options{
		Owner:  q.Get("owner"),
		Schema: q.Get("schema"),
	}

	var err error
	if opts.All, err = boolParam(q.Get("all"), "all"); err != nil {
		return nil, err
	}
	if opts.Views, err = boolParam(q.Get("views"), "views"); err != nil {
		return nil, err
	}
	if opts.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return nil, err
	}
	if opts.Skip, err = intParam(q.Get("skip"), "skip"); err != nil {
		return nil, err
	}
	if opts.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return nil, err
	}
	return opts, nil
}

func boolParam(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.InvalidArgument("query parameter %s must be a boolean: %q", name, v)
	}
	return b, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.InvalidArgument("query parameter %s must be an integer: %q", name, v)
	}
	return n, nil
}

// statusFor maps an error kind onto an HTTP status. Catalog failures are
// upstream failures from the API's point of view.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindInvalidArgument:
		return http.StatusBadRequest
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorWith("request failed", err, map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
		})
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: errs.KindOf(err).String()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
