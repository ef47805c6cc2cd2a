// Package pickerhttp hosts filepicker widgets over HTTP. The browser reports
// clicks, drags, and chosen files; the server keeps each widget's state and
// renders it.
package pickerhttp

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"impractical.co/filepicker"
	"yall.in"
)

// PartialHeader, when set to "1" on a request, makes the Handler respond with
// the widget's markup instead of redirecting back to its page.
const PartialHeader = "X-Filepicker-Partial"

// DefaultMaxRequestBytes is the default cap on the size of a request body
// carrying files. It leaves room for a full-size file plus form overhead.
const DefaultMaxRequestBytes = 2*filepicker.MaxFileSize + 2<<20

// DefaultMaxMemory is how much of a multipart request is held in memory
// before the rest spills to temporary files.
const DefaultMaxMemory = 32 << 20

//go:embed assets/dropzone.js
var dropzoneJS []byte

// SelectFunc is notified whenever the selection of the picker with the
// given ID changes. file is nil when the selection was cleared.
type SelectFunc func(ctx context.Context, id string, file *filepicker.File)

// Option configures optional behaviors of a Handler.
type Option func(*Handler)

// WithOnFileSelect registers fn to be notified of selection changes.
func WithOnFileSelect(fn SelectFunc) Option {
	return func(h *Handler) {
		h.onSelect = fn
	}
}

// WithContentSniffing makes pickers check the content of uploaded files, not
// only their names and declared types.
func WithContentSniffing() Option {
	return func(h *Handler) {
		h.sniff = true
	}
}

// WithMaxRequestBytes caps the size of request bodies carrying files. Bodies
// over the cap count as a rejected, too-large drop.
func WithMaxRequestBytes(n int64) Option {
	return func(h *Handler) {
		h.maxRequestBytes = n
	}
}

// WithMaxMemory sets how much of a multipart request is held in memory.
func WithMaxMemory(n int64) Option {
	return func(h *Handler) {
		h.maxMemory = n
	}
}

// WithLogger sets the logger placed in every request's context.
func WithLogger(log *yall.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}

// Handler serves filepicker widgets, keeping their state in a
// filepicker.Storer between requests.
type Handler struct {
	store           filepicker.Storer
	onSelect        SelectFunc
	sniff           bool
	maxRequestBytes int64
	maxMemory       int64
	log             *yall.Logger
	router          chi.Router
	locks           pickerLocks
}

// New returns a Handler storing picker state in store.
func New(store filepicker.Storer, opts ...Option) *Handler {
	h := &Handler{
		store:           store,
		maxRequestBytes: DefaultMaxRequestBytes,
		maxMemory:       DefaultMaxMemory,
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.withLogger)
	r.Get("/", h.create)
	r.Get("/assets/dropzone.js", h.script)
	r.Route("/pickers/{id}", func(r chi.Router) {
		r.Get("/", h.page)
		r.Post("/files", h.files)
		r.Post("/remove", h.remove)
		r.Post("/drag", h.drag)
	})
	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := yall.FromContext(r.Context())
		if h.log != nil {
			log = h.log
		}
		log = log.WithField("filepicker.request_id", middleware.GetReqID(r.Context()))
		log = log.WithField("filepicker.method", r.Method)
		log = log.WithField("filepicker.path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(yall.InContext(r.Context(), log)))
	})
}

func (h *Handler) pickerOptions(id string) []filepicker.Option {
	var opts []filepicker.Option
	if h.onSelect != nil {
		onSelect := h.onSelect
		opts = append(opts, filepicker.WithOnFileSelect(func(ctx context.Context, file *filepicker.File) {
			onSelect(ctx, id, file)
		}))
	}
	if h.sniff {
		opts = append(opts, filepicker.WithContentSniffing())
	}
	return opts
}

func viewOptions(id string) filepicker.ViewOptions {
	base := "/pickers/" + id
	return filepicker.ViewOptions{
		ID:           "filepicker-" + id,
		Action:       base + "/files",
		RemoveAction: base + "/remove",
		DragAction:   base + "/drag",
	}
}

// load restores the picker named in the request, writing an error response
// and returning false if it can't.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (string, *filepicker.Picker, bool) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	snap, err := h.store.Load(ctx, id)
	if errors.Is(err, filepicker.ErrPickerNotFound) {
		http.Error(w, "Picker not found", http.StatusNotFound)
		return "", nil, false
	}
	if err != nil {
		yall.FromContext(ctx).WithError(err).Error("error loading picker")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return "", nil, false
	}
	return id, filepicker.Restore(snap, h.pickerOptions(id)...), true
}

// save stores the picker's state and responds with either the widget or a
// redirect to its page.
func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string, p *filepicker.Picker) {
	ctx := r.Context()
	err := h.store.Save(ctx, p.Snapshot(id))
	if err != nil {
		yall.FromContext(ctx).WithError(err).Error("error saving picker")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if r.Header.Get(PartialHeader) != "1" {
		http.Redirect(w, r, "/pickers/"+id, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = p.View(viewOptions(id)).Render(ctx, w)
	if err != nil {
		yall.FromContext(ctx).WithError(err).Error("error rendering picker")
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := uuid.NewString()
	err := h.store.Save(ctx, filepicker.New().Snapshot(id))
	if err != nil {
		yall.FromContext(ctx).WithError(err).Error("error creating picker")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	yall.FromContext(ctx).WithField("filepicker.id", id).Debug("[filepicker] created picker")
	http.Redirect(w, r, "/pickers/"+id, http.StatusSeeOther)
}

func (h *Handler) script(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(dropzoneJS)
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	id, p, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := writePage(ctx, w, p.View(viewOptions(id)))
	if err != nil {
		yall.FromContext(ctx).WithError(err).Error("error rendering page")
	}
}

func (h *Handler) files(w http.ResponseWriter, r *http.Request) {
	defer h.locks.lock(chi.URLParam(r, "id"))()
	id, p, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	log := yall.FromContext(ctx).WithField("filepicker.id", id)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	err := r.ParseMultipartForm(h.maxMemory)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var files []filepicker.File
	switch {
	case err == nil:
		for _, fh := range r.MultipartForm.File["file"] {
			f, err := fh.Open()
			if err != nil {
				log.WithError(err).Error("error opening uploaded file")
				http.Error(w, "Failed to read file", http.StatusBadRequest)
				return
			}
			defer f.Close()
			files = append(files, filepicker.File{
				Name:        fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get("Content-Type"),
				Content:     f,
			})
		}
	case isTooLarge(err):
		log.WithField("filepicker.max_request_bytes", h.maxRequestBytes).Debug("[filepicker] request body over the cap")
		files = []filepicker.File{tooLargeFile(h.maxRequestBytes)}
	default:
		log.WithError(err).Debug("[filepicker] couldn't parse form")
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	ctx = yall.InContext(ctx, log)
	if r.URL.Query().Get("via") == "drop" {
		p.Drop(ctx, files)
	} else {
		p.Browse(ctx, files)
	}
	h.save(w, r.WithContext(ctx), id, p)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	defer h.locks.lock(chi.URLParam(r, "id"))()
	id, p, ok := h.load(w, r)
	if !ok {
		return
	}
	p.Click(r.Context(), filepicker.ClickRemove)
	h.save(w, r, id, p)
}

func (h *Handler) drag(w http.ResponseWriter, r *http.Request) {
	defer h.locks.lock(chi.URLParam(r, "id"))()
	id, p, ok := h.load(w, r)
	if !ok {
		return
	}
	switch r.URL.Query().Get("active") {
	case "true":
		if !p.DragActive() {
			p.DragEnter()
		}
	case "false":
		for p.DragActive() {
			p.DragLeave()
		}
	default:
		http.Error(w, "active must be true or false", http.StatusBadRequest)
		return
	}
	h.save(w, r, id, p)
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// tooLargeFile stands in for the files of a request that was cut off at the
// body cap, so the picker rejects it the way it rejects any oversized file.
func tooLargeFile(limit int64) filepicker.File {
	size := limit
	if size < filepicker.MaxFileSize {
		size = filepicker.MaxFileSize
	}
	return filepicker.File{Size: size + 1}
}

func writePage(ctx context.Context, w io.Writer, widget templ.Component) error {
	_, err := io.WriteString(w, pageHead)
	if err != nil {
		return fmt.Errorf("error writing page head: %w", err)
	}
	err = widget.Render(ctx, w)
	if err != nil {
		return fmt.Errorf("error rendering widget: %w", err)
	}
	_, err = io.WriteString(w, pageTail)
	if err != nil {
		return fmt.Errorf("error writing page tail: %w", err)
	}
	return nil
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Upload a document</title>
<script src="/assets/dropzone.js" defer></script>
</head>
<body>
<main class="max-w-xl mx-auto p-8">
`

const pageTail = `
</main>
</body>
</html>
`
