package filepicker

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"impractical.co/filepicker/bytesize"
)

// Asset paths used by the rendered widget.
const (
	FileIcon   = "/images/pdf.png"
	RemoveIcon = "/icons/cross.svg"
	PromptIcon = "/icons/info.svg"
)

// ViewOptions represents the host-specific parts of the rendered widget.
type ViewOptions struct {
	// ID, if set, is used as the id of the outermost element.
	ID string

	// Action, if set, wraps the widget in a multipart form posting the
	// chosen files, in a field named "file", to Action.
	Action string

	// RemoveAction is where the remove control posts, when Action is set.
	RemoveAction string

	// DragAction is where the client reports drag-over changes.
	DragAction string
}

// TypesHint returns the accepted types and size limit, for example
// "PDF/DOC/DOCX (max 20 MB)".
func TypesHint() string {
	return typeList() + " (max " + bytesize.Format(MaxFileSize) + ")"
}

// WarningText is shown after a rejected drop. Wrong types and oversized
// files get the same message.
func WarningText() string {
	return "Only " + typeList() + " up to " + bytesize.Format(MaxFileSize) + " are allowed."
}

func typeList() string {
	return strings.Join(DocumentTypes.Labels(), "/")
}

// View renders the widget in its current state.
func (p *Picker) View(opts ViewOptions) templ.Component {
	sel := p.Selection()
	warning := p.Warning()
	dragActive := p.DragActive()
	rootAttrs := p.zone.RootAttrs()
	rootAttrs["data-filepicker-browse"] = strconv.FormatBool(p.CanBrowse())
	inputAttrs := p.zone.InputAttrs()
	if opts.Action != "" {
		inputAttrs["name"] = "file"
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.open("div", map[string]string{"id": opts.ID, "class": "w-full gradient-border", "data-filepicker": "true", "data-filepicker-drag": opts.DragAction})
		if opts.Action != "" {
			hw.open("form", map[string]string{"method": "post", "enctype": "multipart/form-data", "action": opts.Action})
		}
		zoneClass := "p-4 border-2 border-dashed rounded-md transition border-gray-300"
		if dragActive {
			zoneClass = "p-4 border-2 border-dashed rounded-md transition border-blue-500 bg-blue-50"
		}
		rootAttrs["class"] = zoneClass
		hw.open("div", rootAttrs)
		hw.void("input", inputAttrs)
		hw.open("div", map[string]string{"class": "space-y-4 cursor-pointer"})
		if sel.State == Selected {
			renderSelected(hw, sel.File, opts)
		} else {
			renderEmpty(hw, warning)
		}
		hw.close("div")
		hw.close("div")
		if opts.Action != "" {
			hw.close("form")
		}
		hw.close("div")
		return hw.err
	})
}

func renderSelected(hw *htmlWriter, file *File, opts ViewOptions) {
	hw.open("div", map[string]string{"class": "uploader-selected-file flex items-center space-x-3", "data-filepicker-contain": "true"})
	hw.void("img", map[string]string{"src": FileIcon, "alt": "file", "class": "w-10 h-10"})
	hw.open("div", map[string]string{"class": "flex-1"})
	hw.element("p", map[string]string{"class": "text-sm font-medium text-gray-700 truncate max-w-xs", "title": file.Name}, file.Name)
	hw.element("p", map[string]string{"class": "text-sm text-gray-500"}, bytesize.Format(file.Size))
	hw.close("div")
	button := map[string]string{"type": "button", "class": "p-2 cursor-pointer", "aria-label": "remove", "data-filepicker-remove": "true"}
	if opts.Action != "" {
		button["type"] = "submit"
		button["formaction"] = opts.RemoveAction
	}
	hw.open("button", button)
	hw.void("img", map[string]string{"src": RemoveIcon, "alt": "remove", "class": "w-4 h-4"})
	hw.close("button")
	hw.close("div")
}

func renderEmpty(hw *htmlWriter, warning bool) {
	hw.open("div", map[string]string{"class": "text-center"})
	hw.open("div", map[string]string{"class": "mx-auto w-16 h-16 flex items-center justify-center mb-2"})
	hw.void("img", map[string]string{"src": PromptIcon, "alt": "upload", "class": "w-20 h-20"})
	hw.close("div")
	hw.open("p", map[string]string{"class": "text-lg text-gray-500"})
	hw.element("span", map[string]string{"class": "font-semibold"}, "Click to upload")
	hw.text(" or drag and drop")
	hw.close("p")
	hw.element("p", map[string]string{"class": "text-lg text-gray-500"}, TypesHint())
	if warning {
		hw.element("p", map[string]string{"class": "text-sm text-red-600 mt-2", "role": "alert", "data-filepicker-warning": "true"}, WarningText())
	}
	hw.close("div")
}

// htmlWriter writes escaped markup and remembers the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) open(tag string, attrs map[string]string) {
	h.raw("<" + tag)
	keys := make([]string, 0, len(attrs))
	for k, v := range attrs {
		// unset attributes are left off entirely
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.raw(" " + k + "=\"" + templ.EscapeString(attrs[k]) + "\"")
	}
	h.raw(">")
}

func (h *htmlWriter) void(tag string, attrs map[string]string) {
	h.open(tag, attrs)
}

func (h *htmlWriter) close(tag string) {
	h.raw("</" + tag + ">")
}

func (h *htmlWriter) element(tag string, attrs map[string]string, body string) {
	h.open(tag, attrs)
	h.text(body)
	h.close(tag)
}
