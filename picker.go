package filepicker

import (
	"context"

	"yall.in"
)

// State is which of its two views a Picker shows.
type State int

const (
	// Empty means no file is selected.
	Empty State = iota
	// Selected means exactly one file is selected.
	Selected
)

func (s State) String() string {
	if s == Selected {
		return "selected"
	}
	return "empty"
}

// ClickTarget identifies the part of the widget a click landed on.
type ClickTarget int

const (
	// ClickDropZone is any part of the drop zone outside the selected file.
	ClickDropZone ClickTarget = iota
	// ClickSelectedFile is the selected file's row, outside its remove
	// control.
	ClickSelectedFile
	// ClickRemove is the selected file's remove control.
	ClickRemove
)

// SelectFunc is notified whenever the selection changes. file is nil when the
// selection was cleared.
type SelectFunc func(ctx context.Context, file *File)

// Selection is the Picker's current selection.
type Selection struct {
	State State
	File  *File
}

// Option configures optional behaviors of a Picker.
type Option func(*options)

type options struct {
	onSelect SelectFunc
	sniff    bool
}

// WithOnFileSelect registers fn to be notified of selection changes.
func WithOnFileSelect(fn SelectFunc) Option {
	return func(o *options) {
		o.onSelect = fn
	}
}

// WithContentSniffing makes the Picker reject files whose content doesn't
// look like one of DocumentTypes, regardless of their name or declared
// type.
func WithContentSniffing() Option {
	return func(o *options) {
		o.sniff = true
	}
}

// Picker is a single-file document picker. It accepts one file of
// DocumentTypes at a time, up to MaxFileSize.
//
// A Picker is not safe for concurrent use; hosts deliver events to it one at
// a time.
type Picker struct {
	zone     *Zone
	onSelect SelectFunc
	file     *File
	warning  bool
}

// New returns an empty Picker.
func New(opts ...Option) *Picker {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Picker{
		zone: NewZone(ZoneConfig{
			Multiple:     false,
			Accept:       DocumentTypes,
			MaxSize:      MaxFileSize,
			SniffContent: o.sniff,
		}),
		onSelect: o.onSelect,
	}
}

// Restore returns a Picker in the state recorded by snap. Restoring does not
// notify the SelectFunc.
func Restore(snap Snapshot, opts ...Option) *Picker {
	p := New(opts...)
	if snap.File != nil {
		f := *snap.File
		f.Content = nil
		p.file = &f
	}
	p.warning = snap.Warning
	if snap.DragActive {
		p.zone.DragEnter()
	}
	return p
}

// Snapshot records the Picker's state under id. The selected file's Content
// is not part of the Snapshot.
func (p *Picker) Snapshot(id string) Snapshot {
	snap := Snapshot{
		ID:         id,
		Warning:    p.warning,
		DragActive: p.zone.DragActive(),
	}
	if p.file != nil {
		f := *p.file
		f.Content = nil
		snap.File = &f
	}
	return snap
}

// Selection returns the current selection.
func (p *Picker) Selection() Selection {
	if p.file == nil {
		return Selection{State: Empty}
	}
	return Selection{State: Selected, File: p.file}
}

// Warning reports whether the rejection warning is showing: nothing is
// selected and the most recent drop was rejected.
func (p *Picker) Warning() bool {
	return p.file == nil && p.warning
}

// DragActive reports whether a drag is hovering over the drop zone.
func (p *Picker) DragActive() bool {
	return p.zone.DragActive()
}

// DragEnter records a drag entering the drop zone.
func (p *Picker) DragEnter() {
	p.zone.DragEnter()
}

// DragLeave records a drag leaving the drop zone.
func (p *Picker) DragLeave() {
	p.zone.DragLeave()
}

// Drop handles files dropped onto the widget. The first accepted file
// becomes the selection and the SelectFunc is called with it; if every file
// is rejected, the selection is left alone, the SelectFunc isn't called, and
// the warning is raised.
func (p *Picker) Drop(ctx context.Context, files []File) {
	log := yall.FromContext(ctx).WithField("filepicker.action", "drop")
	log.Debug("[filepicker] handling drop")
	p.handle(yall.InContext(ctx, log), files)
}

// Browse handles files chosen from the browser's file dialog. It behaves
// exactly like Drop.
func (p *Picker) Browse(ctx context.Context, files []File) {
	log := yall.FromContext(ctx).WithField("filepicker.action", "browse")
	log.Debug("[filepicker] handling browse")
	p.handle(yall.InContext(ctx, log), files)
}

func (p *Picker) handle(ctx context.Context, files []File) {
	if len(files) == 0 {
		// a drop carrying no files still ends the drag
		p.zone.DragEnd()
		return
	}
	result := p.zone.Drop(ctx, files)
	if len(result.Accepted) == 0 {
		p.warning = len(result.Rejections) > 0
		return
	}
	file := result.Accepted[0]
	p.file = &file
	p.warning = false
	selected := file
	p.notify(ctx, &selected)
}

// Remove clears the selection and calls the SelectFunc with nil. It does
// nothing when no file is selected.
func (p *Picker) Remove(ctx context.Context) {
	if p.file == nil {
		return
	}
	yall.FromContext(ctx).WithField("filepicker.file_name", p.file.Name).Debug("[filepicker] removing selected file")
	p.file = nil
	p.warning = false
	p.notify(ctx, nil)
}

// Click handles a click on target and reports whether the browser's file
// dialog should open. Clicks on the selected file or its remove control
// never open the dialog.
func (p *Picker) Click(ctx context.Context, target ClickTarget) bool {
	switch target {
	case ClickRemove:
		p.Remove(ctx)
		return false
	case ClickSelectedFile:
		return false
	default:
		return p.CanBrowse()
	}
}

// CanBrowse reports whether a click on the drop zone opens the browser's file
// dialog, which it only does while no file is selected.
func (p *Picker) CanBrowse() bool {
	return p.file == nil
}

func (p *Picker) notify(ctx context.Context, file *File) {
	if p.onSelect == nil {
		return
	}
	p.onSelect(ctx, file)
}
