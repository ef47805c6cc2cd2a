// Package filepicker implements a single-file document picker: a drop zone
// that accepts PDF, DOC, and DOCX files up to 20 MB, shows the selected file
// with a control to remove it, and reports selection changes to its caller.
//
// The Picker owns its selection state. A Zone validates dropped or browsed
// files and acts purely as an event source; it never decides what is
// selected.
package filepicker

import (
	"context"
	"errors"
	"io"
)

// MaxFileSize is the largest file, in bytes, the Picker accepts.
const MaxFileSize int64 = 20 * 1024 * 1024

// ErrPickerNotFound is returned when a Snapshot is requested and can't be
// found.
var ErrPickerNotFound = errors.New("picker not found")

// DocumentTypes is the set of file types the Picker accepts.
var DocumentTypes = AcceptRule{
	{MIME: "application/pdf", Extensions: []string{".pdf"}},
	{MIME: "application/msword", Extensions: []string{".doc"}},
	{MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Extensions: []string{".docx"}},
}

// File represents a file the user dropped or browsed for. Content is owned by
// whatever produced the File; the Picker only ever looks at the metadata.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// Snapshot is the state of a Picker between events, for hosts that rebuild
// the widget on every event. File never carries Content.
type Snapshot struct {
	ID         string
	File       *File
	Warning    bool
	DragActive bool
}

// Storer holds Snapshots between events. Implementations only need to keep
// them for the lifetime of the process.
type Storer interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}
