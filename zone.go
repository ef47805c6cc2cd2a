package filepicker

import (
	"context"
	"fmt"
	"strconv"

	"impractical.co/filepicker/magicnumber"
	"yall.in"
)

// RejectionCode identifies why a dropped file was not accepted.
type RejectionCode string

const (
	// CodeFileInvalidType means the file's type isn't in the AcceptRule.
	CodeFileInvalidType RejectionCode = "file-invalid-type"
	// CodeFileTooLarge means the file is bigger than the Zone's MaxSize.
	CodeFileTooLarge RejectionCode = "file-too-large"
	// CodeFileTooSmall means the file is smaller than the Zone's MinSize.
	CodeFileTooSmall RejectionCode = "file-too-small"
)

// Rejection is a dropped file that failed validation, along with every
// reason it failed.
type Rejection struct {
	File  File
	Codes []RejectionCode
}

// Has reports whether the Rejection includes code.
func (r Rejection) Has(code RejectionCode) bool {
	for _, c := range r.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// DropResult is the outcome of a single drop or browse action.
type DropResult struct {
	Accepted   []File
	Rejections []Rejection
}

// ZoneConfig represents the validation and notification settings of a Zone.
type ZoneConfig struct {
	// Multiple allows more than one file per drop. When false, only the
	// first accepted file of a drop is kept and the rest are discarded.
	Multiple bool

	// Accept, if set, limits the file types the Zone accepts.
	Accept AcceptRule

	// MaxSize and MinSize, if positive, bound the accepted file size in
	// bytes, inclusive.
	MaxSize int64
	MinSize int64

	// SniffContent additionally requires a file's content to be
	// recognizable as one of the MIME types in Accept.
	SniffContent bool

	OnDropAccepted func(ctx context.Context, files []File)
	OnDropRejected func(ctx context.Context, rejections []Rejection)
}

// Zone is the drop-zone capability: it tracks drag-over gestures and sorts
// the files of each drop into accepted files and rejections. It holds no
// selection of its own.
type Zone struct {
	cfg       ZoneConfig
	dragDepth int
}

// NewZone returns a Zone using the provided configuration.
func NewZone(cfg ZoneConfig) *Zone {
	return &Zone{cfg: cfg}
}

// DragEnter records a drag entering the drop zone or one of its children.
func (z *Zone) DragEnter() {
	z.dragDepth++
}

// DragLeave records a drag leaving the drop zone or one of its children.
func (z *Zone) DragLeave() {
	if z.dragDepth > 0 {
		z.dragDepth--
	}
}

// DragEnd forgets any drag in progress.
func (z *Zone) DragEnd() {
	z.dragDepth = 0
}

// DragActive reports whether a drag is currently hovering over the zone.
func (z *Zone) DragActive() bool {
	return z.dragDepth > 0
}

// Drop validates files and returns which were accepted and which were
// rejected. A drop always ends the current drag.
//
// Each file is checked for its type first, then its size; a file failing
// both carries both codes. When the Zone isn't configured for multiple
// files, only the first accepted file is returned.
//
// If SniffContent is set, the Content of every file that passes the other
// checks is read far enough to identify it, and replaced with a reader that
// yields the complete original stream.
func (z *Zone) Drop(ctx context.Context, files []File) DropResult {
	log := yall.FromContext(ctx)
	log = log.WithField("filepicker.dropped", len(files))
	z.DragEnd()

	var result DropResult
	for _, file := range files {
		flog := log.WithField("filepicker.file_name", file.Name)
		flog = flog.WithField("filepicker.file_size", file.Size)
		codes := z.validate(ctx, &file)
		if len(codes) > 0 {
			flog.WithField("filepicker.codes", fmt.Sprintf("%v", codes)).Debug("[filepicker] file rejected")
			result.Rejections = append(result.Rejections, Rejection{File: file, Codes: codes})
			continue
		}
		flog.Debug("[filepicker] file accepted")
		result.Accepted = append(result.Accepted, file)
	}
	if !z.cfg.Multiple && len(result.Accepted) > 1 {
		log.WithField("filepicker.discarded", len(result.Accepted)-1).Debug("[filepicker] keeping only the first accepted file")
		result.Accepted = result.Accepted[:1]
	}

	if len(result.Accepted) > 0 && z.cfg.OnDropAccepted != nil {
		z.cfg.OnDropAccepted(ctx, result.Accepted)
	}
	if len(result.Rejections) > 0 && z.cfg.OnDropRejected != nil {
		z.cfg.OnDropRejected(ctx, result.Rejections)
	}
	return result
}

func (z *Zone) validate(ctx context.Context, file *File) []RejectionCode {
	var codes []RejectionCode
	if !z.cfg.Accept.Allows(file.Name, file.ContentType) {
		codes = append(codes, CodeFileInvalidType)
	}
	if z.cfg.MaxSize > 0 && file.Size > z.cfg.MaxSize {
		codes = append(codes, CodeFileTooLarge)
	}
	if z.cfg.MinSize > 0 && file.Size < z.cfg.MinSize {
		codes = append(codes, CodeFileTooSmall)
	}
	if len(codes) > 0 || !z.cfg.SniffContent || len(z.cfg.Accept) == 0 {
		return codes
	}
	if file.Content == nil {
		return []RejectionCode{CodeFileInvalidType}
	}
	detected, rest, err := magicnumber.Sniff(file.Content, z.cfg.Accept.MIMEs())
	file.Content = rest
	if err != nil {
		yall.FromContext(ctx).WithField("filepicker.file_name", file.Name).WithField("filepicker.sniff_error", err.Error()).Debug("[filepicker] content did not match an accepted type")
		return []RejectionCode{CodeFileInvalidType}
	}
	file.ContentType = detected
	return nil
}

// RootAttrs returns the attributes the drop-zone container element must
// carry to receive clicks, keyboard focus, and drag events.
func (z *Zone) RootAttrs() map[string]string {
	return map[string]string{
		"role":                     "presentation",
		"tabindex":                 "0",
		"data-filepicker-zone":     "true",
		"data-filepicker-active":   strconv.FormatBool(z.DragActive()),
		"data-filepicker-multiple": strconv.FormatBool(z.cfg.Multiple),
	}
}

// InputAttrs returns the attributes the hidden file input element must carry
// so the browser's file dialog offers only acceptable files.
func (z *Zone) InputAttrs() map[string]string {
	attrs := map[string]string{
		"type":                  "file",
		"style":                 "display: none",
		"tabindex":              "-1",
		"autocomplete":          "off",
		"data-filepicker-input": "true",
	}
	if accept := z.cfg.Accept.InputAccept(); accept != "" {
		attrs["accept"] = accept
	}
	if z.cfg.Multiple {
		attrs["multiple"] = "multiple"
	}
	return attrs
}
