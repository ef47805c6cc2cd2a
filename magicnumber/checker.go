package magicnumber

import (
	"bytes"
	"errors"
	"io"

	"github.com/h2non/filetype"
)

// the minimum number of bytes needed to determine the MIME type.
const minBytesNeeded = 261

// MaxHeaderBytes is the most data a Checker will hold in memory while trying
// to determine the MIME type of a file.
const MaxHeaderBytes = 8192

// OOXML documents are ZIP archives until enough of the archive is seen to
// find the document parts, so a ZIP match is never final.
const zipMIME = "application/zip"

// ErrUnsupportedFile is returned when the detected MIME type of the file isn't
// in the SupportedMIMEs list or the file is not large enough for us to detect
// a MIME type on it.
var ErrUnsupportedFile = errors.New("unsupported file")

// Checker is an io.WriteCloser that will check to see if the data passed to it
// is for a file with a MIME type in SupportedMIMEs. If so, MatchedMIME will be
// set to the MIME type matched and Write and Close will return no error.
// Otherwise, ErrUnsupportedFile is returned, either from Write as soon as we
// can tell what MIME type the file is, or from Close if no MIME type has been
// detected.
type Checker struct {
	buf            []byte
	SupportedMIMEs []string
	MatchedMIME    string
}

// Write checks the incoming data for magic number bytes that will indicate the
// MIME type of the data. Once a MIME type is matched, no more data is read
// into memory, and the function is a no-op. If a MIME type is detected that
// isn't in SupportedMIMEs, ErrUnsupportedFile is returned. Data that can't be
// identified yet is buffered until MaxHeaderBytes have been seen.
func (m *Checker) Write(b []byte) (int, error) {
	if m.MatchedMIME != "" {
		return len(b), nil
	}
	m.buf = append(m.buf, b...)
	if len(m.buf) < minBytesNeeded {
		return len(b), nil
	}
	for _, mime := range m.SupportedMIMEs {
		if filetype.IsMIME(m.buf, mime) {
			m.MatchedMIME = mime
			m.buf = nil
			return len(b), nil
		}
	}
	kind, err := filetype.Match(m.buf)
	if err == nil && kind.MIME.Value != "" && kind.MIME.Value != zipMIME {
		m.buf = nil
		return len(b), ErrUnsupportedFile
	}
	if len(m.buf) >= MaxHeaderBytes {
		m.buf = nil
		return len(b), ErrUnsupportedFile
	}
	return len(b), nil
}

// Close makes a last attempt to match whatever was buffered, so files shorter
// than the usual detection window are still identified when their magic
// number fits. It returns ErrUnsupportedFile if no supported MIME type was
// detected.
func (m *Checker) Close() error {
	defer func() { m.buf = nil }()
	if m.MatchedMIME != "" {
		return nil
	}
	if len(m.buf) > 0 {
		for _, mime := range m.SupportedMIMEs {
			if filetype.IsMIME(m.buf, mime) {
				m.MatchedMIME = mime
				return nil
			}
		}
	}
	return ErrUnsupportedFile
}

// Sniff runs a Checker over at most MaxHeaderBytes of r. The returned reader
// yields the complete original stream, including the bytes consumed while
// sniffing, whether or not a MIME type matched.
func Sniff(r io.Reader, supported []string) (string, io.Reader, error) {
	checker := &Checker{SupportedMIMEs: supported}
	var head bytes.Buffer
	_, err := io.Copy(checker, io.TeeReader(io.LimitReader(r, MaxHeaderBytes), &head))
	rest := io.MultiReader(&head, r)
	if err != nil {
		return "", rest, err
	}
	if err := checker.Close(); err != nil {
		return "", rest, err
	}
	return checker.MatchedMIME, rest, nil
}
