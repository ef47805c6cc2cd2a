package magicnumber

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
)

const (
	pdfMIME  = "application/pdf"
	docMIME  = "application/msword"
	docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type testCase struct {
	in          [][]byte
	writeErr    []error
	closeErr    error
	MatchedMIME string
}

func padBytes(in []byte) []byte {
	for len(in) < 300 {
		in = append(in, in...)
	}
	return in
}

// oleDoc returns a Word 97 file header: the OLE2 compound file signature
// with the Word FIB identifier at the start of the second sector.
func oleDoc() []byte {
	b := make([]byte, 4096)
	copy(b, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	copy(b[512:], []byte{0xEC, 0xA5, 0xC1, 0x00})
	return b
}

type zipEntry struct {
	name string
	body []byte
}

func zipBytes(method uint16, entries ...zipEntry) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: method})
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(e.body); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

var (
	testpdf      = padBytes([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"))
	testshortpdf = []byte("%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF\n")
	testpng      = padBytes([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	testdoc      = oleDoc()
	testdocx     = zipBytes(zip.Deflate,
		zipEntry{name: "[Content_Types].xml", body: []byte(`<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`)},
		zipEntry{name: "_rels/.rels", body: []byte(`<?xml version="1.0"?><Relationships></Relationships>`)},
		zipEntry{name: "word/document.xml", body: []byte(`<?xml version="1.0"?><w:document><w:body><w:p/></w:body></w:document>`)},
	)
	testzip      = zipBytes(zip.Store, zipEntry{name: "notes.txt", body: bytes.Repeat([]byte("note "), 80)})
	testlargezip = zipBytes(zip.Store, zipEntry{name: "notes.txt", body: bytes.Repeat([]byte("note "), MaxHeaderBytes)})
)

var testCases = map[string]testCase{
	"ShortPDF": {
		in:          [][]byte{testshortpdf},
		MatchedMIME: pdfMIME,
	},
	"ShortUnknown": {
		in:       [][]byte{[]byte("hello")},
		closeErr: ErrUnsupportedFile,
	},
	"DOC": {
		in:          [][]byte{testdoc},
		MatchedMIME: docMIME,
	},
	"DOCX": {
		in:          [][]byte{testdocx},
		MatchedMIME: docxMIME,
	},
	"ZIPNotDocument": {
		in:       [][]byte{testzip},
		closeErr: ErrUnsupportedFile,
	},
	"ZIPNotDocumentPastHeaderCap": {
		in:       [][]byte{testlargezip},
		writeErr: []error{ErrUnsupportedFile},
		closeErr: ErrUnsupportedFile,
	},
	"FileTypeNotSupported": {
		in:       [][]byte{testpng},
		writeErr: []error{ErrUnsupportedFile},
		closeErr: ErrUnsupportedFile,
	},
	"UnknownContent": {
		in:       [][]byte{padBytes([]byte("this is a text/plain file, which is a real MIME type but isn't one of the supported mimes."))},
		closeErr: ErrUnsupportedFile,
	},
	"PDF": {
		in:          [][]byte{testpdf},
		MatchedMIME: pdfMIME,
	},
	"PDFMultiWrites": {
		in:          [][]byte{testpdf[:100], testpdf[100:270], testpdf[270:]},
		MatchedMIME: pdfMIME,
	},
}

func TestChecker(t *testing.T) {
	t.Parallel()
	for l, c := range testCases {
		label := l
		testCase := c
		t.Run(label, func(t *testing.T) {
			t.Parallel()
			checker := &Checker{
				SupportedMIMEs: []string{
					pdfMIME, docMIME, docxMIME,
				},
			}
			for pos, in := range testCase.in {
				_, err := checker.Write(in)
				var expected error
				if len(testCase.writeErr) > pos {
					expected = testCase.writeErr[pos]
				}
				if err != expected {
					t.Errorf("Expected error on write to be %q, got %q with detected MIME type %q", expected, err, checker.MatchedMIME)
					return
				}
			}
			err := checker.Close()
			if err != testCase.closeErr {
				t.Errorf("Expected error on close to be %q, got %q with detected MIME type %q", testCase.closeErr, err, checker.MatchedMIME)
				return
			}
			if checker.MatchedMIME != testCase.MatchedMIME {
				t.Errorf("Expected matched MIME to be %q, got %q", testCase.MatchedMIME, checker.MatchedMIME)
			}
		})
	}
}

func TestCheckerGivesUpOnUnknownContent(t *testing.T) {
	t.Parallel()
	checker := &Checker{SupportedMIMEs: []string{pdfMIME}}
	chunk := bytes.Repeat([]byte("plain text "), 100)
	var err error
	for written := 0; written < MaxHeaderBytes && err == nil; written += len(chunk) {
		_, err = checker.Write(chunk)
	}
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("Expected %q once %d bytes were buffered, got %v", ErrUnsupportedFile, MaxHeaderBytes, err)
	}
}

func TestSniff(t *testing.T) {
	t.Parallel()
	table := map[string]struct {
		in   []byte
		mime string
		err  error
	}{
		"PDF":              {in: testpdf, mime: pdfMIME},
		"ShortPDF":         {in: testshortpdf, mime: pdfMIME},
		"DOCX":             {in: testdocx, mime: docxMIME},
		"PNG":              {in: testpng, err: ErrUnsupportedFile},
		"LargerThanHeader": {in: append(append([]byte{}, testpdf...), bytes.Repeat([]byte{'x'}, MaxHeaderBytes*2)...), mime: pdfMIME},
	}
	for name, tc := range table {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			mime, rest, err := Sniff(bytes.NewReader(tc.in), []string{pdfMIME, docMIME, docxMIME})
			if !errors.Is(err, tc.err) {
				t.Errorf("Expected error to be %v, got %v", tc.err, err)
				return
			}
			if mime != tc.mime {
				t.Errorf("Expected MIME %q, got %q", tc.mime, mime)
			}
			b, err := io.ReadAll(rest)
			if err != nil {
				t.Errorf("Unexpected error reading remaining stream: %s", err)
				return
			}
			if !bytes.Equal(b, tc.in) {
				t.Errorf("Expected the sniffed stream to be returned intact (%d bytes), got %d bytes", len(tc.in), len(b))
			}
		})
	}
}
