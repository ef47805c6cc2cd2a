package filepicker_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"impractical.co/filepicker"
	"impractical.co/filepicker/memory"
	yall "yall.in"
	"yall.in/colour"
)

type Factory interface {
	NewStorer(ctx context.Context) (filepicker.Storer, error)
	TeardownStorers() error
}

var factories []Factory

func TestMain(m *testing.M) {
	flag.Parse()

	// set up our test storers
	factories = append(factories, memory.Factory{})

	// run the tests
	result := m.Run()

	// tear down all the storers we created
	for _, factory := range factories {
		err := factory.TeardownStorers()
		if err != nil {
			log.Printf("Error cleaning up after %T: %+v\n", factory, err)
		}
	}

	// return the test result
	os.Exit(result)
}

func testContext() context.Context {
	logger := yall.New(colour.New(os.Stdout, yall.Debug))
	return yall.InContext(context.Background(), logger)
}

func runTest(t *testing.T, f func(*testing.T, filepicker.Storer, context.Context)) {
	t.Parallel()
	for _, factory := range factories {
		ctx := testContext()
		storer, err := factory.NewStorer(ctx)
		if err != nil {
			t.Fatalf("Error creating Storer from %T: %+v\n", factory, err)
		}
		t.Run(fmt.Sprintf("Storer=%T", storer), func(t *testing.T) {
			t.Parallel()
			f(t, storer, ctx)
		})
	}
}

func TestSaveLoadDelete(t *testing.T) {
	table := map[string]filepicker.Snapshot{
		"empty":   {ID: "empty"},
		"warning": {ID: "warning", Warning: true},
		"selected": {
			ID:   "selected",
			File: &filepicker.File{Name: "report.pdf", Size: 2048, ContentType: "application/pdf", Content: strings.NewReader("%PDF-1.4")},
		},
		"dragging": {ID: "dragging", DragActive: true},
	}
	for id, snap := range table {
		id, snap := id, snap
		t.Run("ID="+id, func(t *testing.T) {
			runTest(t, func(t *testing.T, storer filepicker.Storer, ctx context.Context) {
				err := storer.Save(ctx, snap)
				if err != nil {
					t.Errorf("Unexpected error saving: %s", err)
					return
				}

				got, err := storer.Load(ctx, snap.ID)
				if err != nil {
					t.Errorf("Unexpected error loading: %s", err)
					return
				}
				if got.ID != snap.ID || got.Warning != snap.Warning || got.DragActive != snap.DragActive {
					t.Errorf("Expected %+v, got %+v", snap, got)
					return
				}
				if (got.File == nil) != (snap.File == nil) {
					t.Errorf("Expected file %+v, got %+v", snap.File, got.File)
					return
				}
				if got.File != nil {
					if got.File.Name != snap.File.Name || got.File.Size != snap.File.Size || got.File.ContentType != snap.File.ContentType {
						t.Errorf("Expected file %+v, got %+v", snap.File, got.File)
						return
					}
					if got.File.Content != nil {
						t.Errorf("Expected stored file to carry no content, got %T", got.File.Content)
						return
					}
				}

				err = storer.Delete(ctx, snap.ID)
				if err != nil {
					t.Errorf("Unexpected error: %s", err)
					return
				}
				_, err = storer.Load(ctx, snap.ID)
				if !errors.Is(err, filepicker.ErrPickerNotFound) {
					t.Errorf("Expected %q, got %q", filepicker.ErrPickerNotFound, err)
					return
				}
				err = storer.Delete(ctx, snap.ID)
				if err != nil {
					t.Errorf("Unexpected error: %s", err)
					return
				}
			})
		})
	}
}

func TestSaveReplaces(t *testing.T) {
	runTest(t, func(t *testing.T, storer filepicker.Storer, ctx context.Context) {
		snap := filepicker.Snapshot{ID: "replace", Warning: true}
		if err := storer.Save(ctx, snap); err != nil {
			t.Errorf("Unexpected error saving: %s", err)
			return
		}
		snap.Warning = false
		snap.File = &filepicker.File{Name: "letter.docx", Size: 10}
		if err := storer.Save(ctx, snap); err != nil {
			t.Errorf("Unexpected error saving: %s", err)
			return
		}
		snap.File.Name = "changed after save"
		got, err := storer.Load(ctx, "replace")
		if err != nil {
			t.Errorf("Unexpected error loading: %s", err)
			return
		}
		if got.Warning {
			t.Errorf("Expected the second save to replace the first")
		}
		if got.File == nil || got.File.Name != "letter.docx" {
			t.Errorf("Expected stored file letter.docx, got %+v", got.File)
		}
	})
}
