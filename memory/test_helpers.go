package memory

import (
	"context"

	"impractical.co/filepicker"
)

// Factory creates Storers for tests that run against every Storer
// implementation.
type Factory struct{}

func (f Factory) NewStorer(ctx context.Context) (filepicker.Storer, error) {
	return NewStorer()
}

func (f Factory) TeardownStorers() error {
	return nil
}
