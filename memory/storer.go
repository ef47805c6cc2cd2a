package memory

import (
	"context"

	memdb "github.com/hashicorp/go-memdb"
	"impractical.co/filepicker"
)

var _ filepicker.Storer = &Storer{}

var (
	schema = &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"picker": {
				Name: "picker",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}
)

type picker struct {
	ID         string
	File       *filepicker.File
	Warning    bool
	DragActive bool
}

func fromSnapshot(s filepicker.Snapshot) *picker {
	p := &picker{
		ID:         s.ID,
		Warning:    s.Warning,
		DragActive: s.DragActive,
	}
	if s.File != nil {
		f := *s.File
		f.Content = nil
		p.File = &f
	}
	return p
}

func (p *picker) snapshot() filepicker.Snapshot {
	s := filepicker.Snapshot{
		ID:         p.ID,
		Warning:    p.Warning,
		DragActive: p.DragActive,
	}
	if p.File != nil {
		f := *p.File
		s.File = &f
	}
	return s
}

// Storer keeps picker Snapshots in an in-memory database. Stored values are
// copies; modifying a Snapshot after saving it doesn't change what's stored.
type Storer struct {
	db *memdb.MemDB
}

// Save inserts snap, replacing any Snapshot with the same ID.
func (s *Storer) Save(ctx context.Context, snap filepicker.Snapshot) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	err := txn.Insert("picker", fromSnapshot(snap))
	if err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Load returns the Snapshot saved under id, or filepicker.ErrPickerNotFound.
func (s *Storer) Load(ctx context.Context, id string) (filepicker.Snapshot, error) {
	txn := s.db.Txn(false)
	res, err := txn.First("picker", "id", id)
	if err != nil {
		return filepicker.Snapshot{}, err
	}
	if res == nil {
		return filepicker.Snapshot{}, filepicker.ErrPickerNotFound
	}
	return res.(*picker).snapshot(), nil
}

// Delete removes the Snapshot saved under id. Deleting an unknown id is not
// an error.
func (s *Storer) Delete(ctx context.Context, id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	exists, err := txn.First("picker", "id", id)
	if err != nil {
		return err
	}
	if exists == nil {
		return nil
	}
	err = txn.Delete("picker", exists)
	if err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// NewStorer returns an empty Storer.
func NewStorer() (*Storer, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}
	return &Storer{
		db: db,
	}, nil
}
