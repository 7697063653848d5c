package sqlite

import (
	"context"
	"testing"

	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// newTestDocument creates an in-memory document with the given axis count
// and dimensions, ready for tile/metadata tests. conn is closed when the
// test ends, via t.Cleanup.
func newTestDocument(t *testing.T, axes int, dims []model.Dimension, indexed []model.Dimension, spatialIndex, blobTable bool) (*Connection, *Configuration) {
	t.Helper()
	ctx := context.Background()

	conn, err := Open(ctx, ":memory:", true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	docType := DocTypeImage2d
	if axes == 3 {
		docType = DocTypeImage3d
	}

	cfg, err := CreateTables(ctx, conn.DB, CreateOptions{
		Axes:              axes,
		DocType:           docType,
		Dimensions:        dims,
		IndexedDimensions: indexed,
		UseSpatialIndex:   spatialIndex,
		CreateBlobTable:   blobTable,
	})
	if err != nil {
		t.Fatalf("CreateTables: %v", err)
	}

	return conn, cfg
}
