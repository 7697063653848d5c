package imgdoc2go

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewThenOpenRoundTrips(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "doc.imgdoc2")

	doc, err := New(ctx, path, CreateOptions{
		Axes:              2,
		Dimensions:        []Dimension{'C', 'T'},
		IndexedDimensions: []Dimension{'C'},
		UseSpatialIndex:   true,
		CreateBlobTable:   true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	coord, err := NewTileCoordinate(TileCoordinateValue{Dimension: 'C', Value: 0}, TileCoordinateValue{Dimension: 'T', Value: 1})
	if err != nil {
		t.Fatalf("NewTileCoordinate: %v", err)
	}

	pk, err := doc.AddTile(ctx, AddTileRequest{
		Coordinate: coord,
		Position:   LogicalPosition{PosX: 0, PosY: 0, Width: 10, Height: 10},
		Info:       TileBaseInfo{PyramidLevel: 0},
		BlobInfo:   TileBlobInfo{PixelWidth: 4, PixelHeight: 4, DataType: DataTypeUncompressedBitmap},
		Data:       []byte{1, 2, 3, 4},
	})
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}

	if _, err := doc.UpdateOrCreateItemForPath(ctx, true, true, "scan/operator", MetadataTypeText, StringValue("alice")); err != nil {
		t.Fatalf("UpdateOrCreateItemForPath: %v", err)
	}

	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, path, OpenExistingOptions{ReadOnly: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	if reopened.Axes() != 2 {
		t.Errorf("Axes() = %d, want 2", reopened.Axes())
	}

	info, err := reopened.ReadTileInfo(ctx, pk, TileInfoQueryOptions{Coordinate: true, BlobInfo: true})
	if err != nil {
		t.Fatalf("ReadTileInfo: %v", err)
	}
	if v, ok := info.Coordinate.Get('T'); !ok || v != 1 {
		t.Errorf("coordinate T = (%d, %v), want (1, true)", v, ok)
	}

	item, err := reopened.GetItemForPath(ctx, "scan/operator", MetadataFlagTypeAndValue)
	if err != nil {
		t.Fatalf("GetItemForPath: %v", err)
	}
	if item.Value.String() != "alice" {
		t.Errorf("metadata value = %q, want alice", item.Value.String())
	}
}

func TestNewRejectsUnsupportedAxisCount(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bad.imgdoc2")

	if _, err := New(ctx, path, CreateOptions{Axes: 7}); err == nil {
		t.Error("expected New with an unsupported axis count to fail")
	}
}

func TestDocumentAxisMismatchReturnsError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "2d.imgdoc2")

	doc, err := New(ctx, path, CreateOptions{Axes: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer doc.Close()

	if _, err := doc.AddBrick(ctx, AddBrickRequest{}); err == nil {
		t.Error("expected AddBrick on a 2-axis document to fail")
	}
}
