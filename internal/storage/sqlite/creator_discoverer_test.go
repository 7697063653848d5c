package sqlite

import (
	"context"
	"testing"

	"github.com/imgdoc2/imgdoc2go/internal/model"
)

func TestCreateTables2d(t *testing.T) {
	dims := []model.Dimension{'C', 'T'}
	indexed := []model.Dimension{'C'}
	_, cfg := newTestDocument(t, 2, dims, indexed, true, true)

	if cfg.Axes != 2 {
		t.Errorf("Axes = %d, want 2", cfg.Axes)
	}
	if !cfg.HasSpatialIndex {
		t.Error("HasSpatialIndex = false, want true")
	}
	if !cfg.HasBlobTable {
		t.Error("HasBlobTable = false, want true")
	}
	if !cfg.IsIndexed('C') {
		t.Error("dimension C should be indexed")
	}
	if cfg.IsIndexed('T') {
		t.Error("dimension T should not be indexed")
	}
}

func TestCreateTables3d(t *testing.T) {
	_, cfg := newTestDocument(t, 3, []model.Dimension{'C'}, nil, false, false)

	if cfg.Axes != 3 {
		t.Errorf("Axes = %d, want 3", cfg.Axes)
	}
	if _, ok := cfg.TilesInfoColumns[TilesInfoTileZ]; !ok {
		t.Error("3-axis configuration should have a TileZ column")
	}
}

func TestCreateTablesRejectsBadAxisCount(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, ":memory:", true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	if _, err := CreateTables(ctx, conn.DB, CreateOptions{Axes: 4, DocType: DocTypeImage2d}); err == nil {
		t.Error("expected an error for an unsupported axis count, got nil")
	}
}

func TestDiscoverConfigurationRoundTrips2d(t *testing.T) {
	ctx := context.Background()
	conn, created := newTestDocument(t, 2, []model.Dimension{'C', 'T'}, []model.Dimension{'C'}, true, true)

	discovered, err := DiscoverConfiguration(ctx, conn.DB)
	if err != nil {
		t.Fatalf("DiscoverConfiguration: %v", err)
	}

	if discovered.Axes != created.Axes {
		t.Errorf("Axes = %d, want %d", discovered.Axes, created.Axes)
	}
	if discovered.DocType != created.DocType {
		t.Errorf("DocType = %q, want %q", discovered.DocType, created.DocType)
	}
	if !discovered.HasSpatialIndex || !discovered.HasBlobTable {
		t.Error("discovered configuration lost the spatial index or blob table flag")
	}
	if !discovered.IsIndexed('C') {
		t.Error("discovered configuration lost the indexed dimension C")
	}
	if len(discovered.Dimensions) != 2 {
		t.Errorf("Dimensions = %v, want 2 entries", discovered.Dimensions)
	}
}

func TestDiscoverConfigurationRoundTrips3d(t *testing.T) {
	ctx := context.Background()
	conn, _ := newTestDocument(t, 3, []model.Dimension{'Z'}, nil, false, false)

	discovered, err := DiscoverConfiguration(ctx, conn.DB)
	if err != nil {
		t.Fatalf("DiscoverConfiguration: %v", err)
	}
	if discovered.Axes != 3 {
		t.Errorf("Axes = %d, want 3", discovered.Axes)
	}
	if discovered.HasSpatialIndex || discovered.HasBlobTable {
		t.Error("discovered a spatial index / blob table that was never created")
	}
}

func TestDiscoverConfigurationRejectsMissingDocType(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, ":memory:", true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	if _, err := conn.DB.ExecContext(ctx, `CREATE TABLE [GENERAL] ([Key] TEXT(40) UNIQUE, [ValueString] TEXT);`); err != nil {
		t.Fatalf("create empty GENERAL table: %v", err)
	}

	if _, err := DiscoverConfiguration(ctx, conn.DB); err == nil {
		t.Error("expected discovery of a GENERAL table with no DocType to fail")
	}
}
