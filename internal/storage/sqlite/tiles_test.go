package sqlite

import (
	"context"
	"testing"

	"github.com/imgdoc2/imgdoc2go/internal/model"
)

func newCoord(t *testing.T, pairs ...model.TileCoordinateValue) model.TileCoordinate {
	t.Helper()
	c, err := model.NewTileCoordinate(pairs...)
	if err != nil {
		t.Fatalf("NewTileCoordinate: %v", err)
	}
	return c
}

func TestAddTileAndReadBack(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 2, []model.Dimension{'C', 'T'}, []model.Dimension{'C'}, true, true)
	store := NewTileStore(conn, cfg)

	req := model.AddTileRequest{
		Coordinate: newCoord(t, model.TileCoordinateValue{Dimension: 'C', Value: 1}, model.TileCoordinateValue{Dimension: 'T', Value: 2}),
		Position:   model.LogicalPosition{PosX: 10, PosY: 20, Width: 100, Height: 200},
		Info:       model.TileBaseInfo{PyramidLevel: 0},
		BlobInfo:   model.TileBlobInfo{PixelWidth: 256, PixelHeight: 256, DataType: model.DataTypeUncompressedBitmap},
		Data:       []byte{1, 2, 3, 4},
	}

	pk, err := store.AddTile(ctx, req)
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}
	if pk == 0 {
		t.Fatal("AddTile returned pk 0")
	}

	info, err := store.ReadTileInfo(ctx, pk, model.TileInfoQueryOptions{Coordinate: true, Position: true, BlobInfo: true})
	if err != nil {
		t.Fatalf("ReadTileInfo: %v", err)
	}
	if cv, ok := info.Coordinate.Get('C'); !ok || cv != 1 {
		t.Errorf("coordinate C = (%d, %v), want (1, true)", cv, ok)
	}
	if info.Position.PosX != 10 || info.Position.Width != 100 {
		t.Errorf("position = %+v, want PosX=10 Width=100", info.Position)
	}
	if !info.HasBlobInfo || info.BlobInfo.PixelWidth != 256 {
		t.Errorf("blob info = %+v", info.BlobInfo)
	}

	data, err := store.ReadTileData(ctx, pk)
	if err != nil {
		t.Fatalf("ReadTileData: %v", err)
	}
	if string(data) != "\x01\x02\x03\x04" {
		t.Errorf("tile data = %v, want [1 2 3 4]", data)
	}
}

func TestAddTileWithoutPayload(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 2, nil, nil, false, true)
	store := NewTileStore(conn, cfg)

	pk, err := store.AddTile(ctx, model.AddTileRequest{
		Position: model.LogicalPosition{Width: 1, Height: 1},
	})
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}

	data, err := store.ReadTileData(ctx, pk)
	if err != nil {
		t.Fatalf("ReadTileData of a no-payload tile: %v", err)
	}
	if data != nil {
		t.Errorf("tile data = %v, want nil for a no-payload tile", data)
	}
}

func TestAddTileRejectsOnAxisMismatch(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 3, nil, nil, false, false)
	store := NewTileStore(conn, cfg)

	if _, err := store.AddTile(ctx, model.AddTileRequest{}); err == nil {
		t.Error("expected AddTile on a 3-axis document to fail")
	}
}

func TestAddBrickAndReadBack(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 3, []model.Dimension{'C'}, nil, true, true)
	store := NewTileStore(conn, cfg)

	req := model.AddBrickRequest{
		Coordinate: newCoord(t, model.TileCoordinateValue{Dimension: 'C', Value: 0}),
		Position:   model.LogicalPosition3d{PosX: 1, PosY: 2, PosZ: 3, Width: 4, Height: 5, Depth: 6},
		Info:       model.BrickBaseInfo{PyramidLevel: 1},
		BlobInfo:   model.TileBlobInfo{PixelWidth: 8, PixelHeight: 8, PixelDepth: 8},
		Data:       []byte{9, 9},
	}

	pk, err := store.AddBrick(ctx, req)
	if err != nil {
		t.Fatalf("AddBrick: %v", err)
	}

	info, err := store.ReadTileInfo(ctx, pk, model.TileInfoQueryOptions{Position: true})
	if err != nil {
		t.Fatalf("ReadTileInfo: %v", err)
	}
	if info.Position3d.PosZ != 3 || info.Position3d.Depth != 6 {
		t.Errorf("3d position = %+v", info.Position3d)
	}
	if info.Info.PyramidLevel != 1 {
		t.Errorf("PyramidLevel = %d, want 1", info.Info.PyramidLevel)
	}
}

func TestReadTileInfoNonExisting(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 2, nil, nil, false, false)
	store := NewTileStore(conn, cfg)

	if _, err := store.ReadTileInfo(ctx, 12345, model.TileInfoQueryOptions{}); err == nil {
		t.Error("expected ReadTileInfo on a non-existing pk to fail")
	}
}

func TestQueryByDimensionRange(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 2, []model.Dimension{'T'}, []model.Dimension{'T'}, false, false)
	store := NewTileStore(conn, cfg)

	for i := int32(0); i < 5; i++ {
		_, err := store.AddTile(ctx, model.AddTileRequest{
			Coordinate: newCoord(t, model.TileCoordinateValue{Dimension: 'T', Value: i}),
			Position:   model.LogicalPosition{Width: 1, Height: 1},
		})
		if err != nil {
			t.Fatalf("AddTile %d: %v", i, err)
		}
	}

	clause := &model.CoordinateQueryClause{Dimensions: []model.DimensionRangeClauses{
		{Dimension: 'T', Ranges: []model.RangeClause{{Start: 1, End: 3}}},
	}}

	var got []int64
	err := store.Query(ctx, clause, nil, func(pk int64) bool {
		got = append(got, pk)
		return true
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	// Tiles carry T=0..4: RangeClause{1,3} means 1<T<3 per the module's RangeClause
	// semantics, so only T=2 matches.
	if len(got) != 1 {
		t.Errorf("matched %d tiles, want 1 (T=2 only): pks=%v", len(got), got)
	}
}

func TestGetTilesIntersectingRect(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 2, nil, nil, true, false)
	store := NewTileStore(conn, cfg)

	inside, err := store.AddTile(ctx, model.AddTileRequest{Position: model.LogicalPosition{PosX: 0, PosY: 0, Width: 10, Height: 10}})
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}
	outside, err := store.AddTile(ctx, model.AddTileRequest{Position: model.LogicalPosition{PosX: 1000, PosY: 1000, Width: 10, Height: 10}})
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}

	var got []int64
	err = store.GetTilesIntersectingRect(ctx, model.Rectangle{X: -5, Y: -5, W: 20, H: 20}, nil, nil, func(pk int64) bool {
		got = append(got, pk)
		return true
	})
	if err != nil {
		t.Fatalf("GetTilesIntersectingRect: %v", err)
	}

	if len(got) != 1 || got[0] != inside {
		t.Errorf("got %v, want only [%d] (outside=%d)", got, inside, outside)
	}
}

func TestGetTileDimensionsAndCounts(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 2, []model.Dimension{'C'}, nil, false, false)
	store := NewTileStore(conn, cfg)

	for level := int32(0); level < 2; level++ {
		for i := 0; i < 3; i++ {
			_, err := store.AddTile(ctx, model.AddTileRequest{
				Coordinate: newCoord(t, model.TileCoordinateValue{Dimension: 'C', Value: int32(i)}),
				Position:   model.LogicalPosition{Width: 1, Height: 1},
				Info:       model.TileBaseInfo{PyramidLevel: level},
			})
			if err != nil {
				t.Fatalf("AddTile: %v", err)
			}
		}
	}

	dims := store.GetTileDimensions()
	if len(dims) != 1 || dims[0] != 'C' {
		t.Errorf("GetTileDimensions = %v, want [C]", dims)
	}

	minMax, err := store.GetMinMaxForTileDimension(ctx, []model.Dimension{'C'})
	if err != nil {
		t.Fatalf("GetMinMaxForTileDimension: %v", err)
	}
	if mm := minMax['C']; !mm.Valid || mm.Min != 0 || mm.Max != 2 {
		t.Errorf("min/max for C = %v, want valid [0 2]", mm)
	}

	total, err := store.GetTotalTileCount(ctx)
	if err != nil {
		t.Fatalf("GetTotalTileCount: %v", err)
	}
	if total != 6 {
		t.Errorf("GetTotalTileCount = %d, want 6", total)
	}

	perLayer, err := store.GetTileCountPerLayer(ctx)
	if err != nil {
		t.Fatalf("GetTileCountPerLayer: %v", err)
	}
	if perLayer[0] != 3 || perLayer[1] != 3 {
		t.Errorf("GetTileCountPerLayer = %v, want {0:3 1:3}", perLayer)
	}
}

func TestGetMinMaxForTileDimensionReportsInvalidOnEmptyDocument(t *testing.T) {
	ctx := context.Background()
	conn, cfg := newTestDocument(t, 2, []model.Dimension{'C'}, nil, false, false)
	store := NewTileStore(conn, cfg)

	minMax, err := store.GetMinMaxForTileDimension(ctx, []model.Dimension{'C'})
	if err != nil {
		t.Fatalf("GetMinMaxForTileDimension: %v", err)
	}
	if mm := minMax['C']; mm.Valid {
		t.Errorf("min/max for C on an empty document = %v, want an invalid interval", mm)
	}

	xRange, yRange, err := store.GetTilesBoundingBox(ctx)
	if err != nil {
		t.Fatalf("GetTilesBoundingBox: %v", err)
	}
	if xRange.Valid || yRange.Valid {
		t.Errorf("GetTilesBoundingBox on an empty document = (%v, %v), want both invalid", xRange, yRange)
	}
}
