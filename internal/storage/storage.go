// Package storage defines the engine's public storage-layer contracts: a
// Document (the open file plus its schema), and the Reader/Writer/Metadata
// facets a 2-D or 3-D document exposes. The concrete implementation lives in
// internal/storage/sqlite; this package exists so the root-level facade and
// callers depend on interfaces, not the backend package directly.
package storage

import (
	"context"

	"github.com/imgdoc2/imgdoc2go/internal/model"
	"github.com/imgdoc2/imgdoc2go/internal/storage/sqlite"
)

// Document is the handle to one open imgdoc2 file. Closing it releases the
// underlying SQLite connection and any cached prepared statements.
//
// # Concurrency
//
// A Document is not safe for concurrent use from multiple goroutines: the
// engine deliberately does no internal locking (see spec §5), matching a
// single SQLite connection used by a single caller at a time. Callers that
// need concurrent access must synchronize externally.
//
// # Transactions
//
// Writer2d.AddTile and Writer3d.AddBrick each run inside their own implicit
// transaction; there is currently no API for batching multiple tile writes
// into one transaction from outside the package.
type Document interface {
	Close() error
	Axes() int
	Statistics(ctx context.Context) (sqlite.Statistics, error)
}

// TileReader is the read-side operations shared by 2-D and 3-D documents.
type TileReader interface {
	ReadTileInfo(ctx context.Context, pk int64, opts model.TileInfoQueryOptions) (model.TileInfoResult, error)
	ReadTileData(ctx context.Context, pk int64) ([]byte, error)
	Query(ctx context.Context, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, fn func(pk int64) bool) error
	GetTileDimensions() []model.Dimension
	GetMinMaxForTileDimension(ctx context.Context, dims []model.Dimension) (map[model.Dimension]model.Int32Interval, error)
	GetTotalTileCount(ctx context.Context) (uint64, error)
	GetTileCountPerLayer(ctx context.Context) (map[int32]uint64, error)
}

// Reader2d is the full read-side API of a 2-axis document.
type Reader2d interface {
	TileReader
	GetTilesBoundingBox(ctx context.Context) (xRange, yRange model.Float64Interval, err error)
	GetTilesIntersectingRect(ctx context.Context, rect model.Rectangle, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, fn func(pk int64) bool) error
}

// Reader3d is the full read-side API of a 3-axis document.
type Reader3d interface {
	TileReader
	GetBricksBoundingBox(ctx context.Context) (xRange, yRange, zRange model.Float64Interval, err error)
	GetTilesIntersectingCuboid(ctx context.Context, cuboid model.Cuboid, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, fn func(pk int64) bool) error
	GetTilesIntersectingPlane(ctx context.Context, plane model.Plane, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, fn func(pk int64) bool) error
}

// Writer2d is the write-side API of a 2-axis document.
type Writer2d interface {
	AddTile(ctx context.Context, req model.AddTileRequest) (int64, error)
}

// Writer3d is the write-side API of a 3-axis document.
type Writer3d interface {
	AddBrick(ctx context.Context, req model.AddBrickRequest) (int64, error)
}

// MetadataReader is the read-side of the document-metadata forest, shared
// unchanged between 2-D and 3-D documents.
type MetadataReader interface {
	GetItem(ctx context.Context, pk int64, flags model.MetadataItemFlags) (model.MetadataItem, error)
	GetItemForPath(ctx context.Context, path string, flags model.MetadataItemFlags) (model.MetadataItem, error)
	EnumerateItems(ctx context.Context, parent *int64, recursive bool, flags model.MetadataItemFlags, fn func(pk int64, item model.MetadataItem) bool) error
	EnumerateItemsForPath(ctx context.Context, path string, recursive bool, flags model.MetadataItemFlags, fn func(pk int64, item model.MetadataItem) bool) error
}

// MetadataWriter is the write-side of the document-metadata forest.
type MetadataWriter interface {
	UpdateOrCreateItem(ctx context.Context, parent *int64, createIfNotExists bool, name string, typ model.MetadataType, value model.MetadataValue) (int64, error)
	UpdateOrCreateItemForPath(ctx context.Context, createPathIfNotExists, createNodeIfNotExists bool, path string, typ model.MetadataType, value model.MetadataValue) (int64, error)
	DeleteItem(ctx context.Context, pk *int64, recursively bool) (uint64, error)
	DeleteItemForPath(ctx context.Context, path string, recursively bool) (uint64, error)
}
