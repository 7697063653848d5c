// Package imgdoc2go is a pure-Go engine for storing and querying large,
// pyramid-tiled 2-D images and 3-D volumes ("bricks") in a single SQLite
// file. It is the root-level facade over internal/storage/sqlite: New/Open
// create or open a document file and return a *Document exposing the tile
// and metadata read/write operations appropriate to its axis count.
package imgdoc2go

import (
	"context"

	"github.com/imgdoc2/imgdoc2go/internal/model"
	"github.com/imgdoc2/imgdoc2go/internal/storage/sqlite"
)

// Re-exported model types, so a caller only needs to import this package for
// the common case.
type (
	Dimension             = model.Dimension
	TileCoordinate        = model.TileCoordinate
	TileCoordinateValue   = model.TileCoordinateValue
	LogicalPosition       = model.LogicalPosition
	LogicalPosition3d     = model.LogicalPosition3d
	Rectangle             = model.Rectangle
	Cuboid                = model.Cuboid
	Plane                 = model.Plane
	TileBaseInfo          = model.TileBaseInfo
	BrickBaseInfo         = model.BrickBaseInfo
	TileBlobInfo          = model.TileBlobInfo
	PixelType             = model.PixelType
	DataType              = model.DataType
	AddTileRequest        = model.AddTileRequest
	AddBrickRequest       = model.AddBrickRequest
	TileInfoResult        = model.TileInfoResult
	TileInfoQueryOptions  = model.TileInfoQueryOptions
	CoordinateQueryClause = model.CoordinateQueryClause
	TileInfoQueryClause   = model.TileInfoQueryClause
	RangeClause           = model.RangeClause
	DimensionRangeClauses = model.DimensionRangeClauses
	MetadataType          = model.MetadataType
	MetadataValue         = model.MetadataValue
	MetadataItem          = model.MetadataItem
	MetadataItemFlags     = model.MetadataItemFlags
	Statistics            = sqlite.Statistics
)

const (
	RangeUnboundedStart = model.RangeUnboundedStart
	RangeUnboundedEnd   = model.RangeUnboundedEnd
)

// Re-exported DataType tags, for constructing TileBlobInfo without an
// import of internal/model.
const (
	DataTypeZero                  = model.DataTypeZero
	DataTypeUncompressedBitmap    = model.DataTypeUncompressedBitmap
	DataTypeJpgXrCompressedBitmap = model.DataTypeJpgXrCompressedBitmap
	DataTypeZstd0Compressed       = model.DataTypeZstd0Compressed
	DataTypeZstd1Compressed       = model.DataTypeZstd1Compressed
	DataTypeUncompressedBrick     = model.DataTypeUncompressedBrick
)

// Re-exported MetadataType tags.
const (
	MetadataTypeDefault = model.MetadataTypeDefault
	MetadataTypeNull    = model.MetadataTypeNull
	MetadataTypeInt32   = model.MetadataTypeInt32
	MetadataTypeDouble  = model.MetadataTypeDouble
	MetadataTypeText    = model.MetadataTypeText
	MetadataTypeJson    = model.MetadataTypeJson
)

// Re-exported MetadataItemFlags bits.
const (
	MetadataFlagNone         = model.MetadataFlagNone
	MetadataFlagPrimaryKey   = model.MetadataFlagPrimaryKey
	MetadataFlagName         = model.MetadataFlagName
	MetadataFlagTypeAndValue = model.MetadataFlagTypeAndValue
	MetadataFlagCompletePath = model.MetadataFlagCompletePath
)

// Re-exported constructors, for the same reason as the type aliases above.
var (
	NewTileCoordinate = model.NewTileCoordinate
	ParseDimension    = model.ParseDimension
	NoValue           = model.NoValue
	Int32Value        = model.Int32Value
	DoubleValue       = model.DoubleValue
	StringValue       = model.StringValue
)

// CreateOptions parameterises New: the axis count (2 or 3), the per-tile
// dimensions to carry, which of those get a dedicated SQL index, and
// whether to add the optional spatial index and blob table.
type CreateOptions struct {
	Axes              int
	Dimensions        []Dimension
	IndexedDimensions []Dimension
	UseSpatialIndex   bool
	CreateBlobTable   bool
}

// OpenExistingOptions parameterises Open. ReadOnly is currently advisory
// only: the engine always opens with a single connection (see spec §5); a
// read-only caller is simply expected not to call the Writer2d/Writer3d/
// MetadataWriter methods.
type OpenExistingOptions struct {
	ReadOnly bool
}

// Document is an open imgdoc2 file. It implements storage.Document plus the
// union of Reader2d/Writer2d/Reader3d/Writer3d/MetadataReader/MetadataWriter.
// TileStore's axis guard makes AddBrick, GetTilesIntersectingCuboid,
// GetTilesIntersectingPlane and GetBricksBoundingBox on a 2-axis document,
// and AddTile on a 3-axis document, return an
// imgdoc2err.InvalidOperationError rather than panicking.
// GetTilesIntersectingRect and GetTilesBoundingBox have no such guard: on a
// 3-axis document they run against the X/Y columns only.
type Document struct {
	conn *sqlite.Connection
	cfg  *sqlite.Configuration

	*sqlite.TileStore
	*sqlite.MetadataStore
}

// Axes reports whether this document is a 2-axis (Tiles2D) or 3-axis
// (Bricks3D) document.
func (d *Document) Axes() int { return d.cfg.Axes }

// Close releases the underlying SQLite connection and any cached prepared
// statements.
func (d *Document) Close() error { return d.conn.Close() }

// Statistics reports a rough on-disk size for the document, via SQLite's
// own page_count/page_size pragmas.
func (d *Document) Statistics(ctx context.Context) (sqlite.Statistics, error) {
	return d.conn.GetStatistics(ctx)
}

// New creates a brand-new document file at path and returns it open.
func New(ctx context.Context, path string, opts CreateOptions) (*Document, error) {
	conn, err := sqlite.Open(ctx, path, true)
	if err != nil {
		return nil, err
	}

	docType := sqlite.DocTypeImage2d
	if opts.Axes == 3 {
		docType = sqlite.DocTypeImage3d
	}

	cfg, err := sqlite.CreateTables(ctx, conn.DB, sqlite.CreateOptions{
		Axes:              opts.Axes,
		DocType:           docType,
		Dimensions:        opts.Dimensions,
		IndexedDimensions: opts.IndexedDimensions,
		UseSpatialIndex:   opts.UseSpatialIndex,
		CreateBlobTable:   opts.CreateBlobTable,
	})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Document{
		conn:          conn,
		cfg:           cfg,
		TileStore:     sqlite.NewTileStore(conn, cfg),
		MetadataStore: sqlite.NewMetadataStore(conn, cfg),
	}, nil
}

// Open opens an existing document file at path, rediscovering its schema.
func Open(ctx context.Context, path string, opts OpenExistingOptions) (*Document, error) {
	conn, err := sqlite.Open(ctx, path, false)
	if err != nil {
		return nil, err
	}

	cfg, err := sqlite.DiscoverConfiguration(ctx, conn.DB)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Document{
		conn:          conn,
		cfg:           cfg,
		TileStore:     sqlite.NewTileStore(conn, cfg),
		MetadataStore: sqlite.NewMetadataStore(conn, cfg),
	}, nil
}
