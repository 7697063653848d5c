package model

// DataType identifies how a tile-data row's payload is encoded. The storage
// engine treats every value other than Zero as an opaque passthrough — the
// codec that makes sense of the bytes lives outside this module.
type DataType uint8

const (
	DataTypeZero DataType = iota // no payload; no blob reference is stored
	DataTypeUncompressedBitmap
	DataTypeJpgXrCompressedBitmap
	DataTypeZstd0Compressed
	DataTypeZstd1Compressed
	DataTypeUncompressedBrick
)

// StorageType identifies where a tile-data row's payload physically lives.
// Only BlobInDatabase is materialised by this engine; others are accepted and
// stored as an opaque tag for an external collaborator to interpret.
type StorageType uint8

const (
	StorageTypeInvalid StorageType = iota
	StorageTypeBlobInDatabase
	StorageTypeMemory
)

// PixelType is an 8-bit tag opaque to the storage engine; it is meaningful
// only to the external codec that decodes the corresponding blob.
type PixelType uint8

// TileBaseInfo carries the fields of a tile-info row that aren't the
// position, the dimension coordinate, or the tile-data reference.
type TileBaseInfo struct {
	PyramidLevel int32
}

// BrickBaseInfo is TileBaseInfo's 3-D analogue; identical in shape today but
// kept distinct so 2-D/3-D call sites don't interchange them by accident.
type BrickBaseInfo struct {
	PyramidLevel int32
}

// TileBlobInfo carries the fields of a tile-data row that describe the
// payload's shape rather than its bytes.
type TileBlobInfo struct {
	PixelWidth, PixelHeight, PixelDepth uint32
	PixelType                           PixelType
	DataType                            DataType
}

// AddTileRequest bundles everything AddTile needs: the discrete coordinate,
// the logical position, the tile-info fields, the blob description and the
// raw payload (nil for "no payload").
type AddTileRequest struct {
	Coordinate TileCoordinate
	Position   LogicalPosition
	Info       TileBaseInfo
	BlobInfo   TileBlobInfo
	Data       []byte
}

// AddBrickRequest is AddTileRequest's 3-D analogue.
type AddBrickRequest struct {
	Coordinate TileCoordinate
	Position   LogicalPosition3d
	Info       BrickBaseInfo
	BlobInfo   TileBlobInfo
	Data       []byte
}

// TileInfoResult is what ReadTileInfo returns: whichever of its fields were
// requested via TileInfoQueryOptions are populated, the rest left zero.
type TileInfoResult struct {
	Coordinate      TileCoordinate
	Position        LogicalPosition
	Position3d      LogicalPosition3d
	Info            TileBaseInfo
	BlobInfo        TileBlobInfo
	HasBlobInfo     bool
}

// TileInfoQueryOptions selects which projections ReadTileInfo computes.
type TileInfoQueryOptions struct {
	Coordinate bool
	Position   bool
	BlobInfo   bool
}

// ComparisonOperation is a pyramid-level comparison in a TileInfoQueryClause.
type ComparisonOperation uint8

const (
	CompareInvalid ComparisonOperation = iota
	CompareEqual
	CompareNotEqual
	CompareLessThan
	CompareLessThanOrEqual
	CompareGreaterThan
	CompareGreaterThanOrEqual
)

// LogicalOperator joins successive conditions in a TileInfoQueryClause.
type LogicalOperator uint8

const (
	LogicalInvalid LogicalOperator = iota
	LogicalAnd
	LogicalOr
)

// PyramidLevelCondition is one (logical-operator, comparison, value) triple.
// The logical operator of the first condition in a clause is ignored.
type PyramidLevelCondition struct {
	Logical    LogicalOperator
	Comparison ComparisonOperation
	Value      int32
}

// TileInfoQueryClause is an ordered, left-associative chain of pyramid-level
// conditions. An empty clause matches every row.
type TileInfoQueryClause struct {
	Conditions []PyramidLevelCondition
}

// RangeClause is one OR-branch of a dimension's range condition.
//
// Conventions: Start == MinInt32 means "no lower bound"; End == MaxInt32
// means "no upper bound"; Start == End means equality; Start < End is the
// strictly-open interval (Start, End); Start > End (with neither sentinel)
// is silently skipped.
type RangeClause struct {
	Start, End int32
}

const (
	// RangeUnboundedStart is the sentinel meaning "no lower bound".
	RangeUnboundedStart = int32(-1) << 31
	// RangeUnboundedEnd is the sentinel meaning "no upper bound".
	RangeUnboundedEnd = int32(1<<31 - 1)
)

// DimensionRangeClauses is the set of RangeClause alternatives (OR'd
// together) for one dimension.
type DimensionRangeClauses struct {
	Dimension Dimension
	Ranges    []RangeClause
}

// CoordinateQueryClause is an ordered set of per-dimension range-clause
// groups. Per dimension, ranges are OR'd; across dimensions, groups are
// AND'd. An empty clause matches every row.
type CoordinateQueryClause struct {
	Dimensions []DimensionRangeClauses
}
