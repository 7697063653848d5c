// Package sqlite is the storage engine's only backend: a document is a
// single SQLite file, opened through the pure-Go ncruces/go-sqlite3 driver
// (no cgo, no system SQLite required). The package is organised the way the
// C++ original splits it -  schema/configuration, creation, discovery,
// connection/statement-cache, query building, geometry predicates, tile
// read/write, metadata read/write  - with the 2D/3D split collapsed into a
// single axis-parameterised Configuration (see database_constants.cpp and
// database_creator.cpp in the original_source tree for the names and DDL
// this file is grounded on).
package sqlite

import (
	"fmt"

	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// TableType identifies one of the tables (or the spatial-index virtual
// table) a document may have. Not every document has every table: the
// spatial index and blob table are both optional, selected at creation time.
type TableType int

const (
	GeneralTable TableType = iota
	TilesDataTable
	TilesInfoTable
	TilesSpatialIndexTable
	MetadataTableType
	BlobTable
)

// GeneralTableKey is one of the well-known keys the GENERAL table carries,
// recording the document's layout so a later Open can rediscover it without
// guessing.
type GeneralTableKey string

const (
	GeneralKeyVersion           GeneralTableKey = "Version"
	GeneralKeyTilesDataTable    GeneralTableKey = "TilesDataTable"
	GeneralKeyTilesInfoTable    GeneralTableKey = "TilesInfoTable"
	GeneralKeyDocType           GeneralTableKey = "DocType"
	GeneralKeyBlobTable         GeneralTableKey = "BlobTable"
	GeneralKeySpatialIndexTable GeneralTableKey = "SpatialIndexTable"
	GeneralKeyMetadataTable     GeneralTableKey = "MetadataTable"
)

// DocType is the value the GENERAL table's "DocType" entry holds, telling a
// later Open call whether the document is an Image2d or Image3d document.
type DocType string

const (
	DocTypeImage2d DocType = "Tiles2D"
	DocTypeImage3d DocType = "Bricks3D"
)

// GeneralTableColumn enumerates the two columns of the GENERAL key/value
// table.
type GeneralTableColumn int

const (
	GeneralColumnKey GeneralTableColumn = iota
	GeneralColumnValueString
)

// TilesDataColumn enumerates the columns of the tiles-data table. PixelDepth
// only exists for a 3-axis Configuration.
type TilesDataColumn int

const (
	TilesDataPk TilesDataColumn = iota
	TilesDataPixelWidth
	TilesDataPixelHeight
	TilesDataPixelDepth // 3D only
	TilesDataPixelType
	TilesDataTileDataType
	TilesDataBinDataStorageType
	TilesDataBinDataID
)

// TilesInfoColumn enumerates the columns of the tiles-info table. TileZ and
// TileD only exist for a 3-axis Configuration; the dimension columns
// (Dim_<letter>) are held separately in Configuration.Dimensions.
type TilesInfoColumn int

const (
	TilesInfoPk TilesInfoColumn = iota
	TilesInfoTileX
	TilesInfoTileY
	TilesInfoTileZ // 3D only
	TilesInfoTileW
	TilesInfoTileH
	TilesInfoTileD // 3D only
	TilesInfoPyramidLevel
	TilesInfoTileDataID
)

// SpatialIndexColumn enumerates the columns of the R-Tree virtual table.
// MinZ/MaxZ only exist for a 3-axis Configuration.
type SpatialIndexColumn int

const (
	SpatialIndexID SpatialIndexColumn = iota
	SpatialIndexMinX
	SpatialIndexMaxX
	SpatialIndexMinY
	SpatialIndexMaxY
	SpatialIndexMinZ // 3D only
	SpatialIndexMaxZ // 3D only
)

// MetadataColumn enumerates the columns of the metadata forest table. It is
// shared unchanged between 2D and 3D documents.
type MetadataColumn int

const (
	MetadataPk MetadataColumn = iota
	MetadataName
	MetadataAncestorID
	MetadataTypeDiscriminator
	MetadataValueDouble
	MetadataValueInteger
	MetadataValueString
)

// BlobColumn enumerates the columns of the optional blob table.
type BlobColumn int

const (
	BlobPk BlobColumn = iota
	BlobData
)

// Default table and column names, verbatim from
// original_source/libimgdoc2/src/db/database_constants.cpp.
const (
	DefaultGeneralTableName       = "GENERAL"
	DefaultTilesDataTableName     = "TILESDATA"
	DefaultTilesInfoTableName     = "TILESINFO"
	DefaultSpatialIndexTableName  = "TILESSPATIALINDEX"
	DefaultMetadataTableName      = "METADATA"
	DefaultBlobTableName          = "BLOBS"
	DimensionColumnPrefix         = "Dim_"
	IndexForDimensionColumnPrefix = "IndexForDim_"
)

// Configuration describes the concrete table/column layout of one open
// document. The original C++ library has two parallel types here,
// DatabaseConfiguration2D and DatabaseConfiguration3D; this module collapses
// them into one struct parameterised by Axes, since the two only ever
// differed by the presence of a Z/depth column and axis-specific table
// names that are otherwise identical (see spec §9, Open Question: axis
// parameterisation).
type Configuration struct {
	Axes    int // 2 or 3
	DocType DocType

	TableNames map[TableType]string

	GeneralColumns      map[GeneralTableColumn]string
	TilesDataColumns    map[TilesDataColumn]string
	TilesInfoColumns    map[TilesInfoColumn]string
	SpatialIndexColumns map[SpatialIndexColumn]string
	MetadataColumns     map[MetadataColumn]string
	BlobColumns         map[BlobColumn]string

	// Dimensions is the set of per-tile dimensions (besides the fixed
	// x/y[/z] spatial axes) this document's tiles-info table carries, e.g.
	// {'C', 'T', 'Z'}. IndexedDimensions is the subset that additionally
	// gets a dedicated SQL index.
	Dimensions        []model.Dimension
	IndexedDimensions map[model.Dimension]bool

	HasSpatialIndex bool
	HasBlobTable    bool
}

// NewConfiguration builds a Configuration with default table/column names
// for the given axis count (2 or 3), no spatial index and no blob table;
// callers toggle those two via the returned value before calling
// CreateTables.
func NewConfiguration(axes int, docType DocType, dimensions []model.Dimension, indexed map[model.Dimension]bool) (*Configuration, error) {
	if axes != 2 && axes != 3 {
		return nil, fmt.Errorf("imgdoc2: axis count must be 2 or 3, got %d", axes)
	}

	cfg := &Configuration{
		Axes:    axes,
		DocType: docType,
		TableNames: map[TableType]string{
			GeneralTable:     DefaultGeneralTableName,
			TilesDataTable:   DefaultTilesDataTableName,
			TilesInfoTable:   DefaultTilesInfoTableName,
			MetadataTableType: DefaultMetadataTableName,
		},
		GeneralColumns: map[GeneralTableColumn]string{
			GeneralColumnKey:         "Key",
			GeneralColumnValueString: "ValueString",
		},
		TilesDataColumns: map[TilesDataColumn]string{
			TilesDataPk:                 "Pk",
			TilesDataPixelWidth:         "PixelWidth",
			TilesDataPixelHeight:        "PixelHeight",
			TilesDataPixelType:          "PixelType",
			TilesDataTileDataType:       "TileDataType",
			TilesDataBinDataStorageType: "BinDataStorageType",
			TilesDataBinDataID:          "BinDataId",
		},
		TilesInfoColumns: map[TilesInfoColumn]string{
			TilesInfoPk:           "Pk",
			TilesInfoTileX:        "TileX",
			TilesInfoTileY:        "TileY",
			TilesInfoTileW:        "TileW",
			TilesInfoTileH:        "TileH",
			TilesInfoPyramidLevel: "PyramidLevel",
			TilesInfoTileDataID:   "TileDataId",
		},
		MetadataColumns: map[MetadataColumn]string{
			MetadataPk:                "Pk",
			MetadataName:              "Name",
			MetadataAncestorID:        "AncestorId",
			MetadataTypeDiscriminator: "TypeDiscriminator",
			MetadataValueDouble:       "ValueDouble",
			MetadataValueInteger:      "ValueInteger",
			MetadataValueString:       "ValueString",
		},
		Dimensions:        dimensions,
		IndexedDimensions: indexed,
	}

	if axes == 3 {
		cfg.TilesDataColumns[TilesDataPixelDepth] = "PixelDepth"
		cfg.TilesInfoColumns[TilesInfoTileZ] = "TileZ"
		cfg.TilesInfoColumns[TilesInfoTileD] = "TileD"
	}

	return cfg, nil
}

// EnableSpatialIndex adds the R-Tree virtual table's default names to cfg.
func (c *Configuration) EnableSpatialIndex() {
	c.HasSpatialIndex = true
	c.TableNames[TilesSpatialIndexTable] = DefaultSpatialIndexTableName
	c.SpatialIndexColumns = map[SpatialIndexColumn]string{
		SpatialIndexID:   "id",
		SpatialIndexMinX: "minX",
		SpatialIndexMaxX: "maxX",
		SpatialIndexMinY: "minY",
		SpatialIndexMaxY: "maxY",
	}
	if c.Axes == 3 {
		c.SpatialIndexColumns[SpatialIndexMinZ] = "minZ"
		c.SpatialIndexColumns[SpatialIndexMaxZ] = "maxZ"
	}
}

// EnableBlobTable adds the blob table's default names to cfg.
func (c *Configuration) EnableBlobTable() {
	c.HasBlobTable = true
	c.TableNames[BlobTable] = DefaultBlobTableName
	c.BlobColumns = map[BlobColumn]string{
		BlobPk:   "Pk",
		BlobData: "Data",
	}
}

// TableName returns the configured name for t, or an error if the document
// was not created with that table.
func (c *Configuration) TableName(t TableType) (string, error) {
	name, ok := c.TableNames[t]
	if !ok {
		return "", fmt.Errorf("imgdoc2: document has no table of type %d", t)
	}
	return name, nil
}

// DimensionColumnName returns the tiles-info column name for dimension d,
// e.g. Dim_C.
func (c *Configuration) DimensionColumnName(d model.Dimension) string {
	return DimensionColumnPrefix + string(d)
}

// IndexNameForDimension returns the SQL index name used for dimension d's
// dedicated index, e.g. IndexForDim_C.
func (c *Configuration) IndexNameForDimension(d model.Dimension) string {
	return IndexForDimensionColumnPrefix + string(d)
}

// IsIndexed reports whether dimension d has a dedicated SQL index.
func (c *Configuration) IsIndexed(d model.Dimension) bool {
	return c.IndexedDimensions[d]
}
