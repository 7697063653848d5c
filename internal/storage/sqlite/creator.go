package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// CreateOptions parameterises CreateTables: the axis count, dimensions to
// carry per tile, which of those get a dedicated SQL index, and whether to
// add the optional spatial index and blob table.
type CreateOptions struct {
	Axes              int
	DocType           DocType
	Dimensions        []model.Dimension
	IndexedDimensions []model.Dimension
	UseSpatialIndex   bool
	CreateBlobTable   bool
}

// CreateTables builds a brand-new document's schema against db and returns
// the Configuration describing it. It is grounded on DbCreator::CreateTables2d
// / CreateTables3d in original_source/libimgdoc2/src/db/database_creator.cpp,
// collapsed into one axis-parameterised path.
func CreateTables(ctx context.Context, db *sql.DB, opts CreateOptions) (*Configuration, error) {
	indexed := make(map[model.Dimension]bool, len(opts.IndexedDimensions))
	for _, d := range opts.IndexedDimensions {
		indexed[d] = true
	}

	cfg, err := NewConfiguration(opts.Axes, opts.DocType, opts.Dimensions, indexed)
	if err != nil {
		return nil, err
	}
	if opts.UseSpatialIndex {
		cfg.EnableSpatialIndex()
	}
	if opts.CreateBlobTable {
		cfg.EnableBlobTable()
	}

	statements := []string{
		generalTableDDL(cfg),
	}
	statements = append(statements, fillGeneralTableDML(cfg))
	statements = append(statements, tilesDataTableDDL(cfg))
	statements = append(statements, tilesInfoTableDDL(cfg)...)
	statements = append(statements, metadataTableDDL(cfg))

	if cfg.HasSpatialIndex {
		statements = append(statements, spatialIndexDDL(cfg))
		statements = append(statements, insertGeneralEntry(cfg, GeneralKeySpatialIndexTable, cfg.TableNames[TilesSpatialIndexTable]))
	}
	if cfg.HasBlobTable {
		statements = append(statements, blobTableDDL(cfg))
		statements = append(statements, insertGeneralEntry(cfg, GeneralKeyBlobTable, cfg.TableNames[BlobTable]))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("imgdoc2: begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("imgdoc2: executing %q: %w", stmt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("imgdoc2: commit schema transaction: %w", err)
	}

	return cfg, nil
}

func generalTableDDL(cfg *Configuration) string {
	return fmt.Sprintf(
		`CREATE TABLE [%s] ([%s] TEXT(40) UNIQUE, [%s] TEXT);`,
		cfg.TableNames[GeneralTable],
		cfg.GeneralColumns[GeneralColumnKey],
		cfg.GeneralColumns[GeneralColumnValueString],
	)
}

func insertGeneralEntry(cfg *Configuration, key GeneralTableKey, value string) string {
	return fmt.Sprintf(
		`INSERT INTO [%s] ([%s], [%s]) VALUES ('%s', '%s');`,
		cfg.TableNames[GeneralTable],
		cfg.GeneralColumns[GeneralColumnKey],
		cfg.GeneralColumns[GeneralColumnValueString],
		key,
		value,
	)
}

func fillGeneralTableDML(cfg *Configuration) string {
	var b strings.Builder
	fmt.Fprintf(&b, `INSERT INTO [%s] ([%s], [%s]) VALUES `,
		cfg.TableNames[GeneralTable], cfg.GeneralColumns[GeneralColumnKey], cfg.GeneralColumns[GeneralColumnValueString])
	fmt.Fprintf(&b, `('%s','0.1.0'),`, GeneralKeyVersion)
	fmt.Fprintf(&b, `('%s','%s'),`, GeneralKeyTilesDataTable, cfg.TableNames[TilesDataTable])
	fmt.Fprintf(&b, `('%s','%s'),`, GeneralKeyTilesInfoTable, cfg.TableNames[TilesInfoTable])
	fmt.Fprintf(&b, `('%s','%s'),`, GeneralKeyMetadataTable, cfg.TableNames[MetadataTableType])
	fmt.Fprintf(&b, `('%s','%s');`, GeneralKeyDocType, cfg.DocType)
	return b.String()
}

func tilesDataTableDDL(cfg *Configuration) string {
	c := cfg.TilesDataColumns
	var b strings.Builder
	fmt.Fprintf(&b, `CREATE TABLE [%s] (`, cfg.TableNames[TilesDataTable])
	fmt.Fprintf(&b, `[%s] INTEGER PRIMARY KEY,`, c[TilesDataPk])
	fmt.Fprintf(&b, `[%s] INTEGER(4) NOT NULL,`, c[TilesDataPixelWidth])
	fmt.Fprintf(&b, `[%s] INTEGER(4) NOT NULL,`, c[TilesDataPixelHeight])
	if cfg.Axes == 3 {
		fmt.Fprintf(&b, `[%s] INTEGER(4) NOT NULL,`, c[TilesDataPixelDepth])
	}
	fmt.Fprintf(&b, `[%s] INTEGER(1) NOT NULL,`, c[TilesDataPixelType])
	fmt.Fprintf(&b, `[%s] INTEGER(1) NOT NULL,`, c[TilesDataTileDataType])
	fmt.Fprintf(&b, `[%s] INTEGER(1),`, c[TilesDataBinDataStorageType])
	fmt.Fprintf(&b, `[%s] INTEGER(8));`, c[TilesDataBinDataID])
	return b.String()
}

// tilesInfoTableDDL returns the CREATE TABLE statement followed by one
// CREATE INDEX statement per indexed dimension.
func tilesInfoTableDDL(cfg *Configuration) []string {
	c := cfg.TilesInfoColumns
	var b strings.Builder
	fmt.Fprintf(&b, `CREATE TABLE [%s] (`, cfg.TableNames[TilesInfoTable])
	fmt.Fprintf(&b, `[%s] INTEGER PRIMARY KEY,`, c[TilesInfoPk])
	fmt.Fprintf(&b, `[%s] DOUBLE NOT NULL,`, c[TilesInfoTileX])
	fmt.Fprintf(&b, `[%s] DOUBLE NOT NULL,`, c[TilesInfoTileY])
	if cfg.Axes == 3 {
		fmt.Fprintf(&b, `[%s] DOUBLE NOT NULL,`, c[TilesInfoTileZ])
	}
	fmt.Fprintf(&b, `[%s] DOUBLE NOT NULL,`, c[TilesInfoTileW])
	fmt.Fprintf(&b, `[%s] DOUBLE NOT NULL,`, c[TilesInfoTileH])
	if cfg.Axes == 3 {
		fmt.Fprintf(&b, `[%s] DOUBLE NOT NULL,`, c[TilesInfoTileD])
	}
	fmt.Fprintf(&b, `[%s] INTEGER(1) NOT NULL,`, c[TilesInfoPyramidLevel])
	fmt.Fprintf(&b, `[%s] INTEGER(8) NOT NULL`, c[TilesInfoTileDataID])

	for _, dim := range cfg.Dimensions {
		fmt.Fprintf(&b, `, [%s] INTEGER(4) NOT NULL`, cfg.DimensionColumnName(dim))
	}
	b.WriteString(`);`)

	statements := []string{b.String()}
	for _, dim := range cfg.Dimensions {
		if cfg.IsIndexed(dim) {
			statements = append(statements, fmt.Sprintf(
				`CREATE INDEX [%s] ON [%s] ([%s]);`,
				cfg.IndexNameForDimension(dim), cfg.TableNames[TilesInfoTable], cfg.DimensionColumnName(dim)))
		}
	}
	return statements
}

func spatialIndexDDL(cfg *Configuration) string {
	c := cfg.SpatialIndexColumns
	cols := []string{c[SpatialIndexID], c[SpatialIndexMinX], c[SpatialIndexMaxX], c[SpatialIndexMinY], c[SpatialIndexMaxY]}
	if cfg.Axes == 3 {
		cols = append(cols, c[SpatialIndexMinZ], c[SpatialIndexMaxZ])
	}
	return fmt.Sprintf(`CREATE VIRTUAL TABLE %s USING rtree(%s);`, cfg.TableNames[TilesSpatialIndexTable], strings.Join(cols, ","))
}

func blobTableDDL(cfg *Configuration) string {
	c := cfg.BlobColumns
	return fmt.Sprintf(`CREATE TABLE [%s] ([%s] INTEGER PRIMARY KEY, [%s] BLOB);`,
		cfg.TableNames[BlobTable], c[BlobPk], c[BlobData])
}

// metadataTableDDL is shared unchanged between 2D and 3D documents: it has
// no spatial columns at all, just a self-referencing forest with a
// (Name, AncestorId) uniqueness constraint so siblings can't share a name.
func metadataTableDDL(cfg *Configuration) string {
	c := cfg.MetadataColumns
	return fmt.Sprintf(
		`CREATE TABLE [%s] ([%s] INTEGER PRIMARY KEY,[%s] TEXT NOT NULL,[%s] INTEGER,[%s] INTEGER,[%s] REAL,[%s] INTEGER,[%s] TEXT,`+
			`FOREIGN KEY([%s]) REFERENCES [%s]([%s]),UNIQUE([%s],[%s]));`,
		cfg.TableNames[MetadataTableType],
		c[MetadataPk], c[MetadataName], c[MetadataAncestorID], c[MetadataTypeDiscriminator],
		c[MetadataValueDouble], c[MetadataValueInteger], c[MetadataValueString],
		c[MetadataAncestorID], cfg.TableNames[MetadataTableType], c[MetadataPk],
		c[MetadataName], c[MetadataAncestorID],
	)
}
