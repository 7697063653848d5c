package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/imgdoc2/imgdoc2go/internal/imgdoc2err"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// DiscoverConfiguration opens an existing document's GENERAL table, reads
// back the document type and the table names it recorded at creation time,
// validates the resulting schema still looks usable, and reconstructs a
// Configuration from what it finds - including the set of per-tile
// dimensions, which are inferred from the tiles-info table's Dim_<x> columns
// rather than stored anywhere explicitly. Grounded on DbDiscovery::DoDiscovery
// in original_source/libimgdoc2/src/db/database_discovery.cpp.
func DiscoverConfiguration(ctx context.Context, db *sql.DB) (*Configuration, error) {
	if err := requireColumns(ctx, db, DefaultGeneralTableName, "Key", "ValueString"); err != nil {
		return nil, imgdoc2err.NewDiscovery("unexpected content in the %q table: %v", DefaultGeneralTableName, err)
	}

	docTypeStr, ok, err := readGeneralValue(ctx, db, string(GeneralKeyDocType))
	if err != nil {
		return nil, imgdoc2err.NewDiscovery("reading DocType: %v", err)
	}
	if !ok {
		return nil, imgdoc2err.NewDiscovery("property 'DocType' not present, refusing to open this database")
	}

	var docType DocType
	var axes int
	switch DocType(docTypeStr) {
	case DocTypeImage2d:
		docType, axes = DocTypeImage2d, 2
	case DocTypeImage3d:
		docType, axes = DocTypeImage3d, 3
	default:
		return nil, imgdoc2err.NewDiscovery("DocType=%q is not supported", docTypeStr)
	}

	tilesInfoName := readGeneralValueOrDefault(ctx, db, string(GeneralKeyTilesInfoTable), DefaultTilesInfoTableName)
	tilesDataName := readGeneralValueOrDefault(ctx, db, string(GeneralKeyTilesDataTable), DefaultTilesDataTableName)
	metadataName := readGeneralValueOrDefault(ctx, db, string(GeneralKeyMetadataTable), DefaultMetadataTableName)
	blobName, hasBlob, _ := readGeneralValue(ctx, db, string(GeneralKeyBlobTable))
	spatialName, hasSpatial, _ := readGeneralValue(ctx, db, string(GeneralKeySpatialIndexTable))

	tilesDataCols := []string{"Pk", "PixelWidth", "PixelHeight", "PixelType", "TileDataType", "BinDataStorageType", "BinDataId"}
	if err := requireColumns(ctx, db, tilesDataName, tilesDataCols...); err != nil {
		return nil, imgdoc2err.NewDiscovery("tiles-data table %q: %v", tilesDataName, err)
	}

	metadataCols := []string{"Pk", "Name", "AncestorId", "TypeDiscriminator", "ValueDouble", "ValueInteger", "ValueString"}
	if err := requireColumns(ctx, db, metadataName, metadataCols...); err != nil {
		return nil, imgdoc2err.NewDiscovery("metadata table %q: %v", metadataName, err)
	}

	tilesInfoCols := []string{"Pk", "TileX", "TileY", "TileW", "TileH", "PyramidLevel", "TileDataId"}
	if err := requireColumns(ctx, db, tilesInfoName, tilesInfoCols...); err != nil {
		return nil, imgdoc2err.NewDiscovery("tiles-info table %q: %v", tilesInfoName, err)
	}

	allCols, err := columnNames(ctx, db, tilesInfoName)
	if err != nil {
		return nil, imgdoc2err.NewDiscovery("reading tiles-info columns: %v", err)
	}
	var dimensions []model.Dimension
	for _, name := range allCols {
		if strings.HasPrefix(name, DimensionColumnPrefix) && len(name) == len(DimensionColumnPrefix)+1 {
			dimensions = append(dimensions, model.Dimension(name[len(DimensionColumnPrefix)]))
		}
	}

	indices, err := indexNames(ctx, db, tilesInfoName)
	if err != nil {
		return nil, imgdoc2err.NewDiscovery("reading tiles-info indices: %v", err)
	}
	indexed := make(map[model.Dimension]bool)
	for _, name := range indices {
		if strings.HasPrefix(name, IndexForDimensionColumnPrefix) && len(name) == len(IndexForDimensionColumnPrefix)+1 {
			d := model.Dimension(name[len(IndexForDimensionColumnPrefix)])
			for _, known := range dimensions {
				if known == d {
					indexed[d] = true
				}
			}
		}
	}

	cfg, err := NewConfiguration(axes, docType, dimensions, indexed)
	if err != nil {
		return nil, imgdoc2err.NewDiscovery("%v", err)
	}
	cfg.TableNames[TilesInfoTable] = tilesInfoName
	cfg.TableNames[TilesDataTable] = tilesDataName
	cfg.TableNames[MetadataTableType] = metadataName

	if hasBlob && blobName != "" {
		cfg.EnableBlobTable()
		cfg.TableNames[BlobTable] = blobName
	}

	if hasSpatial && spatialName != "" {
		spatialCols := []string{"id", "minX", "maxX", "minY", "maxY"}
		if axes == 3 {
			spatialCols = append(spatialCols, "minZ", "maxZ")
		}
		if err := requireColumns(ctx, db, spatialName, spatialCols...); err == nil {
			cfg.EnableSpatialIndex()
			cfg.TableNames[TilesSpatialIndexTable] = spatialName
		}
		// an unusable spatial index table is silently dropped, matching the
		// original: the document is still openable, just without spatial queries.
	}

	return cfg, nil
}

func readGeneralValue(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	row := db.QueryRowContext(ctx, `SELECT [ValueString] FROM [`+DefaultGeneralTableName+`] WHERE [Key] = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func readGeneralValueOrDefault(ctx context.Context, db *sql.DB, key, def string) string {
	value, ok, err := readGeneralValue(ctx, db, key)
	if err != nil || !ok {
		return def
	}
	return value
}

func columnNames(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func indexNames(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_index_list(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		var seq int
		var unique, origin, partial any
		// pragma_index_list columns: seq, name, unique, origin, partial
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func requireColumns(ctx context.Context, db *sql.DB, table string, want ...string) error {
	have, err := columnNames(ctx, db, table)
	if err != nil {
		return err
	}
	haveSet := make(map[string]bool, len(have))
	for _, h := range have {
		haveSet[h] = true
	}
	for _, w := range want {
		if !haveSet[w] {
			return imgdoc2err.NewDiscovery("column %q not found in table %q", w, table)
		}
	}
	return nil
}
