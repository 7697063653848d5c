package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/imgdoc2/imgdoc2go/internal/imgdoc2err"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// TileStore is the read/write engine for the tiles-data, tiles-info and
// (optional) spatial-index tables of one open document. A single type
// serves both 2-D and 3-D documents, branching on cfg.Axes wherever the
// original split into DocumentRead2d/DocumentWrite2d/DocumentRead3d/
// DocumentWrite3d (see spec §9, Open Question: axis parameterisation).
// Grounded on documentWrite2d.cpp, documentRead2d.cpp and
// documentReadBase.cpp in original_source/libimgdoc2/src/doc.
type TileStore struct {
	conn *Connection
	cfg  *Configuration
}

// NewTileStore wraps conn/cfg in a TileStore.
func NewTileStore(conn *Connection, cfg *Configuration) *TileStore {
	return &TileStore{conn: conn, cfg: cfg}
}

// AddTile inserts one 2-D tile (and, via addTileData, its tiles-data row
// and, when Data is non-nil, its blob row) and returns its tiles-info
// primary key. Mirrors
// DocumentWrite2d::AddTileInternal.
func (s *TileStore) AddTile(ctx context.Context, req model.AddTileRequest) (int64, error) {
	if s.cfg.Axes != 2 {
		return 0, imgdoc2err.NewInvalidOperation("AddTile requires a 2-axis document, this one has %d axes", s.cfg.Axes)
	}

	var pk int64
	err := s.conn.WithTransaction(ctx, func(tx *sql.Tx) error {
		tileDataID, err := s.addTileData(ctx, tx, req.BlobInfo, req.Data)
		if err != nil {
			return err
		}

		dims := req.Coordinate.Dimensions()
		c := s.cfg.TilesInfoColumns
		var cols strings.Builder
		fmt.Fprintf(&cols, "[%s],[%s],[%s],[%s],[%s],[%s]", c[TilesInfoTileX], c[TilesInfoTileY], c[TilesInfoTileW], c[TilesInfoTileH], c[TilesInfoPyramidLevel], c[TilesInfoTileDataID])
		args := []any{req.Position.PosX, req.Position.PosY, req.Position.Width, req.Position.Height, req.Info.PyramidLevel, tileDataID}
		for _, d := range dims {
			v, _ := req.Coordinate.Get(d)
			fmt.Fprintf(&cols, ",[%s]", s.cfg.DimensionColumnName(d))
			args = append(args, v)
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
		query := fmt.Sprintf(`INSERT INTO [%s] (%s) VALUES (%s);`, s.cfg.TableNames[TilesInfoTable], cols.String(), placeholders)

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return imgdoc2err.NewDatabase(err)
		}
		pk, err = res.LastInsertId()
		if err != nil {
			return imgdoc2err.NewDatabase(err)
		}

		if s.cfg.HasSpatialIndex {
			if err := s.addToSpatialIndex2d(ctx, tx, pk, req.Position); err != nil {
				return err
			}
		}
		return nil
	})
	return pk, err
}

// AddBrick is AddTile's 3-D analogue.
func (s *TileStore) AddBrick(ctx context.Context, req model.AddBrickRequest) (int64, error) {
	if s.cfg.Axes != 3 {
		return 0, imgdoc2err.NewInvalidOperation("AddBrick requires a 3-axis document, this one has %d axes", s.cfg.Axes)
	}

	var pk int64
	err := s.conn.WithTransaction(ctx, func(tx *sql.Tx) error {
		tileDataID, err := s.addTileData(ctx, tx, req.BlobInfo, req.Data)
		if err != nil {
			return err
		}

		dims := req.Coordinate.Dimensions()
		c := s.cfg.TilesInfoColumns
		var cols strings.Builder
		fmt.Fprintf(&cols, "[%s],[%s],[%s],[%s],[%s],[%s],[%s]",
			c[TilesInfoTileX], c[TilesInfoTileY], c[TilesInfoTileZ], c[TilesInfoTileW], c[TilesInfoTileH], c[TilesInfoTileD], c[TilesInfoPyramidLevel])
		fmt.Fprintf(&cols, ",[%s]", c[TilesInfoTileDataID])
		args := []any{req.Position.PosX, req.Position.PosY, req.Position.PosZ, req.Position.Width, req.Position.Height, req.Position.Depth, req.Info.PyramidLevel, tileDataID}
		for _, d := range dims {
			v, _ := req.Coordinate.Get(d)
			fmt.Fprintf(&cols, ",[%s]", s.cfg.DimensionColumnName(d))
			args = append(args, v)
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
		query := fmt.Sprintf(`INSERT INTO [%s] (%s) VALUES (%s);`, s.cfg.TableNames[TilesInfoTable], cols.String(), placeholders)

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return imgdoc2err.NewDatabase(err)
		}
		pk, err = res.LastInsertId()
		if err != nil {
			return imgdoc2err.NewDatabase(err)
		}

		if s.cfg.HasSpatialIndex {
			if err := s.addToSpatialIndex3d(ctx, tx, pk, req.Position); err != nil {
				return err
			}
		}
		return nil
	})
	return pk, err
}

func (s *TileStore) addTileData(ctx context.Context, tx *sql.Tx, info model.TileBlobInfo, data []byte) (int64, error) {
	var blobID int64
	if data != nil {
		var err error
		blobID, err = s.addBlobData(ctx, tx, data)
		if err != nil {
			return 0, err
		}
	}

	c := s.cfg.TilesDataColumns
	cols := []string{c[TilesDataPixelWidth], c[TilesDataPixelHeight]}
	args := []any{info.PixelWidth, info.PixelHeight}
	if s.cfg.Axes == 3 {
		cols = append(cols, c[TilesDataPixelDepth])
		args = append(args, info.PixelDepth)
	}
	cols = append(cols, c[TilesDataPixelType], c[TilesDataTileDataType])
	args = append(args, info.PixelType, info.DataType)

	if data != nil {
		cols = append(cols, c[TilesDataBinDataStorageType], c[TilesDataBinDataID])
		args = append(args, model.StorageTypeBlobInDatabase, blobID)
	}

	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = "[" + col + "]"
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	query := fmt.Sprintf(`INSERT INTO [%s] (%s) VALUES (%s);`, s.cfg.TableNames[TilesDataTable], strings.Join(quoted, ","), placeholders)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, imgdoc2err.NewDatabase(err)
	}
	return res.LastInsertId()
}

func (s *TileStore) addBlobData(ctx context.Context, tx *sql.Tx, data []byte) (int64, error) {
	if !s.cfg.HasBlobTable {
		return 0, imgdoc2err.NewInvalidOperation("the document does not have a blob table")
	}
	c := s.cfg.BlobColumns
	query := fmt.Sprintf(`INSERT INTO [%s] ([%s]) VALUES (?);`, s.cfg.TableNames[BlobTable], c[BlobData])
	res, err := tx.ExecContext(ctx, query, data)
	if err != nil {
		return 0, imgdoc2err.NewDatabase(err)
	}
	return res.LastInsertId()
}

func (s *TileStore) addToSpatialIndex2d(ctx context.Context, tx *sql.Tx, pk int64, pos model.LogicalPosition) error {
	c := s.cfg.SpatialIndexColumns
	query := fmt.Sprintf(`INSERT INTO [%s] ([%s],[%s],[%s],[%s],[%s]) VALUES (?,?,?,?,?);`,
		s.cfg.TableNames[TilesSpatialIndexTable], c[SpatialIndexID], c[SpatialIndexMinX], c[SpatialIndexMaxX], c[SpatialIndexMinY], c[SpatialIndexMaxY])
	_, err := tx.ExecContext(ctx, query, pk, pos.PosX, pos.PosX+pos.Width, pos.PosY, pos.PosY+pos.Height)
	if err != nil {
		return imgdoc2err.NewDatabase(err)
	}
	return nil
}

func (s *TileStore) addToSpatialIndex3d(ctx context.Context, tx *sql.Tx, pk int64, pos model.LogicalPosition3d) error {
	c := s.cfg.SpatialIndexColumns
	query := fmt.Sprintf(`INSERT INTO [%s] ([%s],[%s],[%s],[%s],[%s],[%s],[%s]) VALUES (?,?,?,?,?,?,?);`,
		s.cfg.TableNames[TilesSpatialIndexTable], c[SpatialIndexID], c[SpatialIndexMinX], c[SpatialIndexMaxX], c[SpatialIndexMinY], c[SpatialIndexMaxY], c[SpatialIndexMinZ], c[SpatialIndexMaxZ])
	_, err := tx.ExecContext(ctx, query, pk, pos.PosX, pos.PosX+pos.Width, pos.PosY, pos.PosY+pos.Height, pos.PosZ, pos.PosZ+pos.Depth)
	if err != nil {
		return imgdoc2err.NewDatabase(err)
	}
	return nil
}

// ReadTileInfo reads back a tile's coordinate, position and/or blob info,
// as selected by opts. Mirrors DocumentRead2d::ReadTileInfo, generalised
// over axes.
func (s *TileStore) ReadTileInfo(ctx context.Context, pk int64, opts model.TileInfoQueryOptions) (model.TileInfoResult, error) {
	var result model.TileInfoResult
	dims := s.cfg.Dimensions

	var selects []string
	if opts.Coordinate {
		for _, d := range dims {
			selects = append(selects, "["+s.cfg.DimensionColumnName(d)+"]")
		}
	}
	if opts.Position {
		c := s.cfg.TilesInfoColumns
		selects = append(selects, "["+c[TilesInfoTileX]+"]", "["+c[TilesInfoTileY]+"]")
		if s.cfg.Axes == 3 {
			selects = append(selects, "["+c[TilesInfoTileZ]+"]")
		}
		selects = append(selects, "["+c[TilesInfoTileW]+"]", "["+c[TilesInfoTileH]+"]")
		if s.cfg.Axes == 3 {
			selects = append(selects, "["+c[TilesInfoTileD]+"]")
		}
		selects = append(selects, "["+c[TilesInfoPyramidLevel]+"]")
	}
	if opts.BlobInfo {
		dc := s.cfg.TilesDataColumns
		selects = append(selects, "["+dc[TilesDataPixelWidth]+"]", "["+dc[TilesDataPixelHeight]+"]")
		if s.cfg.Axes == 3 {
			selects = append(selects, "["+dc[TilesDataPixelDepth]+"]")
		}
		selects = append(selects, "["+dc[TilesDataPixelType]+"]", "["+dc[TilesDataTileDataType]+"]")
	}

	selectList := "1"
	if len(selects) > 0 {
		selectList = strings.Join(selects, ",")
	}

	tilesInfoName := s.cfg.TableNames[TilesInfoTable]
	query := "SELECT " + selectList + " FROM [" + tilesInfoName + "] "
	if opts.BlobInfo {
		tilesDataName := s.cfg.TableNames[TilesDataTable]
		c := s.cfg.TilesInfoColumns
		dc := s.cfg.TilesDataColumns
		query += fmt.Sprintf(`LEFT JOIN [%s] ON [%s].[%s] = [%s].[%s] `, tilesDataName, tilesInfoName, c[TilesInfoTileDataID], tilesDataName, dc[TilesDataPk])
	}
	query += fmt.Sprintf(`WHERE [%s].[%s] = ?;`, tilesInfoName, s.cfg.TilesInfoColumns[TilesInfoPk])

	row := s.conn.DB.QueryRowContext(ctx, query, pk)
	scanTargets := make([]any, len(selects))
	scanValues := make([]any, len(selects))
	for i := range scanTargets {
		scanTargets[i] = &scanValues[i]
	}
	if len(selects) == 0 {
		var dummy int
		scanTargets = []any{&dummy}
	}

	if err := row.Scan(scanTargets...); err != nil {
		if err == sql.ErrNoRows {
			return result, &imgdoc2err.NonExistingTileError{Pk: pk}
		}
		return result, imgdoc2err.NewDatabase(err)
	}

	idx := 0
	if opts.Coordinate {
		coord := model.TileCoordinate{}
		for _, d := range dims {
			v := toInt32(scanValues[idx])
			_ = coord.Set(d, v)
			idx++
		}
		result.Coordinate = coord
	}
	if opts.Position {
		if s.cfg.Axes == 2 {
			result.Position = model.LogicalPosition{
				PosX: toFloat64(scanValues[idx]), PosY: toFloat64(scanValues[idx+1]),
				Width: toFloat64(scanValues[idx+2]), Height: toFloat64(scanValues[idx+3]),
			}
			idx += 4
			result.Info.PyramidLevel = toInt32(scanValues[idx])
			idx++
		} else {
			result.Position3d = model.LogicalPosition3d{
				PosX: toFloat64(scanValues[idx]), PosY: toFloat64(scanValues[idx+1]), PosZ: toFloat64(scanValues[idx+2]),
				Width: toFloat64(scanValues[idx+3]), Height: toFloat64(scanValues[idx+4]), Depth: toFloat64(scanValues[idx+5]),
			}
			idx += 6
			result.Info.PyramidLevel = toInt32(scanValues[idx])
			idx++
		}
	}
	if opts.BlobInfo {
		result.BlobInfo.PixelWidth = uint32(toInt32(scanValues[idx]))
		result.BlobInfo.PixelHeight = uint32(toInt32(scanValues[idx+1]))
		idx += 2
		if s.cfg.Axes == 3 {
			result.BlobInfo.PixelDepth = uint32(toInt32(scanValues[idx]))
			idx++
		}
		result.BlobInfo.PixelType = model.PixelType(toInt32(scanValues[idx]))
		result.BlobInfo.DataType = model.DataType(toInt32(scanValues[idx+1]))
		result.HasBlobInfo = true
	}

	return result, nil
}

// ReadTileData reads a tile's blob payload, following TilesData -> Blobs.
// pk is used directly as the tiles-data primary key; for tiles added through
// AddTile/AddBrick it equals the tiles-info key, since each call adds one row
// to both tables. A tile stored without payload (no blob reference) returns
// a nil slice, nil error. Mirrors DocumentRead2d::ReadTileData /
// GetReadDataQueryStatement.
func (s *TileStore) ReadTileData(ctx context.Context, pk int64) ([]byte, error) {
	if !s.cfg.HasBlobTable {
		return nil, imgdoc2err.NewInvalidOperation("the document does not have a blob table")
	}

	tilesDataName := s.cfg.TableNames[TilesDataTable]
	blobName := s.cfg.TableNames[BlobTable]
	dc := s.cfg.TilesDataColumns
	bc := s.cfg.BlobColumns

	query := fmt.Sprintf(
		`SELECT [%s].[%s] FROM [%s] LEFT JOIN [%s] ON [%s].[%s] = [%s].[%s] WHERE [%s].[%s] = ?;`,
		blobName, bc[BlobData], tilesDataName, blobName, tilesDataName, dc[TilesDataBinDataID], blobName, bc[BlobPk], tilesDataName, dc[TilesDataPk],
	)

	var data []byte
	row := s.conn.DB.QueryRowContext(ctx, query, pk)
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, &imgdoc2err.NonExistingTileError{Pk: pk}
		}
		return nil, imgdoc2err.NewDatabase(err)
	}
	return data, nil
}

// Query streams the primary keys of tiles matching the given dimension and
// tile-info clauses to fn, stopping early if fn returns false. Either
// clause may be nil. Mirrors DocumentRead2d::Query / CreateQueryStatement.
func (s *TileStore) Query(ctx context.Context, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, fn func(pk int64) bool) error {
	c := s.cfg.TilesInfoColumns
	where := buildQueryWhere(s.cfg, dim, tileInfo, c[TilesInfoPyramidLevel])
	query := fmt.Sprintf(`SELECT [%s] FROM [%s] WHERE %s;`, c[TilesInfoPk], s.cfg.TableNames[TilesInfoTable], where.SQL)

	rows, err := s.conn.DB.QueryContext(ctx, query, where.Binds...)
	if err != nil {
		return imgdoc2err.NewDatabase(err)
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		if err := rows.Scan(&pk); err != nil {
			return imgdoc2err.NewDatabase(err)
		}
		if !fn(pk) {
			break
		}
	}
	return rows.Err()
}

// GetTilesIntersectingRect streams the primary keys of 2-D tiles whose
// bounding rectangle intersects rect, additionally constrained by dim and
// tileInfo (either may be nil). Uses the spatial index when the document
// has one. Mirrors DocumentRead2d::GetTilesIntersectingRect and its two
// Query* helper variants.
func (s *TileStore) GetTilesIntersectingRect(ctx context.Context, rect model.Rectangle, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, fn func(pk int64) bool) error {
	var query string
	var binds []any

	if s.cfg.HasSpatialIndex {
		sc := s.cfg.SpatialIndexColumns
		ic := s.cfg.TilesInfoColumns
		query = fmt.Sprintf(
			`SELECT spatialindex.[%s] FROM [%s] spatialindex INNER JOIN [%s] info ON spatialindex.[%s] = info.[%s] WHERE (`+
				`[%s] >= ? AND [%s] <= ? AND [%s] >= ? AND [%s] <= ?) AND `,
			sc[SpatialIndexID], s.cfg.TableNames[TilesSpatialIndexTable], s.cfg.TableNames[TilesInfoTable], sc[SpatialIndexID], ic[TilesInfoPk],
			sc[SpatialIndexMaxX], sc[SpatialIndexMinX], sc[SpatialIndexMaxY], sc[SpatialIndexMinY],
		)
		binds = []any{rect.X, rect.X + rect.W, rect.Y, rect.Y + rect.H}
	} else {
		ic := s.cfg.TilesInfoColumns
		query = fmt.Sprintf(
			`SELECT [%s] FROM [%s] WHERE ([%s]+[%s] >= ? AND [%s] <= ? AND [%s]+[%s] >= ? AND [%s] <= ?) AND `,
			ic[TilesInfoPk], s.cfg.TableNames[TilesInfoTable],
			ic[TilesInfoTileX], ic[TilesInfoTileW], ic[TilesInfoTileX],
			ic[TilesInfoTileY], ic[TilesInfoTileH], ic[TilesInfoTileY],
		)
		binds = []any{rect.X, rect.X + rect.W, rect.Y, rect.Y + rect.H}
	}

	where := buildQueryWhere(s.cfg, dim, tileInfo, s.cfg.TilesInfoColumns[TilesInfoPyramidLevel])
	query += where.SQL + ";"
	binds = append(binds, where.Binds...)

	rows, err := s.conn.DB.QueryContext(ctx, query, binds...)
	if err != nil {
		return imgdoc2err.NewDatabase(err)
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		if err := rows.Scan(&pk); err != nil {
			return imgdoc2err.NewDatabase(err)
		}
		if !fn(pk) {
			break
		}
	}
	return rows.Err()
}

// GetTilesIntersectingCuboid is GetTilesIntersectingRect's 3-D analogue.
func (s *TileStore) GetTilesIntersectingCuboid(ctx context.Context, cuboid model.Cuboid, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, fn func(pk int64) bool) error {
	if s.cfg.Axes != 3 {
		return imgdoc2err.NewInvalidOperation("GetTilesIntersectingCuboid requires a 3-axis document")
	}

	var query string
	var binds []any

	if s.cfg.HasSpatialIndex {
		sc := s.cfg.SpatialIndexColumns
		ic := s.cfg.TilesInfoColumns
		query = fmt.Sprintf(
			`SELECT spatialindex.[%s] FROM [%s] spatialindex INNER JOIN [%s] info ON spatialindex.[%s] = info.[%s] WHERE (`+
				`[%s] >= ? AND [%s] <= ? AND [%s] >= ? AND [%s] <= ? AND [%s] >= ? AND [%s] <= ?) AND `,
			sc[SpatialIndexID], s.cfg.TableNames[TilesSpatialIndexTable], s.cfg.TableNames[TilesInfoTable], sc[SpatialIndexID], ic[TilesInfoPk],
			sc[SpatialIndexMaxX], sc[SpatialIndexMinX], sc[SpatialIndexMaxY], sc[SpatialIndexMinY], sc[SpatialIndexMaxZ], sc[SpatialIndexMinZ],
		)
		binds = []any{cuboid.X, cuboid.X + cuboid.W, cuboid.Y, cuboid.Y + cuboid.H, cuboid.Z, cuboid.Z + cuboid.D}
	} else {
		ic := s.cfg.TilesInfoColumns
		query = fmt.Sprintf(
			`SELECT [%s] FROM [%s] WHERE ([%s]+[%s] >= ? AND [%s] <= ? AND [%s]+[%s] >= ? AND [%s] <= ? AND [%s]+[%s] >= ? AND [%s] <= ?) AND `,
			ic[TilesInfoPk], s.cfg.TableNames[TilesInfoTable],
			ic[TilesInfoTileX], ic[TilesInfoTileW], ic[TilesInfoTileX],
			ic[TilesInfoTileY], ic[TilesInfoTileH], ic[TilesInfoTileY],
			ic[TilesInfoTileZ], ic[TilesInfoTileD], ic[TilesInfoTileZ],
		)
		binds = []any{cuboid.X, cuboid.X + cuboid.W, cuboid.Y, cuboid.Y + cuboid.H, cuboid.Z, cuboid.Z + cuboid.D}
	}

	where := buildQueryWhere(s.cfg, dim, tileInfo, s.cfg.TilesInfoColumns[TilesInfoPyramidLevel])
	query += where.SQL + ";"
	binds = append(binds, where.Binds...)

	rows, err := s.conn.DB.QueryContext(ctx, query, binds...)
	if err != nil {
		return imgdoc2err.NewDatabase(err)
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		if err := rows.Scan(&pk); err != nil {
			return imgdoc2err.NewDatabase(err)
		}
		if !fn(pk) {
			break
		}
	}
	return rows.Err()
}

// GetTilesIntersectingPlane streams the primary keys of 3-D bricks whose
// cuboid intersects plane, using the non-indexed predicate in geometry.go
// (the spatial R-Tree cannot accelerate a plane test). Mirrors
// Utilities::CreateWhereConditionForIntersectingWithPlaneClause.
func (s *TileStore) GetTilesIntersectingPlane(ctx context.Context, plane model.Plane, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, fn func(pk int64) bool) error {
	if s.cfg.Axes != 3 {
		return imgdoc2err.NewInvalidOperation("GetTilesIntersectingPlane requires a 3-axis document")
	}

	ic := s.cfg.TilesInfoColumns
	planeWhere := planeIntersectionWhere(s.cfg, plane)
	queryWhere := buildQueryWhere(s.cfg, dim, tileInfo, ic[TilesInfoPyramidLevel])

	query := fmt.Sprintf(`SELECT [%s] FROM [%s] WHERE %s AND %s;`,
		ic[TilesInfoPk], s.cfg.TableNames[TilesInfoTable], planeWhere.SQL, queryWhere.SQL)
	binds := append(append([]any{}, planeWhere.Binds...), queryWhere.Binds...)

	rows, err := s.conn.DB.QueryContext(ctx, query, binds...)
	if err != nil {
		return imgdoc2err.NewDatabase(err)
	}
	defer rows.Close()

	for rows.Next() {
		var pk int64
		if err := rows.Scan(&pk); err != nil {
			return imgdoc2err.NewDatabase(err)
		}
		if !fn(pk) {
			break
		}
	}
	return rows.Err()
}

// GetTileDimensions returns the set of per-tile dimensions this document
// carries.
func (s *TileStore) GetTileDimensions() []model.Dimension {
	return s.cfg.Dimensions
}

// GetMinMaxForTileDimension returns, for each requested dimension, the
// [min, max] range of coordinate values actually present across all tiles.
// A dimension with no tiles at all is reported as an invalid interval, not
// a [0,0] one. Mirrors DocumentReadBase::GetMinMaxForTileDimensionInternal.
func (s *TileStore) GetMinMaxForTileDimension(ctx context.Context, dims []model.Dimension) (map[model.Dimension]model.Int32Interval, error) {
	result := make(map[model.Dimension]model.Int32Interval, len(dims))
	if len(dims) == 0 {
		return result, nil
	}

	known := make(map[model.Dimension]bool, len(s.cfg.Dimensions))
	for _, d := range s.cfg.Dimensions {
		known[d] = true
	}
	for _, d := range dims {
		if !known[d] {
			return nil, imgdoc2err.NewInvalidArgument("dimension %q is not valid for this document", d)
		}
	}

	var selects []string
	for _, d := range dims {
		col := s.cfg.DimensionColumnName(d)
		selects = append(selects, "MIN(["+col+"])", "MAX(["+col+"])")
	}
	query := "SELECT " + strings.Join(selects, ",") + " FROM [" + s.cfg.TableNames[TilesInfoTable] + "];"

	row := s.conn.DB.QueryRowContext(ctx, query)
	values := make([]any, len(dims)*2)
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := row.Scan(ptrs...); err != nil {
		return nil, imgdoc2err.NewDatabase(err)
	}

	for i, d := range dims {
		min, max := values[i*2], values[i*2+1]
		if min == nil || max == nil {
			result[d] = model.Int32Interval{}
			continue
		}
		result[d] = model.Int32Interval{Min: toInt32(min), Max: toInt32(max), Valid: true}
	}
	return result, nil
}

// GetTilesBoundingBox returns the logical-space bounding box of every 2-D
// tile in the document, as an X interval and a Y interval. A document with
// no tiles reports both as invalid intervals. Mirrors
// DocumentRead2d::GetTilesBoundingBox.
func (s *TileStore) GetTilesBoundingBox(ctx context.Context) (xRange, yRange model.Float64Interval, err error) {
	c := s.cfg.TilesInfoColumns
	query := fmt.Sprintf(`SELECT MIN([%s]),MAX([%s]+[%s]),MIN([%s]),MAX([%s]+[%s]) FROM [%s];`,
		c[TilesInfoTileX], c[TilesInfoTileX], c[TilesInfoTileW],
		c[TilesInfoTileY], c[TilesInfoTileY], c[TilesInfoTileH],
		s.cfg.TableNames[TilesInfoTable])

	var minX, maxX, minY, maxY any
	row := s.conn.DB.QueryRowContext(ctx, query)
	if err := row.Scan(&minX, &maxX, &minY, &maxY); err != nil {
		return xRange, yRange, imgdoc2err.NewDatabase(err)
	}
	if minX != nil && maxX != nil {
		xRange = model.Float64Interval{Min: toFloat64(minX), Max: toFloat64(maxX), Valid: true}
	}
	if minY != nil && maxY != nil {
		yRange = model.Float64Interval{Min: toFloat64(minY), Max: toFloat64(maxY), Valid: true}
	}
	return xRange, yRange, nil
}

// GetBricksBoundingBox is GetTilesBoundingBox's 3-D analogue.
func (s *TileStore) GetBricksBoundingBox(ctx context.Context) (xRange, yRange, zRange model.Float64Interval, err error) {
	if s.cfg.Axes != 3 {
		return xRange, yRange, zRange, imgdoc2err.NewInvalidOperation("GetBricksBoundingBox requires a 3-axis document")
	}
	c := s.cfg.TilesInfoColumns
	query := fmt.Sprintf(`SELECT MIN([%s]),MAX([%s]+[%s]),MIN([%s]),MAX([%s]+[%s]),MIN([%s]),MAX([%s]+[%s]) FROM [%s];`,
		c[TilesInfoTileX], c[TilesInfoTileX], c[TilesInfoTileW],
		c[TilesInfoTileY], c[TilesInfoTileY], c[TilesInfoTileH],
		c[TilesInfoTileZ], c[TilesInfoTileZ], c[TilesInfoTileD],
		s.cfg.TableNames[TilesInfoTable])

	var minX, maxX, minY, maxY, minZ, maxZ any
	row := s.conn.DB.QueryRowContext(ctx, query)
	if err := row.Scan(&minX, &maxX, &minY, &maxY, &minZ, &maxZ); err != nil {
		return xRange, yRange, zRange, imgdoc2err.NewDatabase(err)
	}
	if minX != nil && maxX != nil {
		xRange = model.Float64Interval{Min: toFloat64(minX), Max: toFloat64(maxX), Valid: true}
	}
	if minY != nil && maxY != nil {
		yRange = model.Float64Interval{Min: toFloat64(minY), Max: toFloat64(maxY), Valid: true}
	}
	if minZ != nil && maxZ != nil {
		zRange = model.Float64Interval{Min: toFloat64(minZ), Max: toFloat64(maxZ), Valid: true}
	}
	return xRange, yRange, zRange, nil
}

// GetTotalTileCount returns the number of rows in the tiles-info table.
func (s *TileStore) GetTotalTileCount(ctx context.Context) (uint64, error) {
	query := `SELECT COUNT(*) FROM [` + s.cfg.TableNames[TilesInfoTable] + `];`
	var count uint64
	if err := s.conn.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, imgdoc2err.NewDatabase(err)
	}
	return count, nil
}

// GetTileCountPerLayer returns the tile count grouped by pyramid level.
func (s *TileStore) GetTileCountPerLayer(ctx context.Context) (map[int32]uint64, error) {
	col := s.cfg.TilesInfoColumns[TilesInfoPyramidLevel]
	query := fmt.Sprintf(`SELECT [%s], COUNT(*) FROM [%s] GROUP BY [%s];`, col, s.cfg.TableNames[TilesInfoTable], col)

	rows, err := s.conn.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, imgdoc2err.NewDatabase(err)
	}
	defer rows.Close()

	result := make(map[int32]uint64)
	for rows.Next() {
		var layer int32
		var count uint64
		if err := rows.Scan(&layer, &count); err != nil {
			return nil, imgdoc2err.NewDatabase(err)
		}
		result[layer] = count
	}
	return result, rows.Err()
}

func toInt32(v any) int32 {
	switch n := v.(type) {
	case int64:
		return int32(n)
	case int32:
		return n
	case int:
		return int32(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
