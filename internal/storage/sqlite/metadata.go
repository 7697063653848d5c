package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/imgdoc2/imgdoc2go/internal/imgdoc2err"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// pathDelimiter separates name segments in a metadata path, grounded on
// DocumentMetadataBase::kPathDelimiter_.
const pathDelimiter = "/"

// metadataDBType is the TypeDiscriminator value stored alongside a metadata
// row, mirroring DocumentMetadataBase::DatabaseDataTypeValue.
type metadataDBType int32

const (
	metadataDBNull metadataDBType = iota
	metadataDBInt32
	metadataDBDouble
	metadataDBString
	metadataDBJSON
)

// MetadataStore is the read/write engine for the metadata forest table.
// Grounded on documentMetadataBase.cpp, documentMetadataReader.cpp and
// documentMetadataWriter.cpp in original_source/libimgdoc2/src/doc.
type MetadataStore struct {
	conn *Connection
	cfg  *Configuration
}

// NewMetadataStore wraps conn/cfg in a MetadataStore.
func NewMetadataStore(conn *Connection, cfg *Configuration) *MetadataStore {
	return &MetadataStore{conn: conn, cfg: cfg}
}

// splitPath validates and tokenizes a metadata path. A path must not start
// with the delimiter, must not end with it, and must not contain an empty
// segment. Mirrors DocumentMetadataBase::SplitPath.
func splitPath(path string) ([]string, error) {
	if strings.HasPrefix(path, pathDelimiter) {
		return nil, imgdoc2err.NewInvalidPath("the path must not start with a slash")
	}
	parts := strings.Split(path, pathDelimiter)
	for i, p := range parts {
		if p == "" {
			if i == len(parts)-1 {
				return nil, imgdoc2err.NewInvalidPath("path must not end with a delimiter")
			}
			return nil, imgdoc2err.NewInvalidPath("path must not contain zero-length fragments")
		}
	}
	return parts, nil
}

func checkNodeName(name string) error {
	if name == "" || strings.Contains(name, pathDelimiter) {
		return imgdoc2err.NewInvalidArgument("the 'name' must not be empty and it must not contain a slash")
	}
	return nil
}

// checkIfItemExists mirrors DocumentMetadataBase::CheckIfItemExists.
func (s *MetadataStore) checkIfItemExists(ctx context.Context, pk int64) (bool, error) {
	metadataName := s.cfg.TableNames[MetadataTableType]
	pkCol := s.cfg.MetadataColumns[MetadataPk]
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM [%s] WHERE [%s]=?)`, metadataName, pkCol)
	var exists int
	if err := s.conn.DB.QueryRowContext(ctx, query, pk).Scan(&exists); err != nil {
		return false, imgdoc2err.NewDatabase(err)
	}
	return exists == 1, nil
}

// getNodeIdsForPathParts mirrors DocumentMetadataBase::GetNodeIdsForPathParts:
// it resolves as many leading path segments as exist, stopping short if a
// segment is missing - the caller distinguishes "fully resolved" from
// "partially resolved" by comparing len(result) to len(parts).
func (s *MetadataStore) getNodeIdsForPathParts(ctx context.Context, parts []string) ([]int64, error) {
	if len(parts) == 0 {
		return nil, imgdoc2err.NewInvalidArgument("the path must contain at least one part")
	}

	metadataName := s.cfg.TableNames[MetadataTableType]
	pkCol := s.cfg.MetadataColumns[MetadataPk]
	nameCol := s.cfg.MetadataColumns[MetadataName]
	ancestorCol := s.cfg.MetadataColumns[MetadataAncestorID]

	var query string
	if len(parts) == 1 {
		query = fmt.Sprintf(`SELECT [%s] FROM [%s] WHERE [%s] IS NULL AND [%s]=?;`, pkCol, metadataName, ancestorCol, nameCol)
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, `WITH RECURSIVE paths(id, name, level) AS( `+
			`SELECT [%s],[%s],1 FROM [%s] WHERE [%s] IS NULL AND [%s]=? `+
			`UNION `+
			`SELECT [%s].[%s], [%s].[%s], level + 1 `+
			`FROM [%s] JOIN paths WHERE [%s].[%s]=paths.id AND CASE level `,
			pkCol, nameCol, metadataName, ancestorCol, nameCol,
			metadataName, pkCol, metadataName, nameCol,
			metadataName, metadataName, ancestorCol)
		for i := 1; i < len(parts); i++ {
			fmt.Fprintf(&b, `WHEN %d THEN [%s].[%s]=? `, i, metadataName, nameCol)
		}
		b.WriteString(`END) SELECT id FROM paths;`)
		query = b.String()
	}

	binds := make([]any, len(parts))
	for i, p := range parts {
		binds[i] = p
	}

	rows, err := s.conn.DB.QueryContext(ctx, query, binds...)
	if err != nil {
		return nil, imgdoc2err.NewDatabase(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, imgdoc2err.NewDatabase(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// getNodeIdsForPath splits and resolves path, reporting how many segments it
// contained via partsCount.
func (s *MetadataStore) getNodeIdsForPath(ctx context.Context, path string) (ids []int64, partsCount int, err error) {
	if path == "" {
		return nil, 0, nil
	}
	parts, err := splitPath(path)
	if err != nil {
		return nil, 0, err
	}
	ids, err = s.getNodeIdsForPathParts(ctx, parts)
	if err != nil {
		return nil, 0, err
	}
	return ids, len(parts), nil
}

// tryMapPathAndGetTerminalNode resolves path to its terminal node's pk, where
// a nil result with ok=true means "the root". ok=false means the path does
// not fully resolve.
func (s *MetadataStore) tryMapPathAndGetTerminalNode(ctx context.Context, path string) (pk *int64, ok bool, err error) {
	ids, partsCount, err := s.getNodeIdsForPath(ctx, path)
	if err != nil {
		return nil, false, err
	}
	if partsCount == 0 {
		return nil, true, nil
	}
	if len(ids) == partsCount {
		last := ids[len(ids)-1]
		return &last, true, nil
	}
	return nil, false, nil
}

// getPathForNode mirrors DocumentMetadataReader::GetPathForNode.
func (s *MetadataStore) getPathForNode(ctx context.Context, pk int64) (string, bool, error) {
	metadataName := s.cfg.TableNames[MetadataTableType]
	pkCol := s.cfg.MetadataColumns[MetadataPk]
	nameCol := s.cfg.MetadataColumns[MetadataName]
	ancestorCol := s.cfg.MetadataColumns[MetadataAncestorID]

	query := fmt.Sprintf(
		`WITH RECURSIVE item_path ([%s],[%s],[%s],path) AS( `+
			`SELECT [%s],[%s],[%s],[%s] AS path FROM [%s] WHERE [%s] IS NULL `+
			`UNION ALL `+
			`SELECT i.[%s],i.[%s],i.[%s],ip.path || '%s' || i.[%s] AS path `+
			`FROM [%s] i JOIN item_path ip ON i.[%s] = ip.[%s]) `+
			`SELECT path FROM item_path WHERE [%s]=?;`,
		pkCol, nameCol, ancestorCol,
		pkCol, nameCol, ancestorCol, nameCol, metadataName, ancestorCol,
		pkCol, nameCol, ancestorCol, pathDelimiter, nameCol,
		metadataName, ancestorCol, pkCol,
		pkCol,
	)

	var path string
	err := s.conn.DB.QueryRowContext(ctx, query, pk).Scan(&path)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, imgdoc2err.NewDatabase(err)
	}
	return path, true, nil
}

// GetItem reads one metadata node by primary key, populating only the
// fields selected by flags. MetadataFlagNone is a pure existence check.
// Mirrors DocumentMetadataReader::GetItem.
func (s *MetadataStore) GetItem(ctx context.Context, pk int64, flags model.MetadataItemFlags) (model.MetadataItem, error) {
	var item model.MetadataItem

	if flags == model.MetadataFlagNone {
		exists, err := s.checkIfItemExists(ctx, pk)
		if err != nil {
			return item, err
		}
		if !exists {
			return item, &imgdoc2err.NonExistingItemError{Pk: pk}
		}
		return item, nil
	}

	if flags&(model.MetadataFlagPrimaryKey|model.MetadataFlagName|model.MetadataFlagTypeAndValue) != 0 {
		c := s.cfg.MetadataColumns
		query := fmt.Sprintf(`SELECT [%s],[%s],[%s],[%s],[%s],[%s] FROM [%s] WHERE [%s]=?;`,
			c[MetadataPk], c[MetadataName], c[MetadataTypeDiscriminator], c[MetadataValueDouble], c[MetadataValueInteger], c[MetadataValueString],
			s.cfg.TableNames[MetadataTableType], c[MetadataPk])

		row := s.conn.DB.QueryRowContext(ctx, query, pk)
		var rowPk int64
		var name string
		var typeDisc int32
		var valueDouble sql.NullFloat64
		var valueInteger sql.NullInt64
		var valueString sql.NullString
		if err := row.Scan(&rowPk, &name, &typeDisc, &valueDouble, &valueInteger, &valueString); err != nil {
			if err == sql.ErrNoRows {
				return item, &imgdoc2err.NonExistingItemError{Pk: pk}
			}
			return item, imgdoc2err.NewDatabase(err)
		}

		if flags&model.MetadataFlagPrimaryKey != 0 {
			item.Pk = rowPk
		}
		if flags&model.MetadataFlagName != 0 {
			item.Name = name
		}
		if flags&model.MetadataFlagTypeAndValue != 0 {
			typ, val := decodeMetadataValue(metadataDBType(typeDisc), valueDouble, valueInteger, valueString)
			item.Type = typ
			item.Value = val
		}
	}

	if flags&model.MetadataFlagCompletePath != 0 {
		path, ok, err := s.getPathForNode(ctx, pk)
		if err != nil {
			return item, err
		}
		if !ok {
			return item, &imgdoc2err.NonExistingItemError{Pk: pk}
		}
		item.CompletePath = path
	}

	return item, nil
}

// GetItemForPath resolves path to its terminal node and reads it, as GetItem.
func (s *MetadataStore) GetItemForPath(ctx context.Context, path string, flags model.MetadataItemFlags) (model.MetadataItem, error) {
	pk, ok, err := s.tryMapPathAndGetTerminalNode(ctx, path)
	if err != nil {
		return model.MetadataItem{}, err
	}
	if ok && pk != nil {
		return s.GetItem(ctx, *pk, flags)
	}
	return model.MetadataItem{}, imgdoc2err.NewInvalidPath("the path %q does not exist", path)
}

func decodeMetadataValue(t metadataDBType, valueDouble sql.NullFloat64, valueInteger sql.NullInt64, valueString sql.NullString) (model.MetadataType, model.MetadataValue) {
	switch t {
	case metadataDBNull:
		return model.MetadataTypeNull, model.NoValue
	case metadataDBInt32:
		return model.MetadataTypeInt32, model.Int32Value(int32(valueInteger.Int64))
	case metadataDBDouble:
		return model.MetadataTypeDouble, model.DoubleValue(valueDouble.Float64)
	case metadataDBString:
		return model.MetadataTypeText, model.StringValue(valueString.String)
	case metadataDBJSON:
		return model.MetadataTypeJson, model.StringValue(valueString.String)
	default:
		return model.MetadataTypeInvalid, model.NoValue
	}
}

// EnumerateItems streams the children of parent (nil meaning the root) to
// fn, recursing into the whole subtree when recursive is true. fn may
// return false to stop early. Mirrors
// DocumentMetadataReader::EnumerateItems/InternalEnumerateItems.
func (s *MetadataStore) EnumerateItems(ctx context.Context, parent *int64, recursive bool, flags model.MetadataItemFlags, fn func(pk int64, item model.MetadataItem) bool) error {
	pathOfParent := ""
	if parent != nil && flags&model.MetadataFlagCompletePath != 0 {
		path, ok, err := s.getPathForNode(ctx, *parent)
		if err != nil {
			return err
		}
		if !ok {
			return &imgdoc2err.NonExistingItemError{Pk: *parent}
		}
		pathOfParent = path + pathDelimiter
	}
	return s.internalEnumerateItems(ctx, parent, pathOfParent, recursive, flags, fn)
}

// EnumerateItemsForPath resolves path to a node (or the root, for an empty
// path) and enumerates its children.
func (s *MetadataStore) EnumerateItemsForPath(ctx context.Context, path string, recursive bool, flags model.MetadataItemFlags, fn func(pk int64, item model.MetadataItem) bool) error {
	pk, ok, err := s.tryMapPathAndGetTerminalNode(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return imgdoc2err.NewInvalidPath("the path %q does not exist", path)
	}
	pathOfParent := ""
	if path != "" {
		pathOfParent = path + pathDelimiter
	}
	return s.internalEnumerateItems(ctx, pk, pathOfParent, recursive, flags, fn)
}

func (s *MetadataStore) internalEnumerateItems(ctx context.Context, parent *int64, pathOfParent string, recursive bool, flags model.MetadataItemFlags, fn func(pk int64, item model.MetadataItem) bool) error {
	includePath := flags&model.MetadataFlagCompletePath != 0
	query, binds := s.buildEnumerateQuery(recursive, includePath, parent)

	rows, err := s.conn.DB.QueryContext(ctx, query, binds...)
	if err != nil {
		return imgdoc2err.NewDatabase(err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		found = true
		var pk int64
		var name string
		var typeDisc int32
		var valueDouble sql.NullFloat64
		var valueInteger sql.NullInt64
		var valueString sql.NullString
		var path sql.NullString

		targets := []any{&pk, &name, &typeDisc, &valueDouble, &valueInteger, &valueString}
		if includePath {
			targets = append(targets, &path)
		}
		if err := rows.Scan(targets...); err != nil {
			return imgdoc2err.NewDatabase(err)
		}

		item := model.MetadataItem{Pk: pk, Name: name}
		item.Type, item.Value = decodeMetadataValue(metadataDBType(typeDisc), valueDouble, valueInteger, valueString)
		if includePath {
			item.CompletePath = pathOfParent + path.String
		}

		if !fn(pk, item) {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return imgdoc2err.NewDatabase(err)
	}

	if !found && parent != nil {
		exists, err := s.checkIfItemExists(ctx, *parent)
		if err != nil {
			return err
		}
		if !exists {
			return &imgdoc2err.NonExistingItemError{Pk: *parent}
		}
	}
	return nil
}

// buildEnumerateQuery mirrors
// DocumentMetadataReader::CreateStatementForEnumerateAllItemsWithAncestorAndDataBind.
func (s *MetadataStore) buildEnumerateQuery(recursive, includePath bool, parent *int64) (string, []any) {
	metadataName := s.cfg.TableNames[MetadataTableType]
	c := s.cfg.MetadataColumns
	pk, name, anc := c[MetadataPk], c[MetadataName], c[MetadataAncestorID]
	td, vd, vi, vs := c[MetadataTypeDiscriminator], c[MetadataValueDouble], c[MetadataValueInteger], c[MetadataValueString]

	ancestorPred := fmt.Sprintf("[%s] IS NULL", anc)
	if parent != nil {
		ancestorPred = fmt.Sprintf("[%s]=?", anc)
	}

	var b strings.Builder
	if recursive {
		if includePath {
			fmt.Fprintf(&b, `WITH RECURSIVE [cte](%s,%s,%s,%s,%s,%s,%s,Path) AS(`+
				`SELECT [%s],[%s],[%s],[%s],[%s],[%s],[%s],[%s] As Path FROM [%s] WHERE %s `+
				`UNION ALL `+
				`SELECT [c].[%s],[c].[%s],[c].[%s],[c].[%s],[c].[%s],[c].[%s],[c].[%s],[cte].Path || '%s' ||c.[%s] `+
				`FROM [%s] [c] JOIN [cte] ON [c].[%s] = [cte].[%s]) `+
				`SELECT [%s],[%s],[%s],[%s],[%s],[%s],[Path] FROM [cte];`,
				pk, name, anc, td, vd, vi, vs,
				pk, name, anc, td, vd, vi, vs, name, metadataName, ancestorPred,
				pk, name, anc, td, vd, vi, vs, pathDelimiter, name,
				metadataName, anc, pk,
				pk, name, td, vd, vi, vs,
			)
		} else {
			fmt.Fprintf(&b, `WITH RECURSIVE cte AS(`+
				`SELECT [%s],[%s],[%s],[%s],[%s],[%s],[%s] FROM [%s] WHERE %s `+
				`UNION ALL `+
				`SELECT c.[%s],c.[%s],c.[%s],c.[%s],c.[%s],c.[%s],c.[%s] FROM [%s] c JOIN cte ON c.[%s]=cte.[%s]) `+
				`SELECT [%s],[%s],[%s],[%s],[%s],[%s] FROM cte;`,
				pk, name, anc, td, vd, vi, vs, metadataName, ancestorPred,
				pk, name, anc, td, vd, vi, vs, metadataName, anc, pk,
				pk, name, td, vd, vi, vs,
			)
		}
	} else {
		if includePath {
			fmt.Fprintf(&b, `WITH RECURSIVE [cte](%s,%s,%s,%s,%s,%s,%s,Path) AS(`+
				`SELECT [%s],[%s],[%s],[%s],[%s],[%s],[%s],[%s] As Path FROM [%s] WHERE %s `+
				`UNION ALL `+
				`SELECT [c].[%s],[c].[%s],[c].[%s],[c].[%s],[c].[%s],[c].[%s],[c].[%s],[cte].Path || '%s' ||c.[%s] `+
				`FROM [%s] [c] JOIN [cte] ON [c].[%s] = [cte].[%s]) `+
				`SELECT [%s],[%s],[%s],[%s],[%s],[%s],[Path] FROM [cte] WHERE %s;`,
				pk, name, anc, td, vd, vi, vs,
				pk, name, anc, td, vd, vi, vs, name, metadataName, ancestorPred,
				pk, name, anc, td, vd, vi, vs, pathDelimiter, name,
				metadataName, anc, pk,
				pk, name, td, vd, vi, vs, ancestorPred,
			)
		} else {
			fmt.Fprintf(&b, `SELECT [%s],[%s],[%s],[%s],[%s],[%s] FROM [%s] WHERE %s;`,
				pk, name, td, vd, vi, vs, metadataName, ancestorPred)
		}
	}

	var binds []any
	if parent != nil {
		binds = append(binds, *parent)
		if !recursive && includePath {
			binds = append(binds, *parent)
		}
	}
	return b.String(), binds
}

// UpdateOrCreateItem inserts a new node under parent (nil for the root), or
// updates the existing one with the same (name, parent), returning its pk.
// If createIfNotExists is false and no matching row exists, the update
// affects zero rows and the subsequent lookup fails with an
// imgdoc2err.InternalError.
// Mirrors DocumentMetadataWriter::UpdateOrCreateItem.
func (s *MetadataStore) UpdateOrCreateItem(ctx context.Context, parent *int64, createIfNotExists bool, name string, typ model.MetadataType, value model.MetadataValue) (int64, error) {
	if err := checkNodeName(name); err != nil {
		return 0, err
	}
	dbType, err := determineDBType(typ, value)
	if err != nil {
		return 0, err
	}

	if parent != nil {
		exists, err := s.checkIfItemExists(ctx, *parent)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, &imgdoc2err.NonExistingItemError{Pk: *parent}
		}
	}

	var pk int64
	err = s.conn.WithTransaction(ctx, func(tx *sql.Tx) error {
		query, binds := s.buildUpdateOrCreateStatement(createIfNotExists, parent, name, dbType, value)
		if createIfNotExists && parent == nil {
			// UNIQUE(Name, AncestorId) never conflicts on a NULL AncestorId, so a
			// root-level node is updated in place first and inserted only if absent.
			updQuery, updBinds := s.buildUpdateOrCreateStatement(false, nil, name, dbType, value)
			res, err := tx.ExecContext(ctx, updQuery, updBinds...)
			if err != nil {
				return imgdoc2err.NewDatabase(err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				query = ""
			}
		}
		if query != "" {
			if _, err := tx.ExecContext(ctx, query, binds...); err != nil {
				return imgdoc2err.NewDatabase(err)
			}
		}

		selectQuery, selectBinds := s.buildLookupByNameAndAncestor(name, parent)
		row := tx.QueryRowContext(ctx, selectQuery, selectBinds...)
		if err := row.Scan(&pk); err != nil {
			if err == sql.ErrNoRows {
				return imgdoc2err.NewInternal("could not find the item just inserted or updated")
			}
			return imgdoc2err.NewDatabase(err)
		}
		return nil
	})
	return pk, err
}

func determineDBType(typ model.MetadataType, value model.MetadataValue) (metadataDBType, error) {
	if value.IsNone() {
		return metadataDBNull, nil
	}
	switch typ {
	case model.MetadataTypeNull:
		return metadataDBNull, nil
	case model.MetadataTypeText:
		if !value.IsString() {
			return 0, imgdoc2err.NewInvalidArgument("the value must be a string")
		}
		return metadataDBString, nil
	case model.MetadataTypeInt32:
		if !value.IsInt32() {
			return 0, imgdoc2err.NewInvalidArgument("the value must be an integer")
		}
		return metadataDBInt32, nil
	case model.MetadataTypeDouble:
		if !value.IsDouble() {
			return 0, imgdoc2err.NewInvalidArgument("the value must be a double")
		}
		return metadataDBDouble, nil
	case model.MetadataTypeJson:
		if !value.IsString() {
			return 0, imgdoc2err.NewInvalidArgument("the value must be a string")
		}
		return metadataDBJSON, nil
	case model.MetadataTypeDefault:
		switch {
		case value.IsString():
			return metadataDBString, nil
		case value.IsInt32():
			return metadataDBInt32, nil
		case value.IsDouble():
			return metadataDBDouble, nil
		default:
			return 0, imgdoc2err.NewInvalidArgument("unknown metadata item type")
		}
	default:
		return 0, imgdoc2err.NewInvalidArgument("the metadata type is invalid")
	}
}

func valueBinds(dbType metadataDBType, value model.MetadataValue) (valueDouble, valueInteger, valueString any) {
	if dbType == metadataDBDouble {
		valueDouble = value.Double()
	}
	if dbType == metadataDBInt32 {
		valueInteger = value.Int32()
	}
	if dbType == metadataDBString || dbType == metadataDBJSON {
		valueString = value.String()
	}
	return
}

func (s *MetadataStore) buildUpdateOrCreateStatement(createIfNotExists bool, parent *int64, name string, dbType metadataDBType, value model.MetadataValue) (string, []any) {
	metadataName := s.cfg.TableNames[MetadataTableType]
	c := s.cfg.MetadataColumns
	nameCol, ancCol, tdCol, vdCol, viCol, vsCol := c[MetadataName], c[MetadataAncestorID], c[MetadataTypeDiscriminator], c[MetadataValueDouble], c[MetadataValueInteger], c[MetadataValueString]

	ancestorPred := fmt.Sprintf("[%s] IS NULL", ancCol)
	if parent != nil {
		ancestorPred = fmt.Sprintf("[%s] = ?", ancCol)
	}

	vDouble, vInt, vStr := valueBinds(dbType, value)

	var query string
	if !createIfNotExists {
		query = fmt.Sprintf(`UPDATE [%s] SET [%s] = ?, [%s] = ?, [%s] = ?, [%s] = ? WHERE [%s] = ? AND %s;`,
			metadataName, tdCol, vdCol, viCol, vsCol, nameCol, ancestorPred)
	} else {
		query = fmt.Sprintf(
			`INSERT INTO [%s] ([%s],[%s],[%s],[%s],[%s],[%s]) VALUES (?,?,?,?,?,?) `+
				`ON CONFLICT([%s],[%s]) DO UPDATE SET [%s] = ?, [%s] = ?, [%s] = ?, [%s] = ? WHERE [%s] = ? AND %s;`,
			metadataName, nameCol, ancCol, tdCol, vdCol, viCol, vsCol,
			nameCol, ancCol, tdCol, vdCol, viCol, vsCol, nameCol, ancestorPred,
		)
	}

	var binds []any
	if !createIfNotExists {
		binds = append(binds, int32(dbType), vDouble, vInt, vStr, name)
		if parent != nil {
			binds = append(binds, *parent)
		}
	} else {
		var ancestorBind any
		if parent != nil {
			ancestorBind = *parent
		}
		binds = append(binds, name, ancestorBind, int32(dbType), vDouble, vInt, vStr)
		binds = append(binds, int32(dbType), vDouble, vInt, vStr, name)
		if parent != nil {
			binds = append(binds, *parent)
		}
	}
	return query, binds
}

func (s *MetadataStore) buildLookupByNameAndAncestor(name string, parent *int64) (string, []any) {
	metadataName := s.cfg.TableNames[MetadataTableType]
	c := s.cfg.MetadataColumns
	pkCol, nameCol, ancCol := c[MetadataPk], c[MetadataName], c[MetadataAncestorID]

	ancestorPred := fmt.Sprintf("[%s] IS NULL", ancCol)
	if parent != nil {
		ancestorPred = fmt.Sprintf("[%s] = ?", ancCol)
	}
	query := fmt.Sprintf(`SELECT [%s] FROM [%s] WHERE [%s] = ? AND %s;`, pkCol, metadataName, nameCol, ancestorPred)

	binds := []any{name}
	if parent != nil {
		binds = append(binds, *parent)
	}
	return query, binds
}

// UpdateOrCreateItemForPath resolves (and, if createPathIfNotExists, creates)
// every intermediate segment of path, then creates/updates the terminal
// node. Mirrors DocumentMetadataWriter::UpdateOrCreateItemForPath.
func (s *MetadataStore) UpdateOrCreateItemForPath(ctx context.Context, createPathIfNotExists, createNodeIfNotExists bool, path string, typ model.MetadataType, value model.MetadataValue) (int64, error) {
	parts, err := splitPath(path)
	if err != nil {
		return 0, err
	}

	ids, err := s.getNodeIdsForPathParts(ctx, parts)
	if err != nil {
		return 0, err
	}

	if len(ids) < len(parts)-1 {
		if !createPathIfNotExists {
			return 0, imgdoc2err.NewInvalidPath("the path does not exist and the caller did not request to create it")
		}
		ids, err = s.createMissingNodesOnPath(ctx, parts, ids)
		if err != nil {
			return 0, err
		}
	}

	var parent *int64
	if len(parts) > 1 {
		p := ids[len(parts)-2]
		parent = &p
	}
	return s.UpdateOrCreateItem(ctx, parent, createNodeIfNotExists, parts[len(parts)-1], typ, value)
}

func (s *MetadataStore) createMissingNodesOnPath(ctx context.Context, parts []string, existing []int64) ([]int64, error) {
	for i := len(existing); i < len(parts)-1; i++ {
		var parent *int64
		if i > 0 {
			parent = &existing[i-1]
		}
		newPk, err := s.UpdateOrCreateItem(ctx, parent, true, parts[i], model.MetadataTypeNull, model.NoValue)
		if err != nil {
			return nil, err
		}
		existing = append(existing, newPk)
	}
	return existing, nil
}

// DeleteItem deletes the node at pk (nil for "everything under the root"),
// optionally recursing into its descendants, and reports the row count
// affected. Mirrors DocumentMetadataWriter::DeleteItem.
func (s *MetadataStore) DeleteItem(ctx context.Context, pk *int64, recursively bool) (uint64, error) {
	metadataName := s.cfg.TableNames[MetadataTableType]
	c := s.cfg.MetadataColumns
	pkCol, ancCol := c[MetadataPk], c[MetadataAncestorID]

	var query string
	var binds []any

	if pk != nil {
		if !recursively {
			query = fmt.Sprintf(`DELETE FROM [%s] WHERE [%s]=? AND NOT EXISTS(SELECT 1 FROM [%s] WHERE [%s]=?);`,
				metadataName, pkCol, metadataName, ancCol)
			binds = []any{*pk, *pk}
		} else {
			query = fmt.Sprintf(
				`WITH RECURSIVE children(id) AS (SELECT [%s] FROM [%s] WHERE [%s]=? UNION ALL `+
					`SELECT [%s].[%s] FROM [%s] JOIN children ON [%s].[%s]=children.id) `+
					`DELETE FROM [%s] WHERE [%s] IN (SELECT id FROM children) OR [%s]=?;`,
				pkCol, metadataName, ancCol,
				metadataName, pkCol, metadataName, metadataName, ancCol,
				metadataName, pkCol, pkCol,
			)
			binds = []any{*pk, *pk}
		}
	} else {
		if !recursively {
			return 0, nil
		}
		query = fmt.Sprintf(
			`WITH RECURSIVE children(id) AS (SELECT [%s] FROM [%s] WHERE [%s] IS NULL UNION ALL `+
				`SELECT [%s].[%s] FROM [%s] JOIN children ON [%s].[%s]=children.id) `+
				`DELETE FROM [%s] WHERE [%s] IN (SELECT id FROM children) OR [%s] IS NULL;`,
			pkCol, metadataName, ancCol,
			metadataName, pkCol, metadataName, metadataName, ancCol,
			metadataName, pkCol, ancCol,
		)
	}

	res, err := s.conn.DB.ExecContext(ctx, query, binds...)
	if err != nil {
		return 0, imgdoc2err.NewDatabase(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, imgdoc2err.NewDatabase(err)
	}
	return uint64(affected), nil
}

// DeleteItemForPath resolves path and deletes the node found there (the
// empty path means the root).
func (s *MetadataStore) DeleteItemForPath(ctx context.Context, path string, recursively bool) (uint64, error) {
	pk, ok, err := s.tryMapPathAndGetTerminalNode(ctx, path)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, imgdoc2err.NewInvalidPath("the path %q does not exist", path)
	}
	return s.DeleteItem(ctx, pk, recursively)
}
