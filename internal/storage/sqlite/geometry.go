package sqlite

import (
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// planeIntersectionWhere builds the non-indexed WHERE-fragment testing
// whether a tile's axis-aligned cuboid (read from the tiles-info table)
// intersects a plane, grounded byte-for-byte on
// Utilities::CreateWhereConditionForIntersectingWithPlaneClause in
// original_source/libimgdoc2/src/db/utilities.cpp - down to binding the
// normal's z/y/x components twice (once before the inequality, once after).
// See http://www.lighthouse3d.com/tutorials/view-frustum-culling/geometric-approach-testing-boxes-ii/
// for the geometric derivation.
func planeIntersectionWhere(cfg *Configuration, plane model.Plane) whereClause {
	c := cfg.TilesInfoColumns
	x, y, z := c[TilesInfoTileX], c[TilesInfoTileY], c[TilesInfoTileZ]
	w, h, d := c[TilesInfoTileW], c[TilesInfoTileH], c[TilesInfoTileD]

	sql := "(2*abs(-?+([" + w + "]/2+[" + x + "])*?+" +
		"([" + h + "]/2+[" + y + "])*?+" +
		"([" + d + "]/2+[" + z + "])*?)" +
		"<=" +
		"abs(?)*[" + d + "]+abs(?)*[" + h + "]+abs(?)*[" + w + "])"

	return whereClause{
		SQL: sql,
		Binds: []any{
			plane.Distance,
			plane.NormalX,
			plane.NormalY,
			plane.NormalZ,
			plane.NormalZ,
			plane.NormalY,
			plane.NormalX,
		},
	}
}
