package sqlite

import (
	"strings"

	"github.com/samber/lo"

	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// whereClause pairs a SQL WHERE-fragment with the bind values it needs, in
// the order its placeholders appear.
type whereClause struct {
	SQL   string
	Binds []any
}

// buildDimensionWhere turns a CoordinateQueryClause into a WHERE-fragment,
// grounded on Utilities::CreateWhereConditionForDimQueryClause in
// original_source/libimgdoc2/src/db/utilities.cpp. An empty clause (no
// dimensions at all) yields "(TRUE)".
//
// Where this module departs from the original: a dimension that declares
// RangeClauses but every one of them is an invalid (non-sentinel) start>end
// pair matches nothing for that dimension - emitted here as "(FALSE)" -
// rather than the original's latent bug of silently imposing no constraint
// at all. A dimension with no RangeClauses to begin with, or with a fully
// unbounded {RangeUnboundedStart, RangeUnboundedEnd} clause among its
// alternatives, is unconstrained.
func buildDimensionWhere(cfg *Configuration, clause model.CoordinateQueryClause) whereClause {
	var conditions []string
	var binds []any

	for _, dc := range clause.Dimensions {
		if len(dc.Ranges) == 0 {
			continue
		}
		unconstrained := false
		for _, r := range dc.Ranges {
			if r.Start == model.RangeUnboundedStart && r.End == model.RangeUnboundedEnd {
				unconstrained = true
			}
		}
		if unconstrained {
			continue
		}

		fragments := lo.FilterMap(dc.Ranges, func(r model.RangeClause, _ int) (string, bool) {
			frag, fragBinds, ok := rangeClauseFragment(cfg.DimensionColumnName(dc.Dimension), r)
			if ok {
				binds = append(binds, fragBinds...)
			}
			return frag, ok
		})

		if len(fragments) == 0 {
			conditions = append(conditions, "(FALSE)")
			continue
		}
		conditions = append(conditions, "("+strings.Join(fragments, " OR ")+")")
	}

	if len(conditions) == 0 {
		return whereClause{SQL: "(TRUE)"}
	}
	return whereClause{SQL: strings.Join(conditions, " AND "), Binds: binds}
}

// rangeClauseFragment mirrors Utilities::ProcessRangeClause. Sentinel
// semantics: Start==RangeUnboundedStart means no lower bound, End==
// RangeUnboundedEnd means no upper bound; Start==End is an equality test;
// Start<End is an open interval (strict on both ends, matching the
// original); Start>End with neither a sentinel is not a valid range and is
// skipped (ok=false). A fully unbounded clause also yields no fragment
// (ok=false); buildDimensionWhere treats it as matching every value.
func rangeClauseFragment(column string, r model.RangeClause) (sql string, binds []any, ok bool) {
	unboundedStart := r.Start == model.RangeUnboundedStart
	unboundedEnd := r.End == model.RangeUnboundedEnd

	switch {
	case !unboundedStart && !unboundedEnd && r.Start < r.End:
		return "([" + column + "] > ? AND [" + column + "] < ?)", []any{r.Start, r.End}, true
	case !unboundedStart && !unboundedEnd && r.Start == r.End:
		return "([" + column + "] = ?)", []any{r.Start}, true
	case unboundedStart && !unboundedEnd:
		return "([" + column + "] < ?)", []any{r.End}, true
	case !unboundedStart && unboundedEnd:
		return "([" + column + "] > ?)", []any{r.Start}, true
	default:
		return "", nil, false
	}
}

// buildTileInfoWhere turns a TileInfoQueryClause (a chain of pyramid-level
// comparisons joined by AND/OR) into a WHERE-fragment, grounded on
// Utilities::CreateWhereConditionForTileInfoQueryClause.
func buildTileInfoWhere(pyramidLevelColumn string, clause model.TileInfoQueryClause) whereClause {
	if len(clause.Conditions) == 0 {
		return whereClause{SQL: "(TRUE)"}
	}

	var b strings.Builder
	var binds []any
	b.WriteString("(")
	for i, cond := range clause.Conditions {
		if i > 0 {
			b.WriteString(" ")
			b.WriteString(logicalOperatorSQL(cond.Logical))
			b.WriteString(" ")
		}
		b.WriteString("( [")
		b.WriteString(pyramidLevelColumn)
		b.WriteString("] ")
		b.WriteString(comparisonOperatorSQL(cond.Comparison))
		b.WriteString(" ?)")
		binds = append(binds, cond.Value)
	}
	b.WriteString(")")

	return whereClause{SQL: b.String(), Binds: binds}
}

func comparisonOperatorSQL(op model.ComparisonOperation) string {
	switch op {
	case model.CompareEqual:
		return "="
	case model.CompareNotEqual:
		return "<>"
	case model.CompareLessThan:
		return "<"
	case model.CompareLessThanOrEqual:
		return "<="
	case model.CompareGreaterThan:
		return ">"
	case model.CompareGreaterThanOrEqual:
		return ">="
	default:
		panic("imgdoc2: invalid comparison operator")
	}
}

func logicalOperatorSQL(op model.LogicalOperator) string {
	switch op {
	case model.LogicalAnd:
		return "AND"
	case model.LogicalOr:
		return "OR"
	default:
		panic("imgdoc2: invalid logical operator")
	}
}

// buildQueryWhere combines a dimension clause and a tile-info clause into
// one WHERE-fragment, grounded on Utilities::CreateWhereStatement. Either
// clause may be nil/empty, in which case it contributes "(TRUE)".
func buildQueryWhere(cfg *Configuration, dim *model.CoordinateQueryClause, tileInfo *model.TileInfoQueryClause, pyramidLevelColumn string) whereClause {
	var dimPart, tileInfoPart whereClause
	if dim != nil {
		dimPart = buildDimensionWhere(cfg, *dim)
	} else {
		dimPart = whereClause{SQL: "(TRUE)"}
	}
	if tileInfo != nil {
		tileInfoPart = buildTileInfoWhere(pyramidLevelColumn, *tileInfo)
	} else {
		tileInfoPart = whereClause{SQL: "(TRUE)"}
	}

	binds := append(append([]any{}, dimPart.Binds...), tileInfoPart.Binds...)
	return whereClause{SQL: dimPart.SQL + " AND " + tileInfoPart.SQL, Binds: binds}
}
