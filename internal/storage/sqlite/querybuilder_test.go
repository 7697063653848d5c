package sqlite

import (
	"testing"

	"github.com/imgdoc2/imgdoc2go/internal/model"
)

func TestRangeClauseFragmentSemantics(t *testing.T) {
	cases := []struct {
		name    string
		clause  model.RangeClause
		wantOK  bool
		wantSQL string
	}{
		{"equality", model.RangeClause{Start: 5, End: 5}, true, "([Dim_C] = ?)"},
		{"open interval", model.RangeClause{Start: 1, End: 3}, true, "([Dim_C] > ? AND [Dim_C] < ?)"},
		{"unbounded start", model.RangeClause{Start: model.RangeUnboundedStart, End: 10}, true, "([Dim_C] < ?)"},
		{"unbounded end", model.RangeClause{Start: 10, End: model.RangeUnboundedEnd}, true, "([Dim_C] > ?)"},
		{"fully unbounded", model.RangeClause{Start: model.RangeUnboundedStart, End: model.RangeUnboundedEnd}, false, ""},
		{"invalid inverted range", model.RangeClause{Start: 10, End: 1}, false, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sql, _, ok := rangeClauseFragment("Dim_C", c.clause)
			if ok != c.wantOK {
				t.Fatalf("ok = %v, want %v", ok, c.wantOK)
			}
			if ok && sql != c.wantSQL {
				t.Errorf("sql = %q, want %q", sql, c.wantSQL)
			}
		})
	}
}

func TestBuildDimensionWhereDropsAllInvalidRanges(t *testing.T) {
	cfg, err := NewConfiguration(2, DocTypeImage2d, []model.Dimension{'C'}, nil)
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}

	clause := model.CoordinateQueryClause{Dimensions: []model.DimensionRangeClauses{
		{Dimension: 'C', Ranges: []model.RangeClause{{Start: 10, End: 1}}},
	}}

	where := buildDimensionWhere(cfg, clause)
	if where.SQL != "(FALSE)" {
		t.Errorf("SQL = %q, want (FALSE) when every range clause on a constrained dimension is invalid", where.SQL)
	}
	if len(where.Binds) != 0 {
		t.Errorf("Binds = %v, want none", where.Binds)
	}
}

func TestBuildDimensionWhereUnconstrainedDimensionIsSkipped(t *testing.T) {
	cfg, err := NewConfiguration(2, DocTypeImage2d, []model.Dimension{'C'}, nil)
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}

	clause := model.CoordinateQueryClause{Dimensions: []model.DimensionRangeClauses{
		{Dimension: 'C', Ranges: nil},
	}}

	where := buildDimensionWhere(cfg, clause)
	if where.SQL != "(TRUE)" {
		t.Errorf("SQL = %q, want (TRUE) when a dimension declares no range clauses at all", where.SQL)
	}
}

func TestBuildDimensionWhereOrsWithinDimensionAndsAcrossDimensions(t *testing.T) {
	cfg, err := NewConfiguration(2, DocTypeImage2d, []model.Dimension{'C', 'T'}, nil)
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}

	clause := model.CoordinateQueryClause{Dimensions: []model.DimensionRangeClauses{
		{Dimension: 'C', Ranges: []model.RangeClause{{Start: 0, End: 0}, {Start: 2, End: 2}}},
		{Dimension: 'T', Ranges: []model.RangeClause{{Start: 1, End: 1}}},
	}}

	where := buildDimensionWhere(cfg, clause)
	want := "(([Dim_C] = ?) OR ([Dim_C] = ?)) AND (([Dim_T] = ?))"
	if where.SQL != want {
		t.Errorf("SQL = %q, want %q", where.SQL, want)
	}
	if len(where.Binds) != 3 {
		t.Errorf("Binds = %v, want 3 values", where.Binds)
	}
}

func TestBuildTileInfoWhereEmptyClauseMatchesEverything(t *testing.T) {
	where := buildTileInfoWhere("PyramidLevel", model.TileInfoQueryClause{})
	if where.SQL != "(TRUE)" {
		t.Errorf("SQL = %q, want (TRUE)", where.SQL)
	}
}

func TestBuildTileInfoWhereChainsConditions(t *testing.T) {
	clause := model.TileInfoQueryClause{Conditions: []model.PyramidLevelCondition{
		{Comparison: model.CompareEqual, Value: 0},
		{Logical: model.LogicalOr, Comparison: model.CompareEqual, Value: 1},
	}}
	where := buildTileInfoWhere("PyramidLevel", clause)
	want := "(( [PyramidLevel] = ?) OR ( [PyramidLevel] = ?))"
	if where.SQL != want {
		t.Errorf("SQL = %q, want %q", where.SQL, want)
	}
	if len(where.Binds) != 2 {
		t.Errorf("Binds = %v, want 2 values", where.Binds)
	}
}
