package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imgdoc2/imgdoc2go"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List the primary keys of tiles/bricks matching a coordinate query",
	Long: `List the primary keys of tiles matching a dimension-range query, and
optionally a rectangle (2-axis) or cuboid (3-axis) intersection test.

Examples:
  imgdoc2 query --file slide.imgdoc2 --range C=0:0 --range T=0:10
  imgdoc2 query --file slide.imgdoc2 --rect 0,0,1000,1000`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArray("range", nil, "dimension range as DIM=START:END, may repeat (same DIM ORs, different DIMs AND); omit START or END for unbounded")
	queryCmd.Flags().String("rect", "", "intersect with rectangle X,Y,W,H (2-axis documents only)")
	queryCmd.Flags().String("cuboid", "", "intersect with cuboid X,Y,Z,W,H,D (3-axis documents only)")
	rootCmd.AddCommand(queryCmd)
}

func parseRangeFlags(raw []string) (*model.CoordinateQueryClause, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	byDim := map[model.Dimension][]model.RangeClause{}
	var order []model.Dimension
	for _, kv := range raw {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			return nil, fmt.Errorf("invalid --range %q, want DIM=START:END", kv)
		}
		dim, err := model.ParseDimension(kv[:eq])
		if err != nil {
			return nil, err
		}
		r, err := parseRange(kv[eq+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid --range %q: %w", kv, err)
		}
		if _, ok := byDim[dim]; !ok {
			order = append(order, dim)
		}
		byDim[dim] = append(byDim[dim], r)
	}

	clause := &model.CoordinateQueryClause{}
	for _, dim := range order {
		clause.Dimensions = append(clause.Dimensions, model.DimensionRangeClauses{
			Dimension: dim,
			Ranges:    byDim[dim],
		})
	}
	return clause, nil
}

func parseRange(s string) (model.RangeClause, error) {
	parts := strings.SplitN(s, ":", 2)
	start, end := model.RangeUnboundedStart, model.RangeUnboundedEnd
	if parts[0] != "" {
		v, err := strconv.ParseInt(parts[0], 10, 32)
		if err != nil {
			return model.RangeClause{}, err
		}
		start = int32(v)
	}
	if len(parts) == 2 && parts[1] != "" {
		v, err := strconv.ParseInt(parts[1], 10, 32)
		if err != nil {
			return model.RangeClause{}, err
		}
		end = int32(v)
	} else if len(parts) == 1 {
		end = start
	}
	return model.RangeClause{Start: start, End: end}, nil
}

func parseFloatList(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}
	rangeFlags, _ := cmd.Flags().GetStringArray("range")
	rectFlag, _ := cmd.Flags().GetString("rect")
	cuboidFlag, _ := cmd.Flags().GetString("cuboid")

	dim, err := parseRangeFlags(rangeFlags)
	if err != nil {
		return err
	}

	ctx := context.Background()
	doc, err := imgdoc2go.Open(ctx, path, imgdoc2go.OpenExistingOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	print := func(pk int64) bool {
		fmt.Println(pk)
		return true
	}

	switch {
	case rectFlag != "":
		vals, err := parseFloatList(rectFlag, 4)
		if err != nil {
			return fmt.Errorf("--rect: %w", err)
		}
		rect := model.Rectangle{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}
		return doc.GetTilesIntersectingRect(ctx, rect, dim, nil, print)
	case cuboidFlag != "":
		vals, err := parseFloatList(cuboidFlag, 6)
		if err != nil {
			return fmt.Errorf("--cuboid: %w", err)
		}
		cuboid := model.Cuboid{X: vals[0], Y: vals[1], Z: vals[2], W: vals[3], H: vals[4], D: vals[5]}
		return doc.GetTilesIntersectingCuboid(ctx, cuboid, dim, nil, print)
	default:
		return doc.Query(ctx, dim, nil, print)
	}
}
