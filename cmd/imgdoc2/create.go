package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imgdoc2/imgdoc2go"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new imgdoc2 document",
	Long: `Create a new imgdoc2 document at the path given by --file.

Examples:
  imgdoc2 create --file slide.imgdoc2 --axes 2 --dimensions CT --indexed-dimensions C
  imgdoc2 create --file volume.imgdoc2 --axes 3 --dimensions C --spatial-index --blob-table`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().Int("axes", 2, "number of spatial axes (2 or 3)")
	createCmd.Flags().String("dimensions", "", "per-tile dimensions to carry, e.g. \"CT\"")
	createCmd.Flags().String("indexed-dimensions", "", "subset of --dimensions that gets a dedicated SQL index")
	createCmd.Flags().Bool("spatial-index", false, "add an R-Tree spatial index over tile position")
	createCmd.Flags().Bool("blob-table", false, "add a table for storing tile pixel data")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}
	axes, _ := cmd.Flags().GetInt("axes")
	dimsFlag, _ := cmd.Flags().GetString("dimensions")
	indexedFlag, _ := cmd.Flags().GetString("indexed-dimensions")
	spatialIndex, _ := cmd.Flags().GetBool("spatial-index")
	blobTable, _ := cmd.Flags().GetBool("blob-table")

	dims, err := parseDimensionList(dimsFlag)
	if err != nil {
		return err
	}
	indexed, err := parseDimensionList(indexedFlag)
	if err != nil {
		return err
	}

	doc, err := imgdoc2go.New(context.Background(), path, imgdoc2go.CreateOptions{
		Axes:              axes,
		Dimensions:        dims,
		IndexedDimensions: indexed,
		UseSpatialIndex:   spatialIndex,
		CreateBlobTable:   blobTable,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer doc.Close()

	fmt.Printf("created %s (%d axes, dimensions %q)\n", path, axes, dimsFlag)
	return nil
}

func parseDimensionList(s string) ([]imgdoc2go.Dimension, error) {
	var dims []imgdoc2go.Dimension
	for _, r := range s {
		d, err := model.ParseDimension(string(r))
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, nil
}
