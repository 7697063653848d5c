package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imgdoc2/imgdoc2go"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print a document's axes, dimensions and tile counts",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	doc, err := imgdoc2go.Open(ctx, path, imgdoc2go.OpenExistingOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	fmt.Printf("file:       %s\n", path)
	fmt.Printf("axes:       %d\n", doc.Axes())

	dims := doc.GetTileDimensions()
	dimStrs := make([]string, len(dims))
	for i, d := range dims {
		dimStrs[i] = d.String()
	}
	fmt.Printf("dimensions: %v\n", dimStrs)

	total, err := doc.GetTotalTileCount(ctx)
	if err != nil {
		return fmt.Errorf("total tile count: %w", err)
	}
	fmt.Printf("tiles:      %d\n", total)

	perLayer, err := doc.GetTileCountPerLayer(ctx)
	if err != nil {
		return fmt.Errorf("tile count per layer: %w", err)
	}
	for level, count := range perLayer {
		fmt.Printf("  layer %d: %d\n", level, count)
	}

	stats, err := doc.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("statistics: %w", err)
	}
	fmt.Printf("file size:  %d bytes\n", stats.FileSizeBytes)

	return nil
}
