package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imgdoc2/imgdoc2go"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

var getTileCmd = &cobra.Command{
	Use:   "get-tile <pk>",
	Short: "Print a tile's info and optionally write its payload to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetTile,
}

func init() {
	getTileCmd.Flags().String("out", "", "write the tile's payload bytes to this path")
	rootCmd.AddCommand(getTileCmd)
}

func runGetTile(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}
	var pk int64
	if _, err := fmt.Sscanf(args[0], "%d", &pk); err != nil {
		return fmt.Errorf("invalid pk %q: %w", args[0], err)
	}
	out, _ := cmd.Flags().GetString("out")

	ctx := context.Background()
	doc, err := imgdoc2go.Open(ctx, path, imgdoc2go.OpenExistingOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	info, err := doc.ReadTileInfo(ctx, pk, model.TileInfoQueryOptions{
		Coordinate: true,
		Position:   true,
		BlobInfo:   true,
	})
	if err != nil {
		return fmt.Errorf("read tile info: %w", err)
	}

	fmt.Printf("pyramid level: %d\n", info.Info.PyramidLevel)
	if doc.Axes() == 3 {
		fmt.Printf("position: x=%g y=%g z=%g w=%g h=%g d=%g\n",
			info.Position3d.PosX, info.Position3d.PosY, info.Position3d.PosZ,
			info.Position3d.Width, info.Position3d.Height, info.Position3d.Depth)
	} else {
		fmt.Printf("position: x=%g y=%g w=%g h=%g\n",
			info.Position.PosX, info.Position.PosY, info.Position.Width, info.Position.Height)
	}
	for _, d := range info.Coordinate.Dimensions() {
		v, _ := info.Coordinate.Get(d)
		fmt.Printf("  %s=%d\n", d, v)
	}
	if info.HasBlobInfo {
		fmt.Printf("blob: %dx%dx%d pixel-type=%d data-type=%d\n",
			info.BlobInfo.PixelWidth, info.BlobInfo.PixelHeight, info.BlobInfo.PixelDepth,
			info.BlobInfo.PixelType, info.BlobInfo.DataType)
	}

	if out != "" {
		data, err := doc.ReadTileData(ctx, pk)
		if err != nil {
			return fmt.Errorf("read tile data: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	}

	return nil
}
