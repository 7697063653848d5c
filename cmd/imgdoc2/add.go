package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imgdoc2/imgdoc2go"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

var addTileCmd = &cobra.Command{
	Use:   "add-tile",
	Short: "Add a 2-D tile to a document",
	Long: `Add a tile to a 2-axis document.

Examples:
  imgdoc2 add-tile --file slide.imgdoc2 --coord C=0 --coord T=3 \
    --pos-x 0 --pos-y 0 --width 512 --height 512 --pyramid-level 0 \
    --data tile.bin --pixel-width 512 --pixel-height 512`,
	RunE: runAddTile,
}

var addBrickCmd = &cobra.Command{
	Use:   "add-brick",
	Short: "Add a 3-D brick to a document",
	Long: `Add a brick to a 3-axis document.

Examples:
  imgdoc2 add-brick --file volume.imgdoc2 --coord C=0 \
    --pos-x 0 --pos-y 0 --pos-z 0 --width 64 --height 64 --depth 64 \
    --pyramid-level 0 --data brick.bin --pixel-width 64 --pixel-height 64 --pixel-depth 64`,
	RunE: runAddBrick,
}

func init() {
	for _, c := range []*cobra.Command{addTileCmd, addBrickCmd} {
		c.Flags().StringArray("coord", nil, "dimension coordinate as DIM=VALUE, may be repeated")
		c.Flags().Float64("pos-x", 0, "logical X position")
		c.Flags().Float64("pos-y", 0, "logical Y position")
		c.Flags().Float64("width", 0, "logical width")
		c.Flags().Float64("height", 0, "logical height")
		c.Flags().Int32("pyramid-level", 0, "pyramid level")
		c.Flags().String("data", "", "path to a file holding the raw tile payload; omit for no payload")
		c.Flags().Uint32("pixel-width", 0, "payload width in pixels")
		c.Flags().Uint32("pixel-height", 0, "payload height in pixels")
		c.Flags().Uint("pixel-type", 0, "payload pixel-type tag (0-255, meaningful only to an external codec)")
		c.Flags().Uint("data-type", 0, "payload DataType tag: 0=none 1=uncompressed-bitmap 2=jpgxr 3=zstd0 4=zstd1 5=uncompressed-brick")
	}
	addBrickCmd.Flags().Float64("pos-z", 0, "logical Z position")
	addBrickCmd.Flags().Float64("depth", 0, "logical depth")
	addBrickCmd.Flags().Uint32("pixel-depth", 0, "payload depth in pixels")

	rootCmd.AddCommand(addTileCmd)
	rootCmd.AddCommand(addBrickCmd)
}

func parseCoordinateFlag(cmd *cobra.Command) (model.TileCoordinate, error) {
	raw, _ := cmd.Flags().GetStringArray("coord")
	var coord model.TileCoordinate
	for _, kv := range raw {
		dim, value, err := splitCoordKV(kv)
		if err != nil {
			return model.TileCoordinate{}, err
		}
		if err := coord.Set(dim, value); err != nil {
			return model.TileCoordinate{}, err
		}
	}
	return coord, nil
}

func splitCoordKV(kv string) (model.Dimension, int32, error) {
	i := -1
	for j, r := range kv {
		if r == '=' {
			i = j
			break
		}
	}
	if i < 0 {
		return 0, 0, fmt.Errorf("invalid --coord %q, want DIM=VALUE", kv)
	}
	dim, err := model.ParseDimension(kv[:i])
	if err != nil {
		return 0, 0, err
	}
	var value int32
	if _, err := fmt.Sscanf(kv[i+1:], "%d", &value); err != nil {
		return 0, 0, fmt.Errorf("invalid value in --coord %q: %w", kv, err)
	}
	return dim, value, nil
}

func readPayload(cmd *cobra.Command) ([]byte, error) {
	path, _ := cmd.Flags().GetString("data")
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func blobInfoFromFlags(cmd *cobra.Command, depth uint32) model.TileBlobInfo {
	w, _ := cmd.Flags().GetUint32("pixel-width")
	h, _ := cmd.Flags().GetUint32("pixel-height")
	pixelType, _ := cmd.Flags().GetUint("pixel-type")
	dataType, _ := cmd.Flags().GetUint("data-type")
	return model.TileBlobInfo{
		PixelWidth:  w,
		PixelHeight: h,
		PixelDepth:  depth,
		PixelType:   model.PixelType(pixelType),
		DataType:    model.DataType(dataType),
	}
}

func runAddTile(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}
	coord, err := parseCoordinateFlag(cmd)
	if err != nil {
		return err
	}
	data, err := readPayload(cmd)
	if err != nil {
		return err
	}

	posX, _ := cmd.Flags().GetFloat64("pos-x")
	posY, _ := cmd.Flags().GetFloat64("pos-y")
	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")
	pyramidLevel, _ := cmd.Flags().GetInt32("pyramid-level")

	ctx := context.Background()
	doc, err := imgdoc2go.Open(ctx, path, imgdoc2go.OpenExistingOptions{})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	pk, err := doc.AddTile(ctx, model.AddTileRequest{
		Coordinate: coord,
		Position:   model.LogicalPosition{PosX: posX, PosY: posY, Width: width, Height: height},
		Info:       model.TileBaseInfo{PyramidLevel: pyramidLevel},
		BlobInfo:   blobInfoFromFlags(cmd, 0),
		Data:       data,
	})
	if err != nil {
		return fmt.Errorf("add tile: %w", err)
	}

	fmt.Println(pk)
	return nil
}

func runAddBrick(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}
	coord, err := parseCoordinateFlag(cmd)
	if err != nil {
		return err
	}
	data, err := readPayload(cmd)
	if err != nil {
		return err
	}

	posX, _ := cmd.Flags().GetFloat64("pos-x")
	posY, _ := cmd.Flags().GetFloat64("pos-y")
	posZ, _ := cmd.Flags().GetFloat64("pos-z")
	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")
	depth, _ := cmd.Flags().GetFloat64("depth")
	pyramidLevel, _ := cmd.Flags().GetInt32("pyramid-level")
	pixelDepth, _ := cmd.Flags().GetUint32("pixel-depth")

	ctx := context.Background()
	doc, err := imgdoc2go.Open(ctx, path, imgdoc2go.OpenExistingOptions{})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	pk, err := doc.AddBrick(ctx, model.AddBrickRequest{
		Coordinate: coord,
		Position: model.LogicalPosition3d{
			PosX: posX, PosY: posY, PosZ: posZ,
			Width: width, Height: height, Depth: depth,
		},
		Info:     model.BrickBaseInfo{PyramidLevel: pyramidLevel},
		BlobInfo: blobInfoFromFlags(cmd, pixelDepth),
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("add brick: %w", err)
	}

	fmt.Println(pk)
	return nil
}
