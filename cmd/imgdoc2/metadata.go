package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/imgdoc2/imgdoc2go"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Read and write a document's metadata forest",
	Long: `Manage the document-metadata forest: a tree of named nodes, each
holding a null/int32/double/string value, addressed either by primary key
or by a "/"-delimited path.`,
}

var metadataGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print the value at a metadata path",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetadataGet,
}

var metadataSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Create or update the node at a metadata path",
	Long: `Create or update the node at a metadata path.

By default, missing intermediate path segments and the terminal node are
both created as needed. Use --create-path=false / --create-node=false to
require they already exist.`,
	Args: cobra.ExactArgs(2),
	RunE: runMetadataSet,
}

var metadataEnumerateCmd = &cobra.Command{
	Use:     "enumerate [path]",
	Aliases: []string{"ls"},
	Short:   "List the children of a metadata node",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runMetadataEnumerate,
}

var metadataDeleteCmd = &cobra.Command{
	Use:     "delete <path>",
	Aliases: []string{"rm"},
	Short:   "Delete the node at a metadata path",
	Args:    cobra.ExactArgs(1),
	RunE:    runMetadataDelete,
}

func init() {
	metadataSetCmd.Flags().Bool("create-path", true, "create missing intermediate path segments")
	metadataSetCmd.Flags().Bool("create-node", true, "create the terminal node if it doesn't exist")
	metadataSetCmd.Flags().String("type", "", "value type: null, int32, double, string (default: string)")

	metadataEnumerateCmd.Flags().Bool("recursive", false, "recurse into the entire subtree rather than direct children only")

	metadataDeleteCmd.Flags().Bool("recursive", false, "delete the node's entire subtree")

	metadataCmd.AddCommand(metadataGetCmd, metadataSetCmd, metadataEnumerateCmd, metadataDeleteCmd)
	rootCmd.AddCommand(metadataCmd)
}

func runMetadataGet(cmd *cobra.Command, args []string) error {
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

	item, err := doc.GetItemForPath(ctx, args[0], model.MetadataFlagName|model.MetadataFlagTypeAndValue)
	if err != nil {
		return fmt.Errorf("get %s: %w", args[0], err)
	}
	fmt.Println(formatMetadataValue(item))
	return nil
}

func formatMetadataValue(item model.MetadataItem) string {
	switch {
	case item.Value.IsInt32():
		return strconv.FormatInt(int64(item.Value.Int32()), 10)
	case item.Value.IsDouble():
		return strconv.FormatFloat(item.Value.Double(), 'g', -1, 64)
	case item.Value.IsString():
		return item.Value.String()
	default:
		return "<null>"
	}
}

func runMetadataSet(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}
	createPath, _ := cmd.Flags().GetBool("create-path")
	createNode, _ := cmd.Flags().GetBool("create-node")
	typeFlag, _ := cmd.Flags().GetString("type")

	typ, value, err := parseMetadataValue(typeFlag, args[1])
	if err != nil {
		return err
	}

	ctx := context.Background()
	doc, err := imgdoc2go.Open(ctx, path, imgdoc2go.OpenExistingOptions{})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	pk, err := doc.UpdateOrCreateItemForPath(ctx, createPath, createNode, args[0], typ, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", args[0], err)
	}
	fmt.Println(pk)
	return nil
}

func parseMetadataValue(typeFlag, raw string) (model.MetadataType, model.MetadataValue, error) {
	switch typeFlag {
	case "null":
		return model.MetadataTypeNull, model.NoValue, nil
	case "int32":
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return 0, model.MetadataValue{}, err
		}
		return model.MetadataTypeInt32, model.Int32Value(int32(v)), nil
	case "double":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, model.MetadataValue{}, err
		}
		return model.MetadataTypeDouble, model.DoubleValue(v), nil
	case "string", "":
		return model.MetadataTypeDefault, model.StringValue(raw), nil
	default:
		return 0, model.MetadataValue{}, fmt.Errorf("invalid --type %q, want null|int32|double|string", typeFlag)
	}
}

func runMetadataEnumerate(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}
	recursive, _ := cmd.Flags().GetBool("recursive")
	parentPath := ""
	if len(args) == 1 {
		parentPath = args[0]
	}

	ctx := context.Background()
	doc, err := imgdoc2go.Open(ctx, path, imgdoc2go.OpenExistingOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	flags := model.MetadataFlagName | model.MetadataFlagTypeAndValue | model.MetadataFlagCompletePath
	fn := func(pk int64, item model.MetadataItem) bool {
		fmt.Printf("%d\t%s\t%s\n", pk, item.CompletePath, formatMetadataValue(item))
		return true
	}

	return doc.EnumerateItemsForPath(ctx, parentPath, recursive, flags, fn)
}

func runMetadataDelete(cmd *cobra.Command, args []string) error {
	path, err := documentPath(cmd)
	if err != nil {
		return err
	}
	recursive, _ := cmd.Flags().GetBool("recursive")

	ctx := context.Background()
	doc, err := imgdoc2go.Open(ctx, path, imgdoc2go.OpenExistingOptions{})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	n, err := doc.DeleteItemForPath(ctx, args[0], recursive)
	if err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	fmt.Printf("deleted %d node(s)\n", n)
	return nil
}
