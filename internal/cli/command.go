package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json"
	"github.com/viant/structload/internal/config"
	"github.com/viant/structload/internal/typedef"
)

// NewCommand creates structload root command
func NewCommand(cfg *config.Config, logger zerolog.Logger, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "structload",
		Short:         "Reflection driven JSON loader",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newLoadCommand(cfg, logger, out))
	return rootCmd
}

func newLoadCommand(cfg *config.Config, logger zerolog.Logger, out io.Writer) *cobra.Command {
	var (
		typesPath string
		typeName  string
		inputPath string
		selectors []string
		watch     bool
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "load --types <types.yaml> --type <name> --input <doc.json>",
		Short: "Load a JSON document into a type defined in YAML",
		Long: `Loads a JSON document into an instance of a type declared in a YAML type definitions file.

Every reported outcome is logged with its path, the combined result and selected values are printed.`,
		Example: `  structload load --types scene.yaml --type Scene --input scene.json
  structload load --types scene.yaml --type Scene --input scene.json --select 'shapes[0].r' --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := typedef.Load(typesPath, structload.NewRegistry())
			if err != nil {
				return err
			}
			options := cfg.Options()
			if strict {
				options = append(options, json.WithMode(json.ModeStrict))
			}
			loader, err := NewLoader(schema, typeName, inputPath, selectors, options, logger, out)
			if err != nil {
				return err
			}
			if err = loader.Load(); err != nil && !watch {
				return err
			}
			if !watch {
				return nil
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return loader.Watch(ctx)
		},
	}
	cmd.Flags().StringVar(&typesPath, "types", "", "YAML type definitions file (required)")
	cmd.Flags().StringVar(&typeName, "type", "", "name of the type to load (required)")
	cmd.Flags().StringVar(&inputPath, "input", "", "JSON document to load (required)")
	cmd.Flags().StringSliceVar(&selectors, "select", nil, "element paths to print, i.e. shapes[0].r")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the document whenever it changes")
	cmd.Flags().BoolVar(&strict, "strict", cfg.Strict, "reject unknown fields, inexact numbers and nulls")
	for _, name := range []string{"types", "type", "input"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %v flag required: %v", name, err))
		}
	}
	return cmd
}
