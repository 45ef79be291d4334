package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joestump/village-forge/internal/prompt"
)

func newComposeCmd() *cobra.Command {
	var (
		f         prompt.Fields
		parse     bool
		blankNull bool
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Print the composed prompt for the given settings",
		Long: "Print the composed prompt for the given settings. With --parse, read a " +
			"system message or composed prompt from stdin and print its settings as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !parse {
				fmt.Fprintln(cmd.OutOrStdout(), prompt.Compose(f))
				return nil
			}

			in, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			fields := prompt.Parse(string(in))
			if blankNull {
				fields = fields.Without(prompt.IsNullSentinel)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fields)
		},
	}
	cmd.Flags().StringVar(&f.Choice, "choice", "", "what the DM should produce")
	cmd.Flags().StringVar(&f.Biome, "biome", "", "biome setting")
	cmd.Flags().StringVar(&f.Features, "features", "", "features setting")
	cmd.Flags().StringVar(&f.Constriction, "constriction", "", "constriction setting")
	cmd.Flags().StringVar(&f.TextStyle, "text-style", "", "text style setting")
	cmd.Flags().StringVar(&f.Message, "message", "", "user message")
	cmd.Flags().BoolVar(&parse, "parse", false, "parse stdin instead of composing")
	cmd.Flags().BoolVar(&blankNull, "blank-null", true, "with --parse, blank settings sent as \"- null\"")
	return cmd
}
