package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joestump/village-forge/internal/imageprompt"
)

func newImagePromptsCmd() *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "image-prompts [dir]",
		Short: "Derive image-generation requests from saved generation results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			files, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			for _, path := range files {
				responses, err := imageprompt.ResponsesFromFile(path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", path, err)
					continue
				}
				for _, r := range responses {
					if err := enc.Encode(struct {
						Source string `json:"source"`
						imageprompt.Request
					}{Source: filepath.Base(path), Request: imageprompt.NewRequest(r)}); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "*.json", "glob of result files inside dir")
	return cmd
}
