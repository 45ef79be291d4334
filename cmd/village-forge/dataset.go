package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joestump/village-forge/internal/village"
)

func newDatasetCmd() *cobra.Command {
	var (
		count     int
		outputDir string
		catalog   string
	)
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Write a random instruction-tuning dataset of village descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := village.LoadCatalog(catalog)
			if err != nil {
				return err
			}
			records := village.NewGenerator(c, nil).DatasetRecords(count)

			name := "village_data.json" + time.Now().Format("20060102_150405")
			path := filepath.Join(outputDir, name)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create dataset file: %w", err)
			}
			if err := village.WriteDataset(f, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), path)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 100, "number of records")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for the dataset file")
	cmd.Flags().StringVar(&catalog, "catalog", "", "YAML catalog overriding the built-in tables")
	return cmd
}
