package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "village-forge",
		Short:         "Compose Dungeon-Master prompts and generate fictional villages",
		Long:          "Village Forge builds Llama 2 chat prompts from village settings and sends them to a text-generation server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newDatasetCmd())
	rootCmd.AddCommand(newComposeCmd())
	rootCmd.AddCommand(newImagePromptsCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
