package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "arena",
		Short:        "Run multi-model debates from the terminal",
		Long:         "Seats a moderator and two teams of up to four model-backed debaters, runs the debate phase by phase and prints every speech as it lands.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("catalog", "", "YAML catalogue replacing the embedded one (overrides ARENA_CATALOG_FILE)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newModelsCmd())
	root.AddCommand(newPersonasCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
