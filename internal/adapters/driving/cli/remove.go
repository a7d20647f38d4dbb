package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

var removeCmd = &cobra.Command{
	Use:   "remove [document-id]",
	Short: "Remove a document and its passages from the corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var clearAll bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all documents from the corpus",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearAll, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(clearCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	id := args[0]
	if err := ingestService.Remove(cmd.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %q not found", id)
		}
		return fmt.Errorf("remove failed: %w", err)
	}

	cmd.Printf("Removed %s\n", id)
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if !clearAll {
		cmd.Print("Remove all documents? [y/N] ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response) //nolint:errcheck
		if response != "y" && response != "Y" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := ingestService.ClearAll(cmd.Context()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	cmd.Println("Corpus cleared.")
	return nil
}
