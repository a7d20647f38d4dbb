package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

var (
	askTopK          int
	askMinSimilarity float64
	askCategory      string
	askMaxContext    int
	askJSON          bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the loaded corpus",
	Long: `Retrieves the passages most similar to the question and, when a
language model is configured, generates an answer grounded in them.

When no passage meets the similarity threshold, the best-effort context
is shown without a generated answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve")
	askCmd.Flags().Float64Var(&askMinSimilarity, "min-similarity", 0, "similarity threshold for a genuine match (-1 accepts everything)")
	askCmd.Flags().StringVar(&askCategory, "category", "", "restrict retrieval to one category")
	askCmd.Flags().IntVar(&askMaxContext, "max-context", 0, "context character budget")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	// Config supplies retrieval parameters only when the flag was not
	// given, so an explicit --min-similarity=0 survives to the service.
	opts := domain.QueryOptions{
		TopK:             appConfig.Retrieval.TopK,
		MinSimilarity:    appConfig.Retrieval.MinSimilarity,
		Category:         askCategory,
		MaxContextLength: appConfig.Retrieval.MaxContextLength,
	}
	if cmd.Flags().Changed("top-k") {
		opts.TopK = askTopK
	}
	if cmd.Flags().Changed("min-similarity") {
		opts.MinSimilarity = askMinSimilarity
	}
	if cmd.Flags().Changed("max-context") {
		opts.MaxContextLength = askMaxContext
	}

	answer, err := askService.Ask(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswerText(cmd, answer)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer domain.Answer) {
	if !answer.Success {
		cmd.Println("No sufficiently relevant passages found.")
		if answer.Context != "" {
			cmd.Println()
			cmd.Println("Closest passages:")
			cmd.Println(indent(answer.Context))
		}
		return
	}

	if answer.Text != "" {
		cmd.Println(answer.Text)
	} else {
		cmd.Println("Retrieved context (no language model configured):")
		cmd.Println(indent(answer.Context))
	}

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, src.DocumentID, src.PassageOrdinal, src.Similarity)
			if src.ExternalLink != "" {
				cmd.Printf("      %s\n", src.ExternalLink)
			}
		}
	}
}

// indent prefixes every line with two spaces for display.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
