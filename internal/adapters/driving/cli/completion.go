package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperquery/paperquery/internal/core/domain"
)

var (
	completionModel string
	summaryLength   int
	locatorHint     string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [filename]",
	Short: "Summarize a document",
	Long: `Resolves the document's text and produces a bounded-length summary.
If the requested model fails, the remaining providers are tried in order.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

var askCmd = &cobra.Command{
	Use:   "ask [filename] [question]",
	Short: "Ask a question about a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runAsk,
}

func init() {
	summarizeCmd.Flags().StringVarP(&completionModel, "model", "m", "gpt-4", "preferred model")
	summarizeCmd.Flags().IntVar(&summaryLength, "max-length", 0, "maximum summary length in words")
	summarizeCmd.Flags().StringVar(&locatorHint, "url", "", "direct document URL to try before stored copies")

	askCmd.Flags().StringVarP(&completionModel, "model", "m", "gpt-4", "preferred model")
	askCmd.Flags().StringVar(&locatorHint, "url", "", "direct document URL to try before stored copies")

	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(askCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	result, err := a.Completions.Summarize(cmd.Context(), domain.SummaryRequest{
		Filename:    args[0],
		Model:       completionModel,
		MaxLength:   summaryLength,
		LocatorHint: locatorHint,
	})
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}

	printResult(cmd, result)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	result, err := a.Completions.Ask(cmd.Context(), domain.QuestionRequest{
		Filename:    args[0],
		Question:    args[1],
		Model:       completionModel,
		LocatorHint: locatorHint,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *domain.CompletionResult) {
	cmd.Println(result.Text)
	cmd.Println()
	cmd.Printf("Model: %s  Tokens: %d in / %d out  Cost: $%.4f\n",
		result.Model, result.InputTokens, result.OutputTokens, result.Cost)
}
