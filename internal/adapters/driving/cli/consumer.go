package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var consumerCmd = &cobra.Command{
	Use:   "consumer",
	Short: "Run the analytics stream consumer",
	Long: `Joins the analytics consumer group and processes completion events
into the analytics store until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runConsumer,
}

func init() {
	rootCmd.AddCommand(consumerCmd)
}

func runConsumer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	cmd.Println("Consumer running, press Ctrl+C to stop.")
	err = a.Consumer.Start(ctx)

	stats := a.Consumer.Stats()
	cmd.Printf("Processed: %d (summaries %d, questions %d)\n",
		stats.Processed, stats.Summaries, stats.Questions)
	cmd.Printf("Skipped: %d  Errors: %d  Connection errors: %d\n",
		stats.Skipped, stats.Errors, stats.ConnectionErrors)
	if stats.LastError != "" {
		cmd.Printf("Last error: %s\n", stats.LastError)
	}

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("consumer failed: %w", err)
	}
	return nil
}
