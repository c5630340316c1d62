package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var listJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a PDF document",
	Long: `Extracts text from a PDF, stores the original durably, and caches
the extracted text and chunks for later summarization and questions.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known documents",
	Long: `Lists documents from the object store and the local upload
directory, merged and deduplicated by filename.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [filename]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	doc, err := a.Content.Ingest(cmd.Context(), data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %s: %d pages, %d chunks\n", doc.Filename, len(doc.Pages), len(doc.Chunks))
	if doc.PresignedURL != "" {
		cmd.Printf("URL: %s\n", doc.PresignedURL)
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	entries, err := a.Catalog.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	for _, e := range entries {
		cmd.Printf("  %s (%d bytes", e.Filename, e.Size)
		if !e.LastModified.IsZero() {
			cmd.Printf(", modified %s", e.LastModified.Format("2006-01-02 15:04"))
		}
		cmd.Println(")")
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	if err := a.Content.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
