package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

var (
	ingestClear bool
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Ingest course documents from a directory",
	Long: `Loads every supported course document (.txt, .pdf, .docx) in a directory
into the catalog and search index.

Courses already in the catalog are skipped. Use --clear to remove everything
first, and --watch to keep re-ingesting files as they change.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "remove all courses before ingesting")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "watch the directory for changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	ctx := commandContext(cmd)

	result, err := ingestService.IngestDirectory(ctx, dir, ingestClear)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %d course(s), %d chunk(s); skipped %d, removed %d.\n",
		result.Courses, result.Chunks, result.Skipped, result.Removed)

	if !ingestWatch {
		return nil
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)...\n", dir)
	err = ingestService.Watch(ctx, dir, func(ev driving.IngestEvent) {
		uri := ev.Change.Document.URI
		if ev.Err != nil {
			cmd.PrintErrf("  %s %s: %v\n", ev.Change.Type, uri, ev.Err)
			return
		}
		if ev.Result != nil {
			cmd.Printf("  %s %s: %d course(s), %d chunk(s), %d removed\n",
				ev.Change.Type, uri, ev.Result.Courses, ev.Result.Chunks, ev.Result.Removed)
			return
		}
		cmd.Printf("  %s %s\n", ev.Change.Type, uri)
	})
	if err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
