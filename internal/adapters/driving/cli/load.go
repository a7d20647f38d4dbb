package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/veldt-labs/ragkit/internal/adapters/driven/source/filesystem"
	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/logger"
)

var (
	loadCategory string
	loadWatch    bool
)

var loadCmd = &cobra.Command{
	Use:   "load [path...]",
	Short: "Load documents into the corpus",
	Long: `Loads text and markdown files from the given paths. Directories
are walked recursively. Reloading a path replaces its documents rather
than duplicating them.

With --watch, keeps running and re-ingests files as they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadCategory, "category", "", "category label applied to loaded documents")
	loadCmd.Flags().BoolVar(&loadWatch, "watch", false, "watch paths and re-ingest on change")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	ctx := cmd.Context()

	for _, path := range args {
		summary, err := loadPath(ctx, path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		printSummary(cmd, path, summary)
	}

	if loadWatch {
		return watchPaths(cmd, args)
	}
	return nil
}

// loadPath ingests one path, honouring the --category flag.
func loadPath(ctx context.Context, path string) (domain.LoadSummary, error) {
	if loadCategory == "" {
		return ingestService.LoadFromSource(ctx, path)
	}

	// Category is a load-time label, so fetch first and annotate.
	docs, err := filesystem.NewSource().Fetch(ctx, path)
	if err != nil {
		return domain.LoadSummary{}, err
	}
	for i := range docs {
		docs[i].Category = loadCategory
	}
	return ingestService.LoadText(ctx, docs)
}

// printSummary reports one ingestion run on stdout.
func printSummary(cmd *cobra.Command, path string, summary domain.LoadSummary) {
	cmd.Printf("%s: %d documents, %d passages", path, summary.Loaded, summary.Chunks)
	if len(summary.Failed) > 0 {
		cmd.Printf(", %d failed", len(summary.Failed))
	}
	cmd.Println()

	ids := make([]string, 0, len(summary.Failed))
	for id := range summary.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cmd.Printf("  failed %s: %v\n", id, summary.Failed[id])
	}
}

// watchPaths blocks and re-ingests files as they change, until
// interrupted.
func watchPaths(cmd *cobra.Command, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Println("Watching for changes (ctrl-c to stop)...")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !watchableFile(event.Name) {
				continue
			}
			logger.Debug("Change detected: %s", event.Name)
			summary, err := loadPath(ctx, event.Name)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				cmd.PrintErrf("reload %s: %v\n", event.Name, err)
				continue
			}
			printSummary(cmd, event.Name, summary)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrf("watch error: %v\n", err)
		}
	}
}

// watchableFile reports whether a changed path is a document we ingest.
func watchableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}
