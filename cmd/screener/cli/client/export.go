package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwantia/screener/pkg/query"
	"github.com/spf13/cobra"
)

// fileWriter saves downloads into a directory.
type fileWriter struct {
	dir  string
	path string
}

func (f *fileWriter) Download(ctx context.Context, file query.ExportFile) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f.path = filepath.Join(f.dir, file.Name)
	return os.WriteFile(f.path, file.Content, 0644)
}

func NewExportCommand() *cobra.Command {
	var flags viewFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export [location]",
		Short: "Export the filtered record set as CSV",
		Long: `Fetch the record set, apply the filters of the location and the flags
and write the result to stock-query-results-<date>.csv.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := ""
			if len(args) > 0 {
				location = args[0]
			}

			session, _, err := openSession(cmd.Context(), location, true)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := flags.apply(session.Explorer); err != nil {
				return err
			}

			writer := &fileWriter{dir: output}
			if _, err := session.Explorer.Export(cmd.Context(), writer); err != nil {
				if errors.Is(err, query.ErrNothingToExport) {
					cmd.Println("No data to export")
					return nil
				}
				return err
			}

			cmd.Printf("Exported to %s\n", writer.path)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", ".", "output directory")

	return cmd
}
