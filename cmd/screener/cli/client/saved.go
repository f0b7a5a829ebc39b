package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// terminalPrompt asks for confirmation on the command line.
type terminalPrompt struct {
	in  io.Reader
	out io.Writer
	yes bool
}

func (p terminalPrompt) Confirm(ctx context.Context, message string) (bool, error) {
	if p.yes {
		return true, nil
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", message)
	answer, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func NewSavedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved queries",
		Long:  "List, save, delete and load named snapshots of queries.",
	}

	cmd.AddCommand(newSavedListCommand())
	cmd.AddCommand(newSavedSaveCommand())
	cmd.AddCommand(newSavedDeleteCommand())
	cmd.AddCommand(newSavedLoadCommand())

	return cmd
}

func newSavedListCommand() *cobra.Command {
	var recent int
	var raw bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List saved queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := openSession(cmd.Context(), "", false)
			if err != nil {
				return err
			}
			defer session.Close()

			queries, err := session.Explorer.SavedQueries(cmd.Context())
			if recent > 0 {
				queries, err = session.Explorer.RecentQueries(cmd.Context(), recent)
			}
			if err != nil {
				return err
			}
			return printMarkdown(cmd.OutOrStdout(), savedMarkdown(queries), raw)
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 0, "only show the first n saved queries")
	cmd.Flags().BoolVar(&raw, "raw", false, "print plain markdown instead of rendering it")

	return cmd
}

func newSavedSaveCommand() *cobra.Command {
	var flags viewFlags
	var name, description string
	var tags []string

	cmd := &cobra.Command{
		Use:   "save [location]",
		Short: "Save the current query",
		Long: `Apply the location and the flags and store the resulting view as a
named snapshot. Without --name a name is derived from the filters.`,
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

			snapshot, err := session.Explorer.Snapshot()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				name = session.Explorer.PrepareSave(snapshot).Name
			}

			saved, err := session.Explorer.SaveCurrent(cmd.Context(), name, description, tags)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved '%s' as %s (%d of %d records)\n",
				saved.Name, saved.ID, saved.ResultCount, saved.TotalCount)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "name of the saved query")
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag from a1 to a30, repeatable")

	return cmd
}

func newSavedDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := openSession(cmd.Context(), "", false)
			if err != nil {
				return err
			}
			defer session.Close()

			prompt := terminalPrompt{in: cmd.InOrStdin(), out: cmd.OutOrStdout(), yes: yes}
			deleted, err := session.Explorer.DeleteQuery(cmd.Context(), args[0], prompt)
			if err != nil {
				return err
			}
			if deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")

	return cmd
}

func newSavedLoadCommand() *cobra.Command {
	var limit int
	var raw bool

	cmd := &cobra.Command{
		Use:   "load <id>",
		Short: "Run a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := openSession(cmd.Context(), "", true)
			if err != nil {
				return err
			}
			defer session.Close()

			location, err := session.Explorer.LoadQuery(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			page, err := session.Explorer.Result()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", location)
			return printMarkdown(cmd.OutOrStdout(), resultMarkdown(page, limit), raw)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum rows to print (0 prints all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print plain markdown instead of rendering it")

	return cmd
}
