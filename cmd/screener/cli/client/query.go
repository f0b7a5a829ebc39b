package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewQueryCommand() *cobra.Command {
	var flags viewFlags
	var limit int
	var raw bool

	cmd := &cobra.Command{
		Use:   "query [location]",
		Short: "Filter and sort the record set",
		Long: `Fetch the record set, apply the filters of the location and the flags
and print the result as a table.

The location is an address-bar string like "/query-result?Name=tata".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := ""
			if len(args) > 0 {
				location = args[0]
			}

			session, address, err := openSession(cmd.Context(), location, true)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := flags.apply(session.Explorer); err != nil {
				return err
			}

			page, err := session.Explorer.Result()
			if err != nil {
				return err
			}

			if err := printMarkdown(cmd.OutOrStdout(), resultMarkdown(page, limit), raw); err != nil {
				return err
			}
			if address.Current() != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", address.Current())
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum rows to print (0 prints all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print plain markdown instead of rendering it")

	return cmd
}
