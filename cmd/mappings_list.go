package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var mappingsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all principal and access mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := buildAdminStore(cmd)
		if err != nil {
			return err
		}

		log.Debug().Msg("Scanning mappings table...")
		mappings, err := store.ListMappings(cmd.Context())
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Kind", "External ID", "Principal", "Account", "Permission Set"})

		for _, m := range mappings {
			t.AppendRow(table.Row{
				m.Kind,
				bold(m.External),
				m.PrincipalID,
				m.AccountID,
				faint(truncate(m.PermissionSetArn, 64)),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	mappingsCmd.AddCommand(mappingsListCmd)
}
