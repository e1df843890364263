// Package ledgers manages ledger creation, listing, and sharing.
package ledgers

import (
	"fmt"

	"github.com/spf13/cobra"

	"jianji/ledger-assistant/cmd/root"
	"jianji/ledger-assistant/internal/models"
)

// Cmd represents the ledgers command.
var Cmd = &cobra.Command{
	Use:   "ledgers",
	Short: "Create, list, and share ledgers",
}

var (
	descriptionFlag string
	permissionFlag  string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a ledger with default categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := root.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ledger, err := st.CreateLedger(cmd.Context(), root.CurrentUser().ID, args[0], descriptionFlag)
		if err != nil {
			return err
		}
		fmt.Printf("已创建账本「%s」，id: %s\n", ledger.Name, ledger.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your ledgers",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := root.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ledgers, err := st.LedgersByUser(cmd.Context(), root.CurrentUser().ID)
		if err != nil {
			return err
		}
		for _, l := range ledgers {
			fmt.Printf("%s\t%s\t%s\n", l.ID, l.Name, l.Description)
		}
		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <user-id>",
	Short: "Grant another user access to the ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if root.LedgerID == "" {
			return fmt.Errorf("--ledger is required")
		}
		perm := models.Permission(permissionFlag)
		switch perm {
		case models.PermissionEditAdd, models.PermissionAddOnly, models.PermissionViewOnly:
		default:
			return fmt.Errorf("invalid permission %q", permissionFlag)
		}

		st, err := root.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.AddMember(cmd.Context(), root.LedgerID, args[0], perm); err != nil {
			return err
		}
		fmt.Printf("已授予用户 %s %s 权限\n", args[0], perm)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&descriptionFlag, "description", "d", "", "Ledger description")
	shareCmd.Flags().StringVarP(&permissionFlag, "permission", "p", string(models.PermissionAddOnly), "Permission level (edit_add|add_only|view_only)")
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(shareCmd)
}
