// Package categories manages a ledger's category labels.
package categories

import (
	"fmt"

	"github.com/spf13/cobra"

	"jianji/ledger-assistant/cmd/root"
	"jianji/ledger-assistant/internal/category"
	"jianji/ledger-assistant/internal/models"
)

// Cmd represents the categories command.
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List and edit a ledger's categories",
}

var typeFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the ledger's categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := service()
		if err != nil {
			return err
		}
		defer closeStore()

		expanded, err := svc.Expanded(cmd.Context(), root.LedgerID)
		if err != nil {
			return err
		}
		for _, cat := range expanded {
			fmt.Printf("%s\t%s\n", cat.Type.Label(), cat.Name)
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Add a category label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := service()
		if err != nil {
			return err
		}
		defer closeStore()

		typ := models.TransactionType(typeFlag)
		if err := svc.Add(cmd.Context(), root.LedgerID, root.CurrentUser().ID, typ, args[0]); err != nil {
			return err
		}
		fmt.Printf("已添加%s分类：%s\n", typ.Label(), args[0])
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a category label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := service()
		if err != nil {
			return err
		}
		defer closeStore()

		entry, err := find(cmd, svc, args[0])
		if err != nil {
			return err
		}
		if err := svc.Remove(cmd.Context(), entry); err != nil {
			return err
		}
		fmt.Printf("已删除分类：%s\n", args[0])
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a category label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := service()
		if err != nil {
			return err
		}
		defer closeStore()

		entry, err := find(cmd, svc, args[0])
		if err != nil {
			return err
		}
		if err := svc.Rename(cmd.Context(), entry, args[1]); err != nil {
			return err
		}
		fmt.Printf("已将分类「%s」改名为「%s」\n", args[0], args[1])
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().StringVarP(&typeFlag, "type", "t", "expense", "Category type (income|expense)")
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(renameCmd)
}

func service() (*category.Service, func(), error) {
	if root.LedgerID == "" {
		return nil, nil, fmt.Errorf("--ledger is required")
	}
	st, err := root.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	return category.NewService(st, root.Logger()), func() { st.Close() }, nil
}

// find resolves a label of the flagged type to its expanded entry.
func find(cmd *cobra.Command, svc *category.Service, label string) (models.ExpandedCategory, error) {
	expanded, err := svc.Expanded(cmd.Context(), root.LedgerID)
	if err != nil {
		return models.ExpandedCategory{}, err
	}
	typ := models.TransactionType(typeFlag)
	for _, cat := range expanded {
		if cat.Type == typ && cat.Name == label {
			return cat, nil
		}
	}
	return models.ExpandedCategory{}, category.ErrNotFound
}
