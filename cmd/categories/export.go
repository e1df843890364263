package categories

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jianji/ledger-assistant/cmd/root"
	"jianji/ledger-assistant/internal/category"
	"jianji/ledger-assistant/internal/models"
)

// catalogueFile is the YAML shape used for category backup and restore.
type catalogueFile struct {
	Expense []string `yaml:"expense"`
	Income  []string `yaml:"income"`
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the ledger's categories to a YAML file",
	Args:  cobra.ExactArgs(1),
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

		var file catalogueFile
		for _, cat := range expanded {
			if cat.Type == models.TypeIncome {
				file.Income = append(file.Income, cat.Name)
			} else {
				file.Expense = append(file.Expense, cat.Name)
			}
		}

		data, err := yaml.Marshal(&file)
		if err != nil {
			return fmt.Errorf("failed to marshal categories: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[0], err)
		}
		fmt.Printf("已导出 %d 个分类到 %s\n", len(expanded), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add categories from a YAML file",
	Long: `Import reads a YAML file with expense and income label lists and adds
each label to the ledger. Labels that already exist are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		var file catalogueFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		svc, closeStore, err := service()
		if err != nil {
			return err
		}
		defer closeStore()

		userID := root.CurrentUser().ID
		added := 0
		importLabels := func(typ models.TransactionType, labels []string) error {
			for _, label := range labels {
				err := svc.Add(cmd.Context(), root.LedgerID, userID, typ, label)
				if errors.Is(err, category.ErrDuplicateCategory) {
					continue
				}
				if err != nil {
					return err
				}
				added++
			}
			return nil
		}
		if err := importLabels(models.TypeExpense, file.Expense); err != nil {
			return err
		}
		if err := importLabels(models.TypeIncome, file.Income); err != nil {
			return err
		}
		fmt.Printf("已导入 %d 个分类\n", added)
		return nil
	},
}

func init() {
	Cmd.AddCommand(exportCmd)
	Cmd.AddCommand(importCmd)
}
