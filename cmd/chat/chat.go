// Package chat implements the interactive recording conversation.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"jianji/ledger-assistant/cmd/root"
	"jianji/ledger-assistant/internal/category"
	"jianji/ledger-assistant/internal/chat"
	"jianji/ledger-assistant/internal/models"
)

// Cmd represents the chat command.
var Cmd = &cobra.Command{
	Use:   "chat",
	Short: "Record transactions conversationally",
	Long: `Chat starts an interactive session on a ledger. Describe income or
expenses in natural language; each recognized transaction is shown for
editing and only persisted after you confirm it.`,
	RunE: chatFunc,
}

func chatFunc(cmd *cobra.Command, args []string) error {
	if root.LedgerID == "" {
		return fmt.Errorf("--ledger is required")
	}

	st, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	user := root.CurrentUser()
	log := root.Logger()

	categories := category.NewService(st, log)
	session := chat.NewSession(st, root.NewAssistantParser(ctx), root.LedgerID, user, root.Cfg.AI.HistoryWindow, log)

	fmt.Println("输入收支描述开始记账，例如：今天吃饭花了50块。输入 exit 退出。")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		expanded, err := categories.Expanded(ctx, root.LedgerID)
		if err != nil {
			log.WithError(err).Error("Failed to load categories")
			continue
		}

		// The remote parse has no timeout of its own; the deadline lives here
		// at the transport boundary.
		sendCtx := ctx
		cancel := context.CancelFunc(func() {})
		if root.Cfg.AI.Enabled {
			sendCtx, cancel = context.WithTimeout(ctx, time.Duration(root.Cfg.AI.TimeoutSeconds)*time.Second)
		}
		outcome, err := session.Send(sendCtx, input, expanded)
		cancel()
		if errors.Is(err, chat.ErrSendInFlight) {
			fmt.Println("上一条还在处理中，请稍候。")
			continue
		}
		if errors.Is(err, chat.ErrNoRecordPermission) {
			fmt.Println("你在这个账本中没有记账权限。")
			continue
		}
		if err != nil {
			log.WithError(err).Error("Send failed")
			continue
		}

		fmt.Println(outcome.Reply)
		if outcome.Workflow != nil {
			if err := runConfirmation(ctx, scanner, st, outcome.Workflow, expanded, root.LedgerID, user.ID); err != nil {
				log.WithError(err).Error("Confirmation failed")
			}
		}
	}
}

// runConfirmation loops over the tentative transaction until the user
// confirms or cancels it.
func runConfirmation(ctx context.Context, scanner *bufio.Scanner, store chat.TransactionCreator, w *chat.Workflow, categories []models.ExpandedCategory, ledgerID, userID string) error {
	for {
		printDraft(w)
		fmt.Print("确认(y) / 取消(n) / 改金额(a 金额) / 改分类(c 名称) / 改日期(d YYYY-MM-DD) / 改类型(t income|expense) / 改备注(r 备注): ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch cmd {
		case "y":
			_, err = w.Confirm(ctx, store, ledgerID, userID)
		case "n":
			if err := w.Cancel(); err == nil {
				fmt.Println("已取消。")
				return nil
			}
		case "a":
			var amount decimal.Decimal
			amount, err = decimal.NewFromString(arg)
			if err == nil {
				err = w.SetAmount(amount)
			}
		case "c":
			err = w.SetCategory(findCategory(arg, categories))
		case "d":
			err = w.SetDate(arg)
		case "t":
			err = w.SetType(models.TransactionType(arg))
		case "r":
			err = w.SetNote(arg)
		default:
			fmt.Println("无法识别的操作。")
			continue
		}
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		if w.State() == chat.StateConfirmed {
			fmt.Println("已保存。")
			return nil
		}
	}
}

func findCategory(name string, categories []models.ExpandedCategory) models.CategoryKey {
	for _, cat := range categories {
		if cat.Name == name {
			return cat.Key
		}
	}
	return models.CategoryKey{}
}

func printDraft(w *chat.Workflow) {
	d := w.Draft()
	categoryLabel := d.Category.Label
	if categoryLabel == "" {
		categoryLabel = "（未选择）"
	}
	fmt.Printf("%s %s元 [%s] %s 分类:%s 备注:%s\n",
		d.Type.Label(), d.Amount.String(), d.Date, d.Item, categoryLabel, d.Note)
	if w.Warning() != "" {
		fmt.Println(w.Warning())
	}
}
