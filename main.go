package main

import (
	"os"

	"jianji/ledger-assistant/cmd/categories"
	chatcmd "jianji/ledger-assistant/cmd/chat"
	"jianji/ledger-assistant/cmd/ledgers"
	"jianji/ledger-assistant/cmd/root"
)

func init() {
	root.Init()
	root.Cmd.AddCommand(chatcmd.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(ledgers.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		root.Log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
