// Command guildsetup validates guild setup configurations and applies them to a Discord guild
// without running the chat bot.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
