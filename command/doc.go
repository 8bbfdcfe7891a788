/*
Package command provides the chat commands that let server managers run guild setup from Discord.

	.setup-server [test] [config:<name>]
	.setup-help

Register both with go-sarah:

	commands := command.NewSetup(adapter, setup.NewCatalog("configs"))
	sarah.RegisterCommandProps(commands.ServerCommandProps())
	sarah.RegisterCommandProps(commands.HelpCommandProps())

A live run asks the user to confirm with "yes" before anything is created, so the bot must be
built with a UserContextStorage.
*/
package command
