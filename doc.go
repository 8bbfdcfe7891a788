// Package discord provides a sarah.Adapter implementation for Discord and a setup.Gateway
// that manages a guild's roles, categories and channels.
//
// The Adapter bridges go-sarah's bot framework with Discord using discordgo. It converts
// Discord message events into sarah.Input and dispatches sarah.Output as Discord messages,
// splitting text that exceeds Discord's message length limit.
//
// Gateway maps the platform-neutral reconciliation calls of package setup onto Discord's
// REST API, including the translation of permission tokens into Discord permission bits.
package discord
