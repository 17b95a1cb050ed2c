// Package chatui renders assistant answers for the interactive terminal
// chat. Styling follows the output writer: colors are dropped when the
// writer is not a terminal.
package chatui
