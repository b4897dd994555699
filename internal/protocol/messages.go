// Package protocol holds the reserved plaintext commands and the notice
// formats the relay sends around session lifecycle events.
package protocol

import "fmt"

const (
	// CmdExit is the reserved plaintext a client sends to request a
	// graceful disconnect.
	CmdExit = "!exit"

	// RespAck is the server's literal acknowledgement of CmdExit.
	RespAck = "Acknowledged"
)

// FormatChat prefixes relayed chat text with the sender's address.
func FormatChat(addr, content string) string {
	return addr + ": " + content
}

// FormatJoined is the notice broadcast when a session becomes active.
func FormatJoined(addr string) string {
	return fmt.Sprintf("%s has joined", addr)
}

// FormatDeparted is the notice broadcast when an active session closes.
func FormatDeparted(addr string) string {
	return fmt.Sprintf("%s has disconnected", addr)
}
