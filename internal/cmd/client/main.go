package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spec-sec/securechat/internal/chat"
	"github.com/spec-sec/securechat/internal/protocol"
)

var port int

// consoleUI prints received messages with a timestamp, the way the
// reference interface renders its chat window.
type consoleUI struct{}

func (consoleUI) Display(text string) {
	fmt.Printf("[%s] %s\n", time.Now().Format("15:04"), text)
}

func main() {
	// Wipe key material on interrupt before the process dies.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	root := &cobra.Command{
		Use:   "securechat <host>",
		Short: "Client for DH-keyed encrypted chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	root.Flags().IntVar(&port, "port", 39482, "port the chat server is running on")

	if err := root.Execute(); err != nil {
		memguard.Purge()
		os.Exit(1)
	}
}

func run(host string) error {
	ui := consoleUI{}
	addr := fmt.Sprintf("%s:%d", host, port)

	ui.Display(fmt.Sprintf("Connecting to %s...", addr))
	client, err := chat.Dial(addr, ui)
	if err != nil {
		return err
	}
	defer client.Close()
	ui.Display("Connected!")

	ui.Display("Establishing encryption key...")
	if err := client.Handshake(); err != nil {
		return fmt.Errorf("unable to establish encryption key: %w", err)
	}
	ui.Display("Encryption key established")

	done := make(chan struct{})
	go func() {
		client.Run()
		close(done)
	}()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)
	exited := false
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		text := scanner.Text()
		if text == "" {
			continue
		}
		if err := client.Send(text); err != nil {
			ui.Display(fmt.Sprintf("Error: %v", err))
			break
		}
		if text == protocol.CmdExit {
			exited = true
			break
		}
		ui.Display("You: " + text)
	}

	// EOF on stdin leaves the chat gracefully.
	if !exited {
		if err := client.Send(protocol.CmdExit); err != nil {
			return scanner.Err()
		}
	}
	// The server acknowledges and closes the connection, which ends the
	// receive loop. Don't hang forever on a server that never does.
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
	return scanner.Err()
}
