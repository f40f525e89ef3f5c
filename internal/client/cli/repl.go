package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with
// a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	Status(ctx context.Context) error
	Answer(ctx context.Context, args []string) error
	EEO(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Submit(ctx context.Context) error
	Retry(ctx context.Context) error
	MagicLink(ctx context.Context) error
	Token(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a read–eval–print loop for the daylight CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands
//
//	help                  — show available commands
//	status                — show draft, queue and session state
//	answer <key> [value]  — record a free-text answer
//	eeo <key> [value]     — record a demographic answer
//	attach <path>         — select a resume attachment
//	submit                — submit the application
//	retry | sync          — force a flush attempt
//	magiclink             — request a session link by email
//	token                 — paste a session token
//	logout                — clear the session credential
//	exit | quit           — leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("daylight %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: status, answer <key> [value], eeo <key> [value], attach <path>, submit, retry, magiclink, token, logout, exit")

		case "status":
			_ = a.Status(ctx)

		case "answer":
			_ = a.Answer(ctx, args)

		case "eeo":
			_ = a.EEO(ctx, args)

		case "attach":
			_ = a.Attach(ctx, args)

		case "submit":
			_ = a.Submit(ctx)

		case "retry", "sync":
			_ = a.Retry(ctx)

		case "magiclink":
			_ = a.MagicLink(ctx)

		case "token":
			_ = a.Token(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
