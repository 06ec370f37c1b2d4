package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Start an interactive conversation",
	Long: `Opens the interactive terminal UI for chatting with the assistant and
browsing course outlines.

When stdin is not a terminal, or with --plain, a line-based prompt is used
instead. In line mode type /new to start a fresh session and exit to quit.

Controls (terminal UI):
  Enter      - Send question / Select
  Ctrl+N     - New session
  PgUp/PgDn  - Scroll transcript
  Esc        - Back
  Ctrl+C     - Quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use the line-based prompt")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	qs, err := requireQuery()
	if err != nil {
		return err
	}

	if !chatPlain && isTerminal(cmd.InOrStdin()) {
		return runChatTUI(cmd, qs)
	}
	return runChatLines(cmd, qs)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runChatTUI(cmd *cobra.Command, qs driving.QueryService) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(qs, catalogService, sessionService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runChatLines reads one question per line and answers it within a single session.
func runChatLines(cmd *cobra.Command, qs driving.QueryService) error {
	ctx := commandContext(cmd)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	sessionID := ""

	cmd.Println("Coursemate chat. Type /new for a new session, exit to quit.")
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/new":
			if sessionID != "" && sessionService != nil {
				if err := sessionService.Clear(ctx, sessionID); err != nil {
					cmd.Printf("Error: %v\n", err)
				}
			}
			sessionID = ""
			cmd.Println("Started a new session.")
			continue
		}

		answer, err := qs.Query(ctx, domain.QueryRequest{Query: line, SessionID: sessionID})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.Printf("Error: %v\n", err)
			continue
		}
		sessionID = answer.SessionID

		printAnswer(cmd, answer)
		cmd.Println()
	}
}
