package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the course materials",
	Long: `Sends one question to the assistant and prints the answer with its sources.

Pass --session to continue an earlier conversation; the session ID is printed
after every answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "continue an existing session")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON shape of an answer.
type askOutput struct {
	Answer    string            `json:"answer"`
	Sources   []domain.Citation `json:"sources"`
	SessionID string            `json:"session_id"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	qs, err := requireQuery()
	if err != nil {
		return err
	}

	answer, err := qs.Query(commandContext(cmd), domain.QueryRequest{
		Query:     args[0],
		SessionID: askSession,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		out := askOutput{Answer: answer.Text, Sources: answer.Citations, SessionID: answer.SessionID}
		if out.Sources == nil {
			out.Sources = []domain.Citation{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, answer)
	cmd.Printf("\nSession: %s\n", answer.SessionID)
	return nil
}

// printAnswer writes the answer text followed by its sources.
func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if len(answer.Citations) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, c := range answer.Citations {
		if c.Link != "" {
			cmd.Printf("  - %s (%s)\n", c.Text, c.Link)
		} else {
			cmd.Printf("  - %s\n", c.Text)
		}
	}
}
