package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krea02/ai-agent-demo/internal/agent"
	"github.com/krea02/ai-agent-demo/internal/identity"
	"github.com/krea02/ai-agent-demo/internal/knowledge"
	"github.com/krea02/ai-agent-demo/internal/store"
)

func newChatCmd() *cobra.Command {
	var (
		collaborator  string
		knowledgePath string
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the quote engine from the terminal",
		Long:  "chat reads one utterance per line from stdin. /reset starts a new conversation and /quit exits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

			retriever, err := knowledge.Load(knowledgePath)
			if err != nil {
				return fmt.Errorf("load knowledge corpus: %w", err)
			}

			deps := agent.Deps{
				Store:     store.NewMemoryStore(16, 0, nil),
				Retriever: retriever,
				Answerer:  agent.StaticAnswerer{},
				Logger:    logger,
			}
			if collaborator != "" {
				client, err := agent.NewGrpcClient(agent.DefaultGrpcClientConfig(collaborator), logger)
				if err != nil {
					return fmt.Errorf("connect collaborator: %w", err)
				}
				defer client.Close()
				deps.Answerer = client
			}

			svc, err := agent.NewService(agent.DefaultConfig(), deps)
			if err != nil {
				return err
			}
			defer svc.Close()

			return chatLoop(cmd, svc, identity.NewSessionKey(), asJSON)
		},
	}

	cmd.Flags().StringVar(&collaborator, "collaborator", os.Getenv("COLLABORATOR_ADDR"), "gRPC address of the answering collaborator (empty answers from the corpus)")
	cmd.Flags().StringVar(&knowledgePath, "knowledge", os.Getenv("KNOWLEDGE_PATH"), "knowledge corpus YAML file (empty uses the embedded corpus)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print every turn result as JSON")

	return cmd
}

func chatLoop(cmd *cobra.Command, svc *agent.Service, key string, asJSON bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	prompt := func() { _, _ = fmt.Fprint(cmd.ErrOrStderr(), "> ") }

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for prompt(); scanner.Scan(); prompt() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/reset":
			if err := svc.ResetSession(ctx, key); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "(new conversation)")
			continue
		}

		res, err := svc.HandleTurn(ctx, key, line, agent.TurnOptions{Channel: "cli"})
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		if err := printTurn(out, res, asJSON); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printTurn(w io.Writer, res *agent.TurnResult, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(res)
	}
	_, err := fmt.Fprintln(w, res.Reply)
	return err
}
