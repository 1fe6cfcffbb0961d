package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/utils"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var offline, confirm, verbose bool

	cmd := &cobra.Command{
		Use:   "extract <message>",
		Short: "Run one message through extraction and the confirmation gate",
		Long: `Runs a shop owner's message (English, Swahili or Sheng) through the same
Extract -> Gate pipeline the chat uses and prints the candidate, the gate
decision and the stock classification as JSON.

--offline skips the LLM entirely and uses the heuristic parser.
--confirm also saves the result into a throwaway in-memory ledger.`,
		Args: cobra.MinimumNArgs(1),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			utils.InitLogger("development")
			if !verbose {
				zerolog.SetGlobalLevel(zerolog.WarnLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var invoker extraction.Invoker
			if !offline {
				service, err := llm.NewService()
				if err != nil {
					log.Warn().Err(err).Msg("⚠️ LLM provider not configured, falling back to offline")
				} else {
					invoker = service
				}
			}

			report, err := Run(cmd.Context(), invoker, strings.Join(args, " "), confirm)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "use the heuristic parser only, no LLM calls")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm the result into an in-memory ledger")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show pipeline logs")

	return cmd
}
