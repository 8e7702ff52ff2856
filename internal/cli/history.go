package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/tourney/internal/model"
)

func newHistoryCmd() *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a player's rating history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playerID == "" {
				return errors.New("--player is required")
			}

			history, err := app.TournamentController.RatingHistory(cmd.Context(), model.PlayerID(playerID))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(history)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (required)")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tournaments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := app.TournamentController.ListTournaments(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(summaries)
			return nil
		},
	}
}

func newRankingCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ranking",
		Aliases: []string{"players"},
		Short:   "Rank every registered player by rating",
		RunE: func(cmd *cobra.Command, args []string) error {
			ranked, err := app.TournamentController.RankedPlayers(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(ranked)
			return nil
		},
	}
}
