package main

import (
	"context"
	"fmt"
	"time"

	mapcycle "go-mapcycle"

	"github.com/spf13/cobra"
)

// discardHost ignores everything the controller asks for.
type discardHost struct{}

func (discardHost) PresentSelection(string, mapcycle.Menu) {}
func (discardHost) DismissSelection(mapcycle.MenuKind) {}
func (discardHost) Broadcast(mapcycle.Event) {}
func (discardHost) Notify(string, mapcycle.Event) {}
func (discardHost) LoadMap(string) {}
func (discardHost) EndLevel() {}

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [current-map]",
		Short: "Print the ballot a vote would offer right now",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPreview,
	}
}

func runPreview(cmd *cobra.Command, args []string) error {
	var ctx = context.Background()

	db, store, err := openStatsStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	controller, err := mapcycle.NewController(discardHost{}, poolSource(), controllerOptions(newLogger())...)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	var current = ""
	if len(args) > 0 {
		current = args[0]
	}
	if err := controller.OnLevelLoaded(ctx, current); err != nil {
		return err
	}

	if current != "" {
		stats, ok, err := store.Load(ctx, current)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("Current map %s: %d likes, %d dislikes, detected %s\n",
				stats.Filename, stats.Likes, stats.Dislikes, stats.Detected.Format(time.DateOnly))
		} else {
			fmt.Printf("Current map %s has no stored stats\n", current)
		}
	}

	if err := controller.LaunchVote(); err != nil {
		return fmt.Errorf("failed to launch vote: %w", err)
	}

	var state = controller.State()
	fmt.Printf("Ballot %s (%d options)\n", state.Ballot.ID, len(state.Ballot.Options))
	for i, option := range state.Ballot.Options {
		var flags = ""
		if option.New {
			flags += " new"
		}
		if option.Recent {
			flags += " recent"
		}
		fmt.Printf("%2d. %-28s %-20s rating=%.2f%s\n", i+1, option.Name, option.Key, option.Rating, flags)
	}

	return nil
}
