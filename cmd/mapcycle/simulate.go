package main

import (
	"context"
	"fmt"
	"maps"
	"math/rand/v2"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	mapcycle "go-mapcycle"

	"github.com/eiannone/keyboard"
	"github.com/spf13/cobra"
)

const eventHistory = 12

// consoleHost records what the controller asks for. Level changes are handed
// to the main loop over a channel because the controller must not be called
// back from inside a host call.
type consoleHost struct {
	mu      sync.Mutex
	events  []string
	menus   map[string]mapcycle.Menu
	changes chan string
}

func newConsoleHost() *consoleHost {
	return &consoleHost{
		menus:   make(map[string]mapcycle.Menu),
		changes: make(chan string, 1),
	}
}

func (h *consoleHost) PresentSelection(participantID string, menu mapcycle.Menu) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.menus[participantID] = menu
	h.record(fmt.Sprintf("menu %s -> %s (%d options)", menu.Kind, participantID, len(menu.Options)))
}

func (h *consoleHost) DismissSelection(kind mapcycle.MenuKind) {
	h.mu.Lock()
	defer h.mu.Unlock()

	maps.DeleteFunc(h.menus, func(_ string, menu mapcycle.Menu) bool {
		return menu.Kind == kind
	})
}

func (h *consoleHost) Broadcast(event mapcycle.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("* " + formatEvent(event))
}

func (h *consoleHost) Notify(participantID string, event mapcycle.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record(fmt.Sprintf("@%s %s", participantID, formatEvent(event)))
}

func (h *consoleHost) LoadMap(filename string) {
	h.requestChange(filename)
}

func (h *consoleHost) EndLevel() {
	h.requestChange("")
}

func (h *consoleHost) requestChange(filename string) {
	select {
	case h.changes <- filename:
	default:
	}
}

func (h *consoleHost) record(line string) {
	h.events = append(h.events, time.Now().Format("15:04:05")+" "+line)
	if len(h.events) > eventHistory {
		h.events = h.events[len(h.events)-eventHistory:]
	}
}

func (h *consoleHost) history() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Clone(h.events)
}

func (h *consoleHost) menu(participantID string) (mapcycle.Menu, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var menu, ok = h.menus[participantID]
	return menu, ok
}

func formatEvent(event mapcycle.Event) string {
	var keys = slices.Sorted(maps.Keys(event.Params))

	var b strings.Builder
	b.WriteString(string(event.Kind))
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%q", key, event.Params[key])
	}
	return b.String()
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate [start-map]",
		Short: "Drive the map rotation interactively from the keyboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	var (
		ctx    = context.Background()
		logger = newLogger()
		host   = newConsoleHost()
		picker = rand.New(rand.NewPCG(seed, seed))
	)

	fmt.Printf("Opening stats database...\n")
	db, store, err := openStatsStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	controller, err := mapcycle.NewController(host, poolSource(),
		controllerOptions(logger, mapcycle.WithStatsStore(store))...)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	if err := controller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start map cycle: %w", err)
	}

	var sim = &simulation{
		ctx:        ctx,
		controller: controller,
		host:       host,
		picker:     picker,
	}

	var startMap = ""
	if len(args) > 0 {
		startMap = args[0]
	}
	if err := sim.loadLevel(startMap); err != nil {
		return err
	}

	// Set up periodic status updates
	var ticker = time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	// Set up signal handling for graceful shutdown
	var sigCh = make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Initialize keyboard
	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	defer keyboard.Close()

	// Keyboard input channel
	var keyCh = make(chan rune)
	go func() {
		for {
			char, _, err := keyboard.GetKey()
			if err != nil {
				return
			}
			keyCh <- char
		}
	}()

	sim.printStatus()

	// Main loop
	for {
		select {
		case <-ticker.C:
			sim.printStatus()
		case next := <-host.changes:
			if err := sim.changeLevel(next); err != nil {
				fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			}
		case key := <-keyCh:
			switch key {
			case 'j', 'J':
				sim.join()
			case 'd', 'D':
				sim.disconnect()
			case 'v', 'V':
				sim.voteAll()
			case 'n', 'N':
				sim.nominate()
			case 'r', 'R':
				sim.rockTheVote()
			case 'l', 'L':
				if err := controller.LaunchVote(); err != nil {
					fmt.Fprintf(os.Stderr, "\n❌ %v\n", err)
				}
			case '+':
				sim.rateAll(mapcycle.RatingLike)
			case '-':
				sim.rateAll(mapcycle.RatingDislike)
			case 'e', 'E':
				controller.OnRoundEnded()
			case 'm', 'M':
				controller.OnMatchEnded()
			case 'c', 'C':
				var next, _ = controller.NextMap()
				if err := sim.changeLevel(next); err != nil {
					fmt.Fprintf(os.Stderr, "❌ %v\n", err)
				}
			case 'q', 'Q':
				fmt.Printf("\n\nShutting down gracefully...\n")
				return sim.shutdown()
			}
			sim.printStatus()
		case sig := <-sigCh:
			fmt.Printf("\n\nReceived signal %v, shutting down...\n", sig)
			return sim.shutdown()
		}
	}
}

// simulation plays the game server around the controller.
type simulation struct {
	ctx        context.Context
	controller *mapcycle.Controller
	host       *consoleHost
	picker     *rand.Rand

	participants []string
	joined       int
	level        string
}

func (s *simulation) loadLevel(name string) error {
	s.level = name
	if err := s.controller.OnLevelLoaded(s.ctx, name); err != nil {
		return fmt.Errorf("failed to load level: %w", err)
	}
	return nil
}

func (s *simulation) changeLevel(next string) error {
	if next == "" {
		var ok bool
		if next, ok = s.controller.NextMap(); !ok {
			return fmt.Errorf("no next map decided yet")
		}
	}

	s.controller.OnLevelUnloading()
	return s.loadLevel(next)
}

// shutdown unloads the current level so its ratings are folded in, then
// waits for the stats writer to drain.
func (s *simulation) shutdown() error {
	s.controller.OnLevelUnloading()
	if err := s.controller.Stop(s.ctx); err != nil {
		return fmt.Errorf("failed to stop map cycle: %w", err)
	}
	fmt.Printf("✓ Saved map stats\n")
	return nil
}

func (s *simulation) join() {
	s.joined++
	var id = fmt.Sprintf("player%d", s.joined)
	s.participants = append(s.participants, id)
	s.controller.OnParticipantJoined(id)
}

func (s *simulation) disconnect() {
	if len(s.participants) == 0 {
		return
	}
	var id = s.participants[len(s.participants)-1]
	s.participants = s.participants[:len(s.participants)-1]
	s.controller.OnParticipantDisconnected(id)
}

// voteAll makes every participant pick a random selectable option of their ballot.
func (s *simulation) voteAll() {
	for _, id := range slices.Clone(s.participants) {
		var menu, ok = s.host.menu(id)
		if !ok || menu.Kind != mapcycle.MenuBallot {
			continue
		}

		var choices = slices.DeleteFunc(slices.Clone(menu.Options), func(option mapcycle.MenuOption) bool {
			return !option.Selectable
		})
		if len(choices) == 0 {
			continue
		}

		s.controller.Vote(id, choices[s.picker.IntN(len(choices))].Key)
	}
}

// nominate makes a random participant nominate a random map.
func (s *simulation) nominate() {
	if len(s.participants) == 0 {
		return
	}

	var id = s.participants[s.picker.IntN(len(s.participants))]
	if !s.controller.OpenNominations(id).Allowed() {
		return
	}

	var menu, ok = s.host.menu(id)
	if !ok || len(menu.Options) == 0 {
		return
	}

	s.controller.Nominate(id, menu.Options[s.picker.IntN(len(menu.Options))].Key)
}

// rockTheVote makes the next participant that has not rocked the vote do it.
func (s *simulation) rockTheVote() {
	for _, id := range s.participants {
		if s.controller.RockTheVote(id).Allowed() {
			return
		}
	}
}

func (s *simulation) rateAll(rating mapcycle.Rating) {
	for _, id := range s.participants {
		s.controller.RateMap(id, rating)
	}
}

func (s *simulation) printStatus() {
	var state = s.controller.State()

	fmt.Print("\033[2J\033[H") // Clear screen and move cursor to top
	fmt.Printf("Level: %s\n", valueOr(state.Level, "(none)"))
	fmt.Printf("Vote: %s   Next map: %s   Extends used: %d\n",
		state.Status, valueOr(state.NextMap, "(undecided)"), state.UsedExtends)

	switch state.TimeLeft {
	case mapcycle.TimeLeftNever:
		fmt.Printf("Time left: never\n")
	case mapcycle.TimeLeftLastRound:
		fmt.Printf("Time left: last round\n")
	default:
		fmt.Printf("Time left: %s\n", state.Remaining.Truncate(time.Second))
	}

	fmt.Printf("Participants: %d (%s)   RTV: %.0f%%\n",
		state.Participants, strings.Join(s.participants, ", "), state.RTVRatio*100)

	if state.Status == mapcycle.VoteInProgress {
		fmt.Printf("\nBallot %s:\n", state.Ballot.ID)
		for _, option := range state.Ballot.Options {
			var marker = " "
			if !option.Selectable {
				marker = "x"
			}
			fmt.Printf("  [%s] %-24s %s\n", marker, option.Name, option.Key)
		}
	}

	fmt.Printf("\nEvents:\n")
	for _, line := range s.host.history() {
		fmt.Printf("  %s\n", line)
	}

	fmt.Printf("\nControls:\n")
	fmt.Printf("  [j] Join  [d] Disconnect  [v] Everybody votes  [n] Nominate  [r] Rock the vote\n")
	fmt.Printf("  [l] Launch vote  [+/-] Like/dislike map  [e] Round end  [m] Match end\n")
	fmt.Printf("  [c] Change level  [q] Quit gracefully\n")
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
