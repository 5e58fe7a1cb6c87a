package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/brain"
	"github.com/picogrid/tank-arena/pkg/config"
	"github.com/picogrid/tank-arena/pkg/logger"
	"github.com/picogrid/tank-arena/pkg/utils"
)

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Run a headless battle between built-in strategies",
	Long: `Run a complete match in the terminal and print the scoreboard.

Tanks are given as --tank name=strategy (or just --tank strategy). Without
--tank flags the roster and the match parameters are asked for interactively.`,
	Example: `  tank-arena battle --tank Rex=chaser --tank Bo=coward --fast
  tank-arena battle --tank aggressive --tank sitter --max-rounds 1`,
	RunE: runBattle,
}

func init() {
	addMatchFlags(battleCmd)
	battleCmd.Flags().StringArray("tank", nil, "tank as name=strategy (repeatable)")
	battleCmd.Flags().Int64("seed", 0, "seed for spawn points and collision nudges")
	battleCmd.Flags().Bool("fast", false, "tick as fast as possible on a simulated clock")
}

func runBattle(cmd *cobra.Command, _ []string) error {
	overrides := changedOverrides(cmd, matchFlagKeys)
	cfg, err := loadConfig(overrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	specs, _ := cmd.Flags().GetStringArray("tank")
	roster, err := utils.ParseRoster(specs)
	if err != nil {
		return err
	}

	if len(roster) == 0 {
		if !utils.Interactive() {
			return fmt.Errorf("at least two --tank flags are required when not running interactively")
		}
		roster, err = utils.PromptForRoster(strategyNames(), 2)
		if err != nil {
			return fmt.Errorf("failed to build roster: %w", err)
		}

		// Flags given on the command line are not asked for again
		if len(overrides) == 0 {
			params, err := utils.PromptForParameters(cfg.BattleParameters())
			if err != nil {
				return fmt.Errorf("failed to get parameters: %w", err)
			}
			config.MergeWithCLIOverrides(cfg, params)
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
	}

	if len(roster) < 2 {
		return fmt.Errorf("need at least 2 tanks, got %d", len(roster))
	}

	fast, _ := cmd.Flags().GetBool("fast")
	clock := newSimClock(time.Now())

	compiler := &brain.Compiler{Registry: brain.DefaultRegistry, LoadTimeout: cfg.Match.ScriptLoadTimeout}
	opts := []arena.Option{
		arena.WithSettings(cfg.Match.Settings()),
		arena.WithCompiler(compiler.Compile),
		arena.WithObstacles(cfg.Obstacles),
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetInt64("seed")
		opts = append(opts, arena.WithSeed(seed))
	}
	if fast {
		opts = append(opts, arena.WithClock(clock.Now))
	}
	match := arena.NewMatch(cfg.Arena, opts...)

	specs = specs[:0]
	for _, entry := range roster {
		specs = append(specs, entry.Name+"="+entry.Strategy)
	}
	if err := deployRoster(match, specs); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := match.Settings()
	logger.LogSection(fmt.Sprintf("%s Battle: %d tanks, %d rounds of %v", logger.IconTank, len(roster), settings.MaxRounds, settings.RoundTime))

	if err := match.Start(arena.StartOptions{}); err != nil {
		return err
	}

	if fast {
		err = runFast(ctx, match, clock, time.Second/time.Duration(cfg.Match.TickRate))
	} else {
		runner := arena.NewRunner(match, cfg.Match.TickRate)
		round := 0
		runner.OnTick(func(s arena.Status) {
			if s.Round != round {
				round = s.Round
				logger.LogSubSection(fmt.Sprintf("Round %d/%d", s.Round, s.MaxRounds))
			}
		})
		err = runner.RunMatch(ctx)
	}
	if err != nil {
		return fmt.Errorf("battle failed: %w", err)
	}
	if ctx.Err() != nil {
		logger.Warn("Battle interrupted")
	}

	printScoreboard(match.Status())
	return nil
}

// deployRoster registers "name=strategy" specs as built-in brains
func deployRoster(match *arena.Match, specs []string) error {
	roster, err := utils.ParseRoster(specs)
	if err != nil {
		return err
	}
	for _, entry := range roster {
		reg, err := match.AddTank(arena.TankSpec{
			Name:   entry.Name,
			Source: brain.BuiltinPrefix + entry.Strategy,
		})
		if err != nil {
			return fmt.Errorf("failed to add tank %q: %w", entry.Name, err)
		}
		if reg.BrainErr != nil {
			return fmt.Errorf("tank %s: %w", reg.Name, reg.BrainErr)
		}
	}
	return nil
}

// runFast ticks back to back, advancing the simulated clock by one tick
// interval each time
func runFast(ctx context.Context, match *arena.Match, clock *simClock, interval time.Duration) error {
	round := 0
	for match.State() != arena.StateFinished {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if r := match.Status().Round; r != round {
			round = r
			logger.LogSubSection(fmt.Sprintf("Round %d", r))
		}
		clock.Advance(interval)
		match.Tick(ctx)
	}
	return nil
}

func strategyNames() []string {
	infos := brain.DefaultRegistry.List()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

func printScoreboard(status arena.Status) {
	tanks := append([]arena.TankStatus(nil), status.Tanks...)
	sort.SliceStable(tanks, func(i, j int) bool {
		if tanks[i].Score != tanks[j].Score {
			return tanks[i].Score > tanks[j].Score
		}
		return tanks[i].Kills > tanks[j].Kills
	})

	logger.LogSection("Scoreboard")
	table := logger.NewTable("RANK", "TANK", "SCORE", "KILLS", "HEALTH", "STATUS")
	for i, t := range tanks {
		state := "alive"
		if !t.Alive {
			state = "destroyed"
		}
		table.AddRow(strconv.Itoa(i+1), t.Name, strconv.Itoa(t.Score), strconv.Itoa(t.Kills), strconv.Itoa(t.Health), state)
	}
	table.Print()

	if len(tanks) > 0 {
		winner := color.New(color.FgGreen, color.Bold)
		if logger.NoColor() {
			winner.DisableColor()
		}
		fmt.Println()
		_, _ = winner.Printf("%s Winner: %s with %d points\n", logger.IconTrophy, tanks[0].Name, tanks[0].Score)
	}
}

// simClock is a manually advanced clock for fast battles
type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func newSimClock(start time.Time) *simClock {
	return &simClock{now: start}
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
