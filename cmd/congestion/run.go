package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/congestion/internal/config"
	"github.com/lox/congestion/internal/report"
	"github.com/lox/congestion/internal/route"
	"github.com/lox/congestion/internal/simulator"
	"github.com/lox/congestion/internal/statistics"
)

// boolArg is a positional true/false argument.
type boolArg bool

func (b *boolArg) Decode(ctx *kong.DecodeContext) error {
	var s string
	if err := ctx.Scan.PopValueInto("bool", &s); err != nil {
		return err
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("expected true or false, got %q", s)
	}
	*b = boolArg(v)
	return nil
}

// OutputFlags control logging and how the report is written
type OutputFlags struct {
	Format        string `kong:"default='summary',enum='summary,json',help='Report format (summary|json)'"`
	Output        string `kong:"short='o',help='Write the report to a file instead of stdout'"`
	NoColor       bool   `kong:"help='Disable coloured output'"`
	IncludeTrials bool   `kong:"help='Include per-trial results in JSON reports'"`
	LogLevel      string `kong:"default='warn',enum='debug,info,warn,error',help='Log level (debug|info|warn|error)'"`
}

type RunCmd struct {
	Agents        int     `kong:"arg,help='Number of agents'"`
	Highway       boolArg `kong:"arg,help='Add the u1-d2 highway (true|false)'"`
	Epsilon       float64 `kong:"arg,help='Exploration rate in [0,1]'"`
	MaxIterations int     `kong:"arg,name='max-iterations',help='Rounds per trial'"`
	CompleteInfo  boolArg `kong:"arg,name='complete-info',help='Agents observe every route cost each round (true|false)'"`

	Trials      int     `kong:"default='10',help='Number of independent trials'"`
	Seed        int64   `kong:"help='Master seed (0 for time-based)'"`
	Parallelism int     `kong:"help='Maximum concurrent trials (0 for GOMAXPROCS)'"`
	U1          float64 `kong:"name='u1',default='0.01',help='Per-agent cost of segment u1'"`
	U2          float64 `kong:"name='u2',default='25',help='Flat cost of segment u2'"`
	D1          float64 `kong:"name='d1',default='25',help='Flat cost of segment d1'"`
	D2          float64 `kong:"name='d2',default='0.01',help='Per-agent cost of segment d2'"`

	OutputFlags `kong:"embed"`
}

func (c *RunCmd) scenario() *config.Scenario {
	return &config.Scenario{
		Agents:              c.Agents,
		Highway:             bool(c.Highway),
		ExplorationRate:     c.Epsilon,
		MaxIterations:       c.MaxIterations,
		CompleteInformation: bool(c.CompleteInfo),
		Trials:              c.Trials,
		Seed:                c.Seed,
		Parallelism:         c.Parallelism,
		PathCosts:           route.PathCosts{U1: c.U1, U2: c.U2, D1: c.D1, D2: c.D2},
	}
}

func (c *RunCmd) Run() error {
	return runWithSignals(c.scenario(), c.OutputFlags)
}

type ScenarioCmd struct {
	File   string `kong:"arg,type='existingfile',help='Scenario file (.hcl, .yaml or .yml)'"`
	Trials int    `kong:"help='Override the scenario trial count'"`
	Seed   int64  `kong:"help='Override the scenario seed'"`

	OutputFlags `kong:"embed"`
}

func (c *ScenarioCmd) Run() error {
	s, err := config.Load(c.File)
	if err != nil {
		return err
	}
	if c.Trials != 0 {
		s.Trials = c.Trials
	}
	if c.Seed != 0 {
		s.Seed = c.Seed
	}
	return runWithSignals(s, c.OutputFlags)
}

func runWithSignals(s *config.Scenario, out OutputFlags) error {
	logger, err := newLogger(os.Stderr, out.LogLevel)
	if err != nil {
		return err
	}
	ctx, stop := setupSignalHandler(logger)
	defer stop()

	return execute(ctx, s, out, logger, os.Stdout)
}

// execute validates the scenario, plays every trial and writes the report
// to stdout or out.Output.
func execute(ctx context.Context, s *config.Scenario, out OutputFlags, logger *log.Logger, stdout io.Writer) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	format, err := report.ParseFormat(out.Format)
	if err != nil {
		return err
	}

	if s.Seed == 0 {
		s.Seed = time.Now().UnixNano()
		logger.Info("Using time-based seed", "seed", s.Seed)
	}

	simCfg := s.SimulatorConfig(logger)
	simCfg.OnTrialComplete = func(r statistics.TrialResult) {
		logger.Info("Trial finished", "trial", r.Trial, "id", r.ID, "final_round_payoff", r.FinalRoundPayoff)
	}

	result, err := simulator.New(simCfg).Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	rep, err := report.Build(simCfg, result, out.IncludeTrials)
	if err != nil {
		return err
	}

	if out.Output != "" {
		if err := report.WriteFile(out.Output, rep, format); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Report written", "path", out.Output, "trials", len(result.Trials))
		return nil
	}
	return report.NewReporter(stdout, format, out.NoColor).Write(rep)
}
