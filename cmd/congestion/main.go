package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Run      RunCmd           `cmd:"" help:"Play trials of the congestion game from command-line parameters"`
	Scenario ScenarioCmd      `cmd:"" help:"Play trials described by an HCL or YAML scenario file"`
	Validate ValidateCmd      `cmd:"" help:"Validate a scenario file and print it with defaults applied"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("congestion"),
		kong.Description("Epsilon-greedy agents learning routes through a congestible network"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
