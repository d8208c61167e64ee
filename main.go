////////////////////////////////////////////////////////////////////////////////
// juice treasury: funding cycles, terminals and payout splits for
// community funded projects, replayed from yaml scenarios
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	flag "github.com/spf13/pflag"

	"juice_treasury/config"
	"juice_treasury/replay"
	"juice_treasury/sdk"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "juice.yaml", "Protocol config file (yaml, JUICE_* env vars override it)")
	scenarioFlag := flag.String("scenario", "", "Scenario file to replay (yaml)")
	outFlag := flag.String("out", "", "Write the json report here instead of stdout")
	stateFlag := flag.String("state", "", "Load and persist engine state in this json file (or set JUICE_STATE_FILE env var)")
	startFlag := flag.String("start", "2024-01-01T00:00:00Z", "Clock start for the replay (RFC3339)")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")

	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *verboseFlag {
		cfg.Log.Verbose = true
	}
	if *stateFlag != "" {
		cfg.StateFile = *stateFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := sdk.NewLoggerTo(os.Stderr, cfg.Log.Verbose)

	start, err := time.Parse(time.RFC3339, *startFlag)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	clock := clockwork.NewFakeClockAt(start)

	mem := sdk.NewMemState()
	if cfg.StateFile != "" {
		mem, err = sdk.OpenFileState(cfg.StateFile)
		if err != nil {
			return fmt.Errorf("open state: %w", err)
		}
	}
	host := sdk.NewHost(mem, clock, log)

	engine, err := cfg.Build(host)
	if err != nil {
		return err
	}
	protocol, err := engine.Protocol()
	if err != nil {
		return err
	}
	log.Info("engine ready",
		"owner", protocol.Owner,
		"fee", protocol.Fee,
		"governance_project", protocol.GovernanceProjectID,
		"terminals", len(engine.Terminals()),
		"keys", mem.Len(),
	)

	if *scenarioFlag == "" {
		return nil
	}
	sc, err := replay.Load(*scenarioFlag)
	if err != nil {
		return err
	}
	report, err := replay.NewRunner(engine, host, clock, log).Run(sc)
	if err != nil {
		return err
	}
	data, err := report.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if *outFlag != "" {
		if err := os.WriteFile(*outFlag, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else {
		fmt.Println(string(data))
	}
	log.Info("scenario finished", "name", sc.Name, "steps", len(report.Steps), "failures", report.Failures)
	if report.Failures > 0 {
		return fmt.Errorf("%d of %d steps did not go as expected", report.Failures, len(report.Steps))
	}
	return nil
}
