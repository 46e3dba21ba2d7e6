package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fairness-mcp/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "equitable", "Scenario to generate: equitable, concentrated, sparse, idle")
	out := flag.String("out", "./snapshot.json", "Output path for the snapshot file")
	historyDir := flag.String("history", "", "Directory for the prior-period history (idle scenario)")
	poolSize := flag.Int("pool", 30, "Number of custodians in the pool (armed guards get a third)")
	services := flag.Int("services", 300, "Number of custodian services in the period")
	days := flag.Int("days", 30, "Length of the analysed period in days")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		PoolSize: *poolSize,
		Services: *services,
		Days:     *days,
		Seed:     *seed,
		Now:      time.Now().UTC().Truncate(time.Second),
	}

	fmt.Printf("Generating scenario '%s' (Pool: %d, Services: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.PoolSize, cfg.Services, cfg.Seed, *out)

	result := engine.Generate(cfg)
	if err := engine.Save(*out, result); err != nil {
		fmt.Printf("Failed to save snapshot: %v\n", err)
		os.Exit(1)
	}

	if *historyDir != "" && len(result.History) > 0 {
		if err := engine.SaveHistory(*historyDir, result); err != nil {
			fmt.Printf("Failed to save history: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Done.")
}
