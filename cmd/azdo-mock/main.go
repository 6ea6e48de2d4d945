package main

import (
	"azdo-flow/cmd/azdo-mock/engine"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, rework, chaos")
	count := flag.Int("count", 30, "Number of work items to generate")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	outDir := flag.String("out", "", "Write the generated items to this directory instead of serving them")
	addr := flag.String("addr", "127.0.0.1:9090", "Listen address of the mock Azure DevOps API")
	queryID := flag.String("query", "00000000-0000-0000-0000-000000000001", "Saved query id that returns every item")
	token := flag.String("token", "", "Personal access token to require (empty accepts any)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Now:      time.Now(),
		Seed:     *seed,
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Seed: %d)...\n", cfg.Scenario, cfg.Count, cfg.Seed)
	items, err := engine.Generate(cfg)
	if err != nil {
		fmt.Printf("Failed to generate mock data: %v\n", err)
		os.Exit(1)
	}

	if *outDir != "" {
		path, err := engine.Save(*outDir, items)
		if err != nil {
			fmt.Printf("Failed to save mock data: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved %d work items to %s\n", len(items), path)
		return
	}

	fmt.Printf("Serving on http://%s (AZDO_BASE_URL=http://%s AZDO_ORGANIZATION=mock AZDO_PROJECT=mock AZDO_QUERY_ID=%s)\n", *addr, *addr, *queryID)
	srv := engine.NewServer(items, *queryID, *token)
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		fmt.Printf("Server failed: %v\n", err)
		os.Exit(1)
	}
}
