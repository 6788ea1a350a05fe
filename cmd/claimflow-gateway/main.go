// Command claimflow-gateway serves the review queue over HTTP. It loads
// the packets the CLI has written to the review queue directory and lets
// reviewers decide them remotely.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aerodry/claimflow/internal/api"
	"github.com/aerodry/claimflow/internal/auth"
	"github.com/aerodry/claimflow/internal/config"
	"github.com/aerodry/claimflow/internal/draft"
	"github.com/aerodry/claimflow/internal/extract"
	"github.com/aerodry/claimflow/internal/llm"
	"github.com/aerodry/claimflow/internal/logging"
	"github.com/aerodry/claimflow/internal/orchestrator"
	"github.com/aerodry/claimflow/internal/policy"
	"github.com/aerodry/claimflow/internal/store"
	"github.com/aerodry/claimflow/internal/triage"
	"github.com/aerodry/claimflow/pkg/types"
)

func main() {
	if err := runFn(os.Args[1:], os.Getenv, listenAndServe, newServer); err != nil {
		fatalf("server error: %v", err)
	}
}

var runFn = run
var fatalf = log.Fatalf

type envFn func(string) string
type listenFn func(*http.Server) error
type serverFactory func(cfg config.Config) (*http.Server, error)

func run(args []string, getenv envFn, listen listenFn, factory serverFactory) error {
	fs := flag.NewFlagSet("claimflow-gateway", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to claimflow config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = getenv("CLAIMFLOW_CONFIG")
	}

	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if addr := getenv("CLAIMFLOW_LISTEN_ADDR"); addr != "" {
		cfg.Gateway.ListenAddr = addr
	}
	if token := getenv("CLAIMFLOW_AUTH_TOKEN"); token != "" {
		cfg.Gateway.AuthToken = token
	}

	server, err := factory(cfg)
	if err != nil {
		return err
	}

	log.Printf("claimflow-gateway listening on %s", server.Addr)
	if err := listen(server); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func newServer(cfg config.Config) (*http.Server, error) {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	client, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	catalog, err := policy.Load(cfg.PoliciesDir)
	if err != nil {
		return nil, err
	}

	labels, err := draft.NewLabelGenerator(cfg.Label)
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(
		nil,
		triage.NewClassifier(client, triage.DefaultConfig(), logger),
		extract.NewExtractor(client, extract.Config{KnownProducts: catalog.ProductNames()}, logger),
		catalog,
		draft.NewEmailWriter(client, cfg.Writer, logger),
		labels,
		cfg.Orchestrator,
		logger,
	)

	packets := store.NewPacketStore()
	loaded, err := loadReviewQueue(cfg.Paths.ReviewQueueDir, packets)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d review packet(s) from %s", loaded, cfg.Paths.ReviewQueueDir)

	h := &api.Handler{
		Auth:         &auth.TokenAuthenticator{Token: cfg.Gateway.AuthToken},
		Store:        packets,
		Catalog:      catalog,
		Orchestrator: orch,
	}
	return &http.Server{
		Addr:              cfg.Gateway.ListenAddr,
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}, nil
}

// loadReviewQueue seeds the store with the packets already on disk. A
// missing directory is an empty queue, not an error.
func loadReviewQueue(dir string, packets *store.PacketStore) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "review_*.json"))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, path := range matches {
		// #nosec G304 -- paths come from the configured queue directory.
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", filepath.Base(path), err)
			continue
		}
		var packet types.ReviewPacket
		if err := json.Unmarshal(raw, &packet); err != nil || packet.PacketID == "" {
			log.Printf("skipping %s: not a review packet", filepath.Base(path))
			continue
		}
		packets.PutPacket(packet)
		count++
	}
	return count, nil
}

func listenAndServe(server *http.Server) error {
	return server.ListenAndServe()
}
