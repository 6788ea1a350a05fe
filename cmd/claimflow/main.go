// Command claimflow runs the warranty claims pipeline against the
// file-based data directory: it triages the inbox, builds review packets,
// asks for the reviewer's decision, and writes the drafted outputs.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aerodry/claimflow/internal/config"
	"github.com/aerodry/claimflow/internal/draft"
	"github.com/aerodry/claimflow/internal/extract"
	"github.com/aerodry/claimflow/internal/inbox"
	"github.com/aerodry/claimflow/internal/llm"
	"github.com/aerodry/claimflow/internal/logging"
	"github.com/aerodry/claimflow/internal/orchestrator"
	"github.com/aerodry/claimflow/internal/policy"
	"github.com/aerodry/claimflow/internal/triage"
	"github.com/aerodry/claimflow/pkg/types"
)

func main() {
	exitFn(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

var exitFn = os.Exit

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}
	switch args[1] {
	case "process":
		return handleProcess(args[2:], stdin, stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func usage(stderr io.Writer) {
	fmt.Fprintln(stderr, "usage: claimflow process [-config path] [-decide A|R|M]")
}

type decisionRecord struct {
	PacketID      string `json:"packet_id"`
	EmailID       string `json:"email_id"`
	HumanDecision string `json:"human_decision"`
	DecidedAt     string `json:"decided_at"`
	Notes         string `json:"notes"`
}

func handleProcess(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", envOrDefault("CLAIMFLOW_CONFIG", ""), "path to claimflow config file")
	decide := fs.String("decide", "", "non-interactive decision for every packet: A, R, or M")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, "config:", err)
			return 1
		}
		cfg = loaded
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	client, err := llm.New(cfg.LLM)
	if err != nil {
		fmt.Fprintln(stderr, "llm:", err)
		return 1
	}
	if client != nil {
		fmt.Fprintln(stdout, "Model backend enabled.")
	} else {
		fmt.Fprintln(stdout, "No model backend configured; using heuristics and templates.")
	}

	catalog, err := policy.Load(cfg.PoliciesDir)
	if err != nil {
		fmt.Fprintln(stderr, "policies:", err)
		return 1
	}

	in, err := inbox.New(cfg.Paths)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	labels, err := draft.NewLabelGenerator(cfg.Label)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := os.MkdirAll(cfg.DecisionsDir, 0o755); err != nil {
		fmt.Fprintln(stderr, "decisions dir:", err)
		return 1
	}

	orch := orchestrator.New(
		in,
		triage.NewClassifier(client, triage.DefaultConfig(), logger),
		extract.NewExtractor(client, extract.Config{KnownProducts: catalog.ProductNames()}, logger),
		catalog,
		draft.NewEmailWriter(client, cfg.Writer, logger),
		labels,
		cfg.Orchestrator,
		logger,
	)

	emails, failures, err := in.LoadAll()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, failure := range failures {
		fmt.Fprintf(stderr, "skipping %s: %v\n", failure.File, failure.Err)
	}
	if len(emails) == 0 {
		fmt.Fprintf(stdout, "No emails found in %s\n", cfg.Paths.InboxDir)
		return 0
	}
	fmt.Fprintf(stdout, "Found %d inbox email(s). Processing...\n\n", len(emails))

	ctx := context.Background()
	reader := bufio.NewReader(stdin)
	failed := false

	for _, email := range emails {
		fmt.Fprintf(stdout, "--- Processing %s ---\n", email.EmailID)

		packet, err := orch.ProcessToReviewPacket(ctx, email)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", email.EmailID, err)
			failed = true
			continue
		}
		if packet == nil {
			fmt.Fprintf(stdout, "Triage: NON_CLAIM, moved to %s\n\n", cfg.Paths.TriageRejectedDir)
			continue
		}

		packetPath := filepath.Join(cfg.Paths.ReviewQueueDir, "review_"+packet.PacketID+".json")
		if err := writeJSONFile(packetPath, packet); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", email.EmailID, err)
			failed = true
			continue
		}
		fmt.Fprintf(stdout, "Created review packet: %s\n", packetPath)
		printPacketSummary(stdout, *packet)

		humanDecision := promptDecision(reader, stdout, *decide)

		record := decisionRecord{
			PacketID:      packet.PacketID,
			EmailID:       packet.EmailID,
			HumanDecision: string(humanDecision),
			DecidedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		decisionPath := filepath.Join(cfg.DecisionsDir, "decision_"+packet.PacketID+".json")
		if err := writeJSONFile(decisionPath, record); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", email.EmailID, err)
			failed = true
			continue
		}
		fmt.Fprintf(stdout, "Saved decision: %s\n", decisionPath)

		doc, ok := catalog.ByProductName(packet.SelectedPolicyProduct)
		if !ok {
			doc, _ = catalog.Select(packet.Extracted)
		}

		outputs, err := orch.DraftOutputsAfterDecision(ctx, packet, doc, humanDecision, "")
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", email.EmailID, err)
			failed = true
			continue
		}

		// Persist the actioned packet over the draft.
		if err := writeJSONFile(packetPath, packet); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", email.EmailID, err)
			failed = true
			continue
		}

		emailPath := filepath.Join(cfg.OutboxDir, fmt.Sprintf("email_%s_%s.txt", packet.EmailID, strings.ToLower(string(humanDecision))))
		if err := os.WriteFile(emailPath, []byte(outputs.DraftedEmail), 0o644); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", email.EmailID, err)
			failed = true
			continue
		}
		fmt.Fprintf(stdout, "Wrote customer email draft: %s\n", emailPath)
		if outputs.LabelRef != "" {
			fmt.Fprintf(stdout, "Return label generated: %s\n", filepath.Join(cfg.OutboxDir, outputs.LabelRef))
		}
		fmt.Fprintln(stdout)
	}

	fmt.Fprintln(stdout, "Done.")
	fmt.Fprintf(stdout, "Review packets: %s\n", cfg.Paths.ReviewQueueDir)
	fmt.Fprintf(stdout, "Decisions:      %s\n", cfg.DecisionsDir)
	fmt.Fprintf(stdout, "Outbox:         %s\n", cfg.OutboxDir)
	fmt.Fprintf(stdout, "Triage rejects: %s\n", cfg.Paths.TriageRejectedDir)

	if failed {
		return 1
	}
	return 0
}

func printPacketSummary(stdout io.Writer, packet types.ReviewPacket) {
	claim := packet.Extracted

	product := claim.ProductName
	if product == "" {
		product = claim.ProductModelHint
	}
	if product == "" {
		product = "UNKNOWN"
	}
	purchase := "UNKNOWN"
	if claim.PurchaseDate != nil {
		purchase = claim.PurchaseDate.String()
	}
	address := "NO"
	if claim.ShippingAddress != "" {
		address = "YES"
	}

	fmt.Fprintf(stdout, "Packet:            %s\n", packet.PacketID)
	fmt.Fprintf(stdout, "Product:           %s\n", product)
	fmt.Fprintf(stdout, "Purchase date:     %s\n", purchase)
	fmt.Fprintf(stdout, "Proof of purchase: %t\n", claim.ProofOfPurchase)
	fmt.Fprintf(stdout, "Shipping address:  %s\n", address)
	fmt.Fprintf(stdout, "Issue:             %s\n", claim.IssueDescription)
	fmt.Fprintf(stdout, "Selected policy:   %s (%s)\n", packet.SelectedPolicyProduct, packet.SelectedPolicyID)
	fmt.Fprintf(stdout, "Recommendation:    %s | Confidence: %s\n", packet.Recommendation, packet.Confidence)
	if len(claim.MissingFields) > 0 {
		fmt.Fprintf(stdout, "Missing fields:    %s\n", strings.Join(claim.MissingFields, ", "))
	}
}

// promptDecision reads A/R/M from the reviewer, defaulting to A on an
// empty or unreadable line. A non-empty override skips the prompt.
func promptDecision(reader *bufio.Reader, stdout io.Writer, override string) types.HumanDecision {
	choice := strings.ToUpper(strings.TrimSpace(override))
	if choice == "" {
		fmt.Fprint(stdout, "Human decision [A/R/M] (A): ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			line = "A"
		}
		choice = strings.ToUpper(strings.TrimSpace(line))
	}
	switch choice {
	case "R":
		return types.DecisionRejected
	case "M":
		return types.DecisionMoreInfoRequested
	default:
		return types.DecisionApproved
	}
}

func writeJSONFile(path string, payload any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
