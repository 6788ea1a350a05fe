//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aerodry/claimflow/internal/api"
	"github.com/aerodry/claimflow/internal/auth"
	"github.com/aerodry/claimflow/internal/draft"
	"github.com/aerodry/claimflow/internal/extract"
	"github.com/aerodry/claimflow/internal/inbox"
	"github.com/aerodry/claimflow/internal/orchestrator"
	"github.com/aerodry/claimflow/internal/policy"
	"github.com/aerodry/claimflow/internal/store"
	"github.com/aerodry/claimflow/internal/triage"
	"github.com/aerodry/claimflow/pkg/types"
)

// TestE2EPipeline runs the shipped sample inbox through both phases: the
// file pipeline to review packets, then a reviewer decision over HTTP.
func TestE2EPipeline(t *testing.T) {
	root := t.TempDir()

	paths := inbox.Paths{
		InboxDir:          filepath.Join(root, "inbox"),
		TriageRejectedDir: filepath.Join(root, "triage_rejected"),
		ReviewQueueDir:    filepath.Join(root, "review_queue"),
	}
	in, err := inbox.New(paths)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	copySamples(t, "../../data/inbox", paths.InboxDir)

	catalog, err := policy.Load("../../data/policies")
	if err != nil {
		t.Fatalf("load policies: %v", err)
	}

	labels, err := draft.NewLabelGenerator(draft.DefaultLabelConfig(filepath.Join(root, "outbox")))
	if err != nil {
		t.Fatalf("labels: %v", err)
	}

	orch := orchestrator.New(
		in,
		triage.NewClassifier(nil, triage.DefaultConfig(), nil),
		extract.NewExtractor(nil, extract.Config{KnownProducts: catalog.ProductNames()}, nil),
		catalog,
		draft.NewEmailWriter(nil, draft.DefaultWriterConfig(), nil),
		labels,
		orchestrator.Config{},
		nil,
	)

	emails, failures, err := in.LoadAll()
	if err != nil {
		t.Fatalf("load inbox: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("sample inbox should load cleanly: %v", failures)
	}

	packets := store.NewPacketStore()
	byEmail := map[string]*types.ReviewPacket{}
	for _, email := range emails {
		packet, err := orch.ProcessToReviewPacket(context.Background(), email)
		if err != nil {
			t.Fatalf("process %s: %v", email.EmailID, err)
		}
		if packet != nil {
			packets.PutPacket(*packet)
			byEmail[email.EmailID] = packet
		}
	}

	// The marketing outreach is filtered, the two claims survive.
	if _, err := os.Stat(filepath.Join(paths.TriageRejectedDir, "outreach_001.json")); err != nil {
		t.Fatalf("outreach should be triage-rejected: %v", err)
	}
	if len(byEmail) != 2 {
		t.Fatalf("expected 2 claim packets, got %d", len(byEmail))
	}

	pro := byEmail["claim_001"]
	if pro == nil || pro.SelectedPolicyProduct != "AeroDry Pro 1800" {
		t.Fatalf("claim_001 should select the Pro 1800 policy: %+v", pro)
	}

	// The travel claim trips the airline handling exclusion regardless of
	// purchase date.
	travel := byEmail["claim_002"]
	if travel == nil || travel.SelectedPolicyProduct != "AeroDry Travel 700" {
		t.Fatalf("claim_002 should select the Travel 700 policy: %+v", travel)
	}
	if travel.Recommendation != types.RecommendReject {
		t.Fatalf("travel damage should be rejected, got %s", travel.Recommendation)
	}

	// Phase two over HTTP: the reviewer confirms the rejection.
	router := api.NewRouter(&api.Handler{
		Auth:         &auth.TokenAuthenticator{Token: "test-token"},
		Store:        packets,
		Catalog:      catalog,
		Orchestrator: orch,
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	payload := decide(t, srv.URL, travel.PacketID, `{"decision":"REJECTED","notes":"exclusion confirmed"}`)
	if payload.Packet.Stage != types.StageActioned {
		t.Fatalf("expected actioned packet, got %s", payload.Packet.Stage)
	}
	if payload.Outputs.LabelRef != "" {
		t.Fatalf("rejections never get a label")
	}
	if !bytes.Contains([]byte(payload.Outputs.DraftedEmail), []byte("unable to approve")) {
		t.Fatalf("rejection email missing:\n%s", payload.Outputs.DraftedEmail)
	}
}

func decide(t *testing.T, baseURL, packetID, body string) api.DecisionResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/packets/"+packetID+"/decision", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("decision: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("decision status: %d", res.StatusCode)
	}

	var payload api.DecisionResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return payload
}

func copySamples(t *testing.T, src, dst string) {
	t.Helper()
	entries, err := os.ReadDir(src)
	if err != nil {
		t.Fatalf("read samples: %v", err)
	}
	for _, entry := range entries {
		raw, err := os.ReadFile(filepath.Join(src, entry.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		if err := os.WriteFile(filepath.Join(dst, entry.Name()), raw, 0o644); err != nil {
			t.Fatalf("copy %s: %v", entry.Name(), err)
		}
	}
}
