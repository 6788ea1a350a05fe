package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/aerodry/claimflow/pkg/types"
)

type fakeClient struct {
	response string
	err      error
}

func (f *fakeClient) Complete(_ context.Context, _ string) (string, error) {
	return f.response, f.err
}

func TestClassifyHeuristic(t *testing.T) {
	classifier := NewClassifier(nil, DefaultConfig(), nil)

	cases := []struct {
		name    string
		subject string
		body    string
		want    types.TriageLabel
	}{
		{"spam outreach", "Grow your brand", "We offer a partnership marketing opportunity", types.TriageNonClaim},
		{"warranty wording", "Warranty claim", "My dryer stopped working last week", types.TriageWarrantyClaim},
		{"damage wording", "Help", "The handle cracked when I dropped it", types.TriageWarrantyClaim},
		{"purchase wording", "Question", "I purchased this in March and need a replacement", types.TriageWarrantyClaim},
		{"unrelated", "Hello", "Just saying hi", types.TriageNonClaim},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifier.Classify(context.Background(), types.Email{
				EmailID: "e1", Subject: tc.subject, Body: tc.body,
			})
			if got.Label != tc.want {
				t.Fatalf("expected %s, got %s (%s)", tc.want, got.Label, got.Reason)
			}
			if got.Reason == "" {
				t.Fatalf("reason must not be empty")
			}
		})
	}
}

func TestClassifySpamBeatsClaimSignals(t *testing.T) {
	classifier := NewClassifier(nil, DefaultConfig(), nil)

	// Spam vocabulary is checked first even when claim words are present.
	got := classifier.Classify(context.Background(), types.Email{
		EmailID: "e1",
		Subject: "SEO services for warranty businesses",
		Body:    "We help warranty claim processors rank higher.",
	})
	if got.Label != types.TriageNonClaim {
		t.Fatalf("expected NON_CLAIM, got %s", got.Label)
	}
}

func TestClassifyModelResponseUsed(t *testing.T) {
	client := &fakeClient{response: `{"label": "NON_CLAIM", "reason": "sales outreach"}`}
	classifier := NewClassifier(client, DefaultConfig(), nil)

	got := classifier.Classify(context.Background(), types.Email{
		EmailID: "e1", Subject: "Warranty claim", Body: "dryer stopped working",
	})
	if got.Label != types.TriageNonClaim || got.Reason != "sales outreach" {
		t.Fatalf("model result not used: %+v", got)
	}
}

func TestClassifyModelFailureFallsBack(t *testing.T) {
	cases := []struct {
		name   string
		client *fakeClient
	}{
		{"transport error", &fakeClient{err: errors.New("timeout")}},
		{"malformed json", &fakeClient{response: "not json"}},
		{"unexpected label", &fakeClient{response: `{"label": "MAYBE", "reason": "?"}`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classifier := NewClassifier(tc.client, DefaultConfig(), nil)
			got := classifier.Classify(context.Background(), types.Email{
				EmailID: "e1", Subject: "Warranty claim", Body: "my dryer stopped working",
			})
			if got.Label != types.TriageWarrantyClaim {
				t.Fatalf("fallback heuristic should label WARRANTY_CLAIM, got %s", got.Label)
			}
		})
	}
}

func TestClassifyModelFencedJSON(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"label\": \"WARRANTY_CLAIM\", \"reason\": \"product issue\"}\n```"}
	classifier := NewClassifier(client, DefaultConfig(), nil)

	got := classifier.Classify(context.Background(), types.Email{EmailID: "e1", Subject: "hi", Body: "hello"})
	if got.Label != types.TriageWarrantyClaim {
		t.Fatalf("fenced model output should decode, got %+v", got)
	}
}
