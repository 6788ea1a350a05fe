package llm

import (
	"errors"
	"testing"
)

func TestNewDisabledProviderReturnsNilClient(t *testing.T) {
	for _, provider := range []string{"", "disabled", "none"} {
		client, err := New(Config{Provider: provider})
		if err != nil {
			t.Fatalf("provider %q: %v", provider, err)
		}
		if client != nil {
			t.Fatalf("provider %q: expected nil client", provider)
		}
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "cohere"})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"{\"label\": \"NON_CLAIM\"}", "{\"label\": \"NON_CLAIM\"}"},
		{"```json\n{\"label\": \"NON_CLAIM\"}\n```", "{\"label\": \"NON_CLAIM\"}"},
		{"```\n{}\n```", "{}"},
		{"  {}\n", "{}"},
	}
	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Fatalf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
