package pubsub

import (
	"testing"

	"github.com/paclead/splitsettle/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "paclead-prod"}
	cases := map[string]string{
		"split-settlement-events":                       "projects/paclead-prod/topics/split-settlement-events",
		" split-settlement-events ":                     "projects/paclead-prod/topics/split-settlement-events",
		"projects/other/topics/split-settlement-events": "projects/other/topics/split-settlement-events",
		"": "",
	}
	for in, want := range cases {
		if got := c.topicResourceName(in); got != want {
			t.Fatalf("topicResourceName(%q) = %q, want %q", in, got, want)
		}
	}

	var nilClient *Client
	if nilClient.Publisher("x") != nil {
		t.Fatal("nil client must return nil publisher")
	}
}

func TestClientOptions(t *testing.T) {
	if opts := clientOptions(config.GCPConfig{}); len(opts) != 0 {
		t.Fatalf("expected default credentials, got %d options", len(opts))
	}
	if opts := clientOptions(config.GCPConfig{CredentialsJSON: "{}", ApplicationCredentials: "/tmp/key.json"}); len(opts) != 1 {
		t.Fatalf("expected a single credentials option, got %d", len(opts))
	}
	if opts := clientOptions(config.GCPConfig{ApplicationCredentials: "/tmp/key.json"}); len(opts) != 1 {
		t.Fatalf("expected key file option, got %d", len(opts))
	}
}
