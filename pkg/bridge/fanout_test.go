package bridge

import (
	"context"
	"testing"
)

// S6: two targets, one transport failure; result preserves order and the
// summary reports counts (§8 property 9).
func TestCoordinatorRun_MixedPartialFailure(t *testing.T) {
	transports := map[string]*fakeTransport{
		"a": {responses: []string{"ack", "capture-a"}},
		"b": {errs: []error{nil, &Error{Kind: KindTransportFailure, Message: "boom"}}},
	}
	c := Coordinator{
		Resolver: Resolver{},
		NewPrims: func(host string) Primitives { return Primitives{T: transports[host]} },
	}

	req := FanOutRequest{
		Targets: []FanOutTarget{
			{Host: "a", Target: PaneRef{Session: "s"}},
			{Host: "b", Target: PaneRef{Session: "s"}},
		},
		Mode:  ModeSendCapture,
		Keys:  "true",
		Enter: true,
	}

	results, summary := c.Run(context.Background(), req)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Host != "a" || results[0].Err != nil {
		t.Fatalf("first result should succeed: %+v", results[0])
	}
	if results[1].Host != "b" || results[1].Err == nil {
		t.Fatalf("second result should fail: %+v", results[1])
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 succeeded, 1 failed", summary)
	}
	if summary.String() != "1 succeeded, 1 failed" {
		t.Fatalf("summary string = %q", summary.String())
	}
}

func TestExpandFilter_MatchesGroupTagsNameAndRegex(t *testing.T) {
	profiles := map[string]HostProfile{
		"web-1": {}, "web-2": {}, "db-1": {},
	}
	groups := map[string]string{"web-1": "prod", "web-2": "prod", "db-1": "prod"}
	tags := map[string][]string{"web-1": {"edge"}, "web-2": {"edge", "canary"}, "db-1": {"edge"}}

	matches, err := ExpandFilter(FanOutHostFilter{Group: "prod", Tags: []string{"canary"}, NameContains: "web"}, profiles, tags, groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0] != "web-2" {
		t.Fatalf("matches = %v, want [web-2]", matches)
	}
}

func TestExpandFilter_NameRegex(t *testing.T) {
	profiles := map[string]HostProfile{"app-01": {}, "app-02": {}, "db-01": {}}
	matches, err := ExpandFilter(FanOutHostFilter{NameRegex: `^app-\d+$`}, profiles, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", matches)
	}
}
