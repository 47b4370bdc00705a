package main

import (
	"bytes"
	"strings"
	"testing"
)

func runWith(vars map[string]string) (int, string) {
	var out, errs bytes.Buffer
	code := run(func(k string) string { return vars[k] }, &out, &errs)
	return code, out.String() + errs.String()
}

func TestRun_MissingSearchKeyFails(t *testing.T) {
	code, out := runWith(map[string]string{})
	if code != 1 {
		t.Fatalf("want exit 1, got %d\n%s", code, out)
	}
	if !strings.Contains(out, "neither ZIPCODE nor DISTRICT_ID") {
		t.Fatalf("missing search key message:\n%s", out)
	}
}

func TestRun_WarnsAboutAPIKeysAndSlack(t *testing.T) {
	code, out := runWith(map[string]string{
		"DISTRICT_ID":             "395",
		"PREFERRED_CENTER_FILTER": "12,abc",
	})
	if code != 0 {
		t.Fatalf("want exit 0, got %d\n%s", code, out)
	}
	for _, want := range []string{
		"ADMIN_API_KEYS is empty",
		"SLACK_ACCESS_TOKEN empty;",
		`PREFERRED_CENTER_FILTER item "abc"`,
		"preflight passed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("want %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "—") {
		t.Fatalf("messages should use plain punctuation:\n%s", out)
	}
}

func TestRun_SlackTokenNeedsDestination(t *testing.T) {
	code, out := runWith(map[string]string{
		"ZIPCODE":            "411014",
		"SLACK_ACCESS_TOKEN": "xoxb-1",
		"ADMIN_API_KEYS":     "adm",
	})
	if code != 1 {
		t.Fatalf("want exit 1, got %d\n%s", code, out)
	}
	if !strings.Contains(out, "ADMIN_API_KEYS present") {
		t.Fatalf("admin keys should be reported:\n%s", out)
	}
}
