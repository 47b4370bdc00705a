// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Getenv, os.Stdout, os.Stderr))
}

// run checks the environment read through getenv and returns the exit code.
func run(getenv func(string) string, stdout, stderr io.Writer) int {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }
	env := func(k string) string { return strings.TrimSpace(getenv(k)) }

	zip, district := env("ZIPCODE"), env("DISTRICT_ID")
	switch {
	case zip != "":
		ok("ZIPCODE=" + zip)
		if district != "" {
			warn("DISTRICT_ID is ignored while ZIPCODE is set.")
		}
	case district != "":
		ok("DISTRICT_ID=" + district)
	default:
		fail("neither ZIPCODE nor DISTRICT_ID is set (runs will exit without polling).")
	}

	// Numeric CSV lists; non-numeric items are silently dropped at runtime.
	for _, name := range []string{"CENTER_WHITELIST", "PREFERRED_CENTER_FILTER"} {
		v := env(name)
		if v == "" {
			continue
		}
		for _, item := range strings.Split(v, ",") {
			if _, err := strconv.Atoi(strings.TrimSpace(item)); err != nil {
				warn(fmt.Sprintf("%s item %q is not a center id and will be skipped", name, item))
			}
		}
	}

	for _, name := range []string{"CHECK_FOR_18_YRS", "CHECK_FOR_45_YRS"} {
		if v := env(name); v != "" {
			if _, err := strconv.ParseBool(v); err != nil {
				warn(name + " is not a boolean; the default will be used.")
			}
		}
	}

	if env("SLACK_ACCESS_TOKEN") == "" {
		warn("SLACK_ACCESS_TOKEN empty; no notifications will be sent.")
	} else if env("SLACK_CHANNEL_ID") == "" && env("SLACK_USER_ID") == "" {
		fail("SLACK_ACCESS_TOKEN set but neither SLACK_CHANNEL_ID nor SLACK_USER_ID is.")
	} else {
		ok("Slack destination present")
	}

	if env("PREFERRED_CENTER_FILTER") != "" && env("PREFERRED_CENTER_SLACK_ACCESS_TOKEN") == "" {
		warn("PREFERRED_CENTER_FILTER set without PREFERRED_CENTER_SLACK_ACCESS_TOKEN; preferred messages are skipped.")
	}

	if env("DATABASE_URL") == "" {
		ok("send-log file: " + orDefault(env("SENDLOG_PATH"), "data_store.json"))
	} else {
		ok("DATABASE_URL present (send-log in postgres)")
	}

	admin, pub := env("ADMIN_API_KEYS"), env("PUBLIC_API_KEYS")
	if admin == "" {
		warn("ADMIN_API_KEYS is empty (POST /api/run will 403).")
	} else {
		ok("ADMIN_API_KEYS present")
	}
	if pub == "" && admin == "" {
		warn("PUBLIC_API_KEYS is empty; read routes are open to anyone who can reach API_ADDR.")
	}
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}
	if origins := env("ALLOWED_ORIGINS"); origins == "" {
		warn("ALLOWED_ORIGINS empty; browsers on other origins cannot read API responses.")
	} else {
		ok("ALLOWED_ORIGINS=" + origins)
	}

	if failed {
		return 1
	}
	ok("preflight passed")
	return 0
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
