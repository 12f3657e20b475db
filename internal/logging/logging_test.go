package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(New(&buf, "warn"), "", 0)

	logger.Print("[DEBUG] materialized 3 blocks")
	logger.Print("[INFO] sweep finished")
	logger.Print("[WARN] user 7 failed")
	logger.Print("[ERROR] database unreachable")
	logger.Print("no level")

	out := buf.String()
	for _, dropped := range []string{"materialized 3 blocks", "sweep finished"} {
		if strings.Contains(out, dropped) {
			t.Errorf("output should not contain %q", dropped)
		}
	}
	for _, kept := range []string{"user 7 failed", "database unreachable", "no level"} {
		if !strings.Contains(out, kept) {
			t.Errorf("output should contain %q", kept)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		" ERROR ": "ERROR",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range cases {
		if got := string(parseLevel(in)); got != want {
			t.Errorf("parseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
