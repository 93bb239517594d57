package main

import (
	"os"
	"strings"
	"time"

	"github.com/procdoc/procdoc"
)

// ConfigFromEnv builds the portal configuration from PROCDOC_* environment
// variables, starting from the defaults. Unset or unparsable variables
// leave the default in place.
func ConfigFromEnv() procdoc.Config {
	cfg := procdoc.DefaultConfig()

	if v := os.Getenv("PROCDOC_PORTAL_URL"); v != "" {
		cfg.PortalURL = v
	}
	if v := os.Getenv("PROCDOC_DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if v := os.Getenv("PROCDOC_BROWSER_PATH"); v != "" {
		cfg.BrowserPath = v
	}
	if v := os.Getenv("PROCDOC_BROWSER_CACHE"); v != "" {
		cfg.BrowserCacheDir = v
	}
	if v := os.Getenv("PROCDOC_SNAPSHOT_DIR"); v != "" {
		cfg.SnapshotDir = v
	}
	if v := os.Getenv("PROCDOC_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("PROCDOC_HEADLESS"); v != "" {
		cfg.Headless = v != "0" && !strings.EqualFold(v, "false")
	}
	if d := envDuration("PROCDOC_NAV_TIMEOUT"); d > 0 {
		cfg.NavigationTimeout = d
	}
	if d := envDuration("PROCDOC_SUBMIT_TIMEOUT"); d > 0 {
		cfg.SubmitTimeout = d
	}
	if d := envDuration("PROCDOC_ELEMENT_TIMEOUT"); d > 0 {
		cfg.ElementTimeout = d
	}

	return cfg
}

// envDuration parses a duration variable like "90s" or "2m". Returns zero
// when unset or unparsable.
func envDuration(name string) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
