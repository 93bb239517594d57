package procdoc

import (
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config holds the settings for talking to the portal. Zero values are not
// usable; start from DefaultConfig and override.
type Config struct {
	// PortalURL is the public search entry point.
	PortalURL string

	// Headless controls whether the browser runs without a window.
	Headless bool

	// BrowserPath, when set, is used as the browser executable without any
	// discovery.
	BrowserPath string

	// BrowserCacheDir is scanned for a downloaded browser build when
	// BrowserPath is empty.
	BrowserCacheDir string

	// DownloadDir receives browser downloads.
	DownloadDir string

	// SnapshotDir, when set, receives Markdown snapshots of case pages.
	SnapshotDir string

	// UserAgent is sent on fetches made outside the browser.
	UserAgent string

	// NavigationTimeout bounds page loads.
	NavigationTimeout time.Duration

	// SubmitTimeout bounds the wait for the portal to answer a search.
	// The portal can be slow; keep this generous.
	SubmitTimeout time.Duration

	// ElementTimeout bounds individual element lookups.
	ElementTimeout time.Duration
}

// DefaultConfig returns the settings for the public e-SAJ portal.
func DefaultConfig() Config {
	return Config{
		PortalURL:         "https://esaj.tjsp.jus.br/cpopg/open.do",
		Headless:          true,
		DownloadDir:       filepath.Join(os.TempDir(), "procdoc-downloads"),
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		NavigationTimeout: 30 * time.Second,
		SubmitTimeout:     60 * time.Second,
		ElementTimeout:    10 * time.Second,
	}
}

// Validate returns an error if the config cannot drive the portal.
func (c Config) Validate() error {
	if c.PortalURL == "" {
		return Errorf(EINVALID, "portal URL required")
	}
	if _, err := url.Parse(c.PortalURL); err != nil {
		return Errorf(EINVALID, "portal URL %q does not parse", c.PortalURL)
	}
	return nil
}

// PortalOrigin returns the scheme and host of the portal, used to turn
// relative document links into absolute URLs.
func (c Config) PortalOrigin() string {
	u, err := url.Parse(c.PortalURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return c.PortalURL
	}
	return u.Scheme + "://" + u.Host
}
