package reporting

import (
	"os"
	"time"

	"go.uber.org/zap"
)

// Options tune how a run is rendered. The zero value renders with default
// titles in UTC, links screenshots by path, and does not check artifacts.
type Options struct {
	Title    string
	Subtitle string
	// EmbedScreenshots inlines images as base64 data URIs.
	EmbedScreenshots bool
	// VerifyArtifacts checks each screenshot with ArtifactExists and renders
	// missing ones as unavailable instead of as a dead link.
	VerifyArtifacts bool
	ArtifactExists  func(path string) bool
	// LinkBase is the directory screenshot links are made relative to,
	// normally the directory holding the report.
	LinkBase string
	// LogExcerpt is an already-read tail of the session log.
	LogExcerpt string
	// Location is the time zone used for every displayed timestamp.
	Location *time.Location
	Logger   *zap.Logger
}

const (
	DefaultTitle    = "Test Execution Report"
	DefaultSubtitle = "eBay Automation Framework"
)

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Subtitle == "" {
		o.Subtitle = DefaultSubtitle
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.ArtifactExists == nil {
		o.ArtifactExists = fileExists
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
