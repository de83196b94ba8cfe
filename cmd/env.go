package main

import (
	"github.com/rotisserie/eris"

	"github.com/pindrop/pindrop/internal/pipeline"
	"github.com/pindrop/pindrop/pkg/geocode"
	"github.com/pindrop/pindrop/pkg/notion"
)

// newPipeline wires the pipeline from config. The token check happens here,
// before any row is read.
func newPipeline() (*pipeline.Pipeline, error) {
	if cfg.Notion.Token == "" {
		return nil, eris.Wrap(pipeline.ErrMissingToken, "set PINDROP_NOTION_TOKEN or notion.token in config.yaml")
	}

	notionClient := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit))
	geocoder := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithRateLimit(cfg.Geocode.RateLimit),
	)

	return pipeline.New(notionClient, geocoder), nil
}
