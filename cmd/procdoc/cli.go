package main

import (
	"context"
	"fmt"
	"io"

	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/etree"
	"github.com/procdoc/procdoc/retrieve"
	"github.com/procdoc/procdoc/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	DB         *sqlite.DB
	Cases      procdoc.CaseService
	Retrievals procdoc.RetrievalService
	Retriever  *retrieve.Retriever
	Exporter   *etree.Exporter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log browser and portal activity"`

	Search    SearchCmd    `cmd:"" help:"Search the portal for a case"`
	Movements MovementsCmd `cmd:"" help:"Retrieve a case's movement history"`
	Fetch     FetchCmd     `cmd:"" help:"Resolve a document's URL, or download it"`
	Text      TextCmd      `cmd:"" help:"Extract a document's plain text"`
	Batch     BatchCmd     `cmd:"" help:"Run an operation for every protocol in a file"`
	History   HistoryCmd   `cmd:"" help:"Show archived retrievals for a case"`
	Export    ExportCmd    `cmd:"" help:"Export an archived case as XML"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Protocol string `arg:"" help:"Case protocol number"`
}

// MovementsCmd is the "movements" subcommand.
type MovementsCmd struct {
	Protocol string `arg:"" help:"Case protocol number"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	Protocol string `arg:"" help:"Case protocol number"`
	Type     string `arg:"" help:"Document type to look for (e.g. sentença)"`
	Download bool   `short:"d" help:"Download the file instead of resolving its URL"`
}

// TextCmd is the "text" subcommand.
type TextCmd struct {
	Protocol string `arg:"" help:"Case protocol number"`
	Type     string `arg:"" help:"Document type to look for (e.g. sentença)"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Kind        string `arg:"" help:"Operation to run: search, movements, url, download or text"`
	File        string `arg:"" help:"File with one protocol number per line"`
	Type        string `short:"t" help:"Document type for url, download and text batches"`
	Concurrency int    `short:"c" default:"2" help:"Concurrent retrieval limit"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Protocol string `arg:"" help:"Case protocol number"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Protocol string `arg:"" help:"Case protocol number"`
	Out      string `short:"o" type:"path" help:"Directory to write the XML file into instead of stdout"`
}

// stageProgress renders progress updates as stage-labeled lines. Error
// updates are skipped; the command reports its failure once, on return.
func stageProgress(w io.Writer) procdoc.ProgressFunc {
	return func(u procdoc.ProgressUpdate) {
		if u.Stage == procdoc.StageError {
			return
		}
		fmt.Fprintf(w, "%s: %s\n", u.Stage, u.Message)
	}
}
