package main

import (
	"fmt"

	"github.com/procdoc/procdoc"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	progress := stageProgress(deps.Stderr)

	var result *procdoc.DocumentDownloadResult
	var err error
	if c.Download {
		result, err = deps.Retriever.DownloadDocument(deps.Ctx, c.Protocol, c.Type, progress)
	} else {
		result, err = deps.Retriever.DocumentURL(deps.Ctx, c.Protocol, c.Type, progress)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	if c.Download {
		fmt.Fprintf(deps.Stdout, "Downloaded %q to %s\n", result.Description, result.FilePath)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Resolved %q via %s\n%s\n", result.Description, result.Strategy, result.URL)
	return nil
}
