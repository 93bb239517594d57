package main

import (
	"fmt"

	"github.com/procdoc/procdoc"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	result, err := deps.Retriever.SearchCase(deps.Ctx, c.Protocol, stageProgress(deps.Stderr))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	if !result.Found {
		fmt.Fprintf(deps.Stdout, "No case found for %s\n", result.ProtocolNumber)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Found case %s\n%s\n", result.ProtocolNumber, result.CasePageURL)
	return nil
}
