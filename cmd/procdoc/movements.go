package main

import (
	"fmt"

	"github.com/procdoc/procdoc"
)

// Run executes the movements command.
func (c *MovementsCmd) Run(deps *Dependencies) error {
	result, err := deps.Retriever.CaseMovements(deps.Ctx, c.Protocol, stageProgress(deps.Stderr))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, result.Text)
	return nil
}
