package main

import (
	"fmt"

	"github.com/procdoc/procdoc"
)

// Run executes the text command.
func (c *TextCmd) Run(deps *Dependencies) error {
	result, err := deps.Retriever.DocumentText(deps.Ctx, c.Protocol, c.Type, stageProgress(deps.Stderr))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, result.Text)
	return nil
}
