package main

import (
	"fmt"

	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	rec, err := deps.Cases.FindCaseByProtocol(deps.Ctx, c.Protocol)
	if err != nil {
		if procdoc.ErrorCode(err) == procdoc.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: no archive for %q. Run 'procdoc search %s' first.\n", c.Protocol, c.Protocol)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	retrievals, err := deps.Retrievals.FindRetrievals(deps.Ctx, procdoc.RetrievalFilter{CaseID: &rec.ID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	xml, err := deps.Exporter.Export(rec, retrievals)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	if c.Out == "" {
		fmt.Fprint(deps.Stdout, xml)
		return nil
	}

	path, err := fs.NewWriter(c.Out).WriteExport(rec.ProtocolNumber, xml)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported case %s to %s\n", rec.ProtocolNumber, path)
	return nil
}
