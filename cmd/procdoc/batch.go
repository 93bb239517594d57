package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/retrieve"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	protocols, err := readProtocolFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}
	if len(protocols) == 0 {
		err := procdoc.Errorf(procdoc.EINVALID, "no protocol numbers in %s", c.File)
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	if c.Concurrency > 0 {
		deps.Retriever.Concurrency = c.Concurrency
	}

	req := retrieve.BatchRequest{
		Kind:         c.Kind,
		DocumentType: c.Type,
	}

	result, err := deps.Retriever.ProcessBatch(deps.Ctx, protocols, req, stageProgress(deps.Stderr))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Retrieved %d of %d protocols (%d failed)\n",
		result.Processed, len(result.Outcomes), result.Failed)
	return nil
}

// readProtocolFile reads one protocol number per line. Blank lines and
// lines starting with # are skipped.
func readProtocolFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, procdoc.Errorf(procdoc.EINVALID, "reading protocol file: %v", err)
	}

	var protocols []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		protocols = append(protocols, line)
	}
	return protocols, nil
}
