/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"chainguard.dev/agentbench/logmonitor"
	"gopkg.in/yaml.v3"
)

//go:embed cases.yaml
var defaultCases []byte

// Case is a labelled log message. Severity is only expected for messages
// that get diagnosed.
type Case struct {
	Name           string                    `yaml:"name"`
	LogMessage     string                    `yaml:"log_message"`
	Classification logmonitor.Classification `yaml:"classification"`
	Severity       logmonitor.Severity       `yaml:"severity,omitempty"`
	Action         logmonitor.Action         `yaml:"action"`
}

// Dataset is an ordered set of cases.
type Dataset struct {
	Cases []Case `yaml:"cases"`
}

// Default returns the built-in dataset.
func Default() Dataset {
	ds, err := Parse(bytes.NewReader(defaultCases))
	if err != nil {
		panic(fmt.Sprintf("built-in dataset: %v", err))
	}
	return ds
}

// Load reads a dataset from a YAML file.
func Load(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer f.Close()
	ds, err := Parse(f)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes and validates a YAML dataset.
func Parse(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decoding dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Validate checks that case names are unique and labels are known.
func (ds Dataset) Validate() error {
	if len(ds.Cases) == 0 {
		return errors.New("dataset has no cases")
	}
	seen := make(map[string]bool, len(ds.Cases))
	var errs []error
	for i, c := range ds.Cases {
		switch {
		case c.Name == "":
			errs = append(errs, fmt.Errorf("case %d: missing name", i))
		case seen[c.Name]:
			errs = append(errs, fmt.Errorf("case %q: duplicate name", c.Name))
		}
		seen[c.Name] = true

		switch c.Classification {
		case logmonitor.ClassificationError, logmonitor.ClassificationWarning, logmonitor.ClassificationNormal:
		default:
			errs = append(errs, fmt.Errorf("case %q: unknown classification %q", c.Name, c.Classification))
		}
		switch c.Severity {
		case "", logmonitor.SeverityHigh, logmonitor.SeverityLow:
		default:
			errs = append(errs, fmt.Errorf("case %q: unknown severity %q", c.Name, c.Severity))
		}
		switch c.Action {
		case logmonitor.ActionSlackAlert, logmonitor.ActionGitHubTicket, logmonitor.ActionNone:
		default:
			errs = append(errs, fmt.Errorf("case %q: unknown action %q", c.Name, c.Action))
		}
	}
	return errors.Join(errs...)
}
