/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package logmonitor

import (
	"fmt"
	"strings"
)

// Classification of a log message.
type Classification string

const (
	ClassificationError   Classification = "error"
	ClassificationWarning Classification = "warning"
	ClassificationNormal  Classification = "normal"
)

// Severity of a diagnosed problem.
type Severity string

const (
	SeverityHigh Severity = "high"
	SeverityLow  Severity = "low"
)

// Action taken at the end of a run.
type Action string

const (
	ActionSlackAlert   Action = "slack_alert"
	ActionGitHubTicket Action = "github_ticket"
	ActionNone         Action = "none"
)

// State flows through the workflow. Fields are filled in as nodes run;
// Diagnosis and Severity stay empty for normal logs.
type State struct {
	LogMessage     string         `json:"log_message" yaml:"log_message"`
	Classification Classification `json:"classification" yaml:"classification"`
	Diagnosis      string         `json:"diagnosis" yaml:"diagnosis"`
	Severity       Severity       `json:"severity" yaml:"severity"`
	ActionTaken    Action         `json:"action_taken" yaml:"action_taken"`
}

// stateKeys are the JSON names of the State fields.
var stateKeys = []string{"log_message", "classification", "diagnosis", "severity", "action_taken"}

// ClassificationResult is the structured output of the classify step.
type ClassificationResult struct {
	Classification Classification `json:"classification" jsonschema:"enum=error,enum=warning,enum=normal,description=The classification of the log message based on its content"`
	Confidence     float64        `json:"confidence" jsonschema:"description=Confidence score for the classification (0.0 to 1.0)"`
	Indicators     []string       `json:"indicators" jsonschema:"description=Keywords or patterns that led to this classification"`
}

// Validate normalizes the classification and checks its fields.
func (c *ClassificationResult) Validate() error {
	c.Classification = Classification(strings.ToLower(strings.TrimSpace(string(c.Classification))))
	switch c.Classification {
	case ClassificationError, ClassificationWarning, ClassificationNormal:
	default:
		return fmt.Errorf("unexpected classification %q", c.Classification)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0, 1]", c.Confidence)
	}
	return nil
}

// SeverityAssessment is the structured output of the severity step.
type SeverityAssessment struct {
	Severity   Severity `json:"severity" jsonschema:"enum=high,enum=low,description=The severity level of the diagnosed problem"`
	Reasoning  string   `json:"reasoning" jsonschema:"description=Brief explanation of why this severity was assigned"`
	Confidence float64  `json:"confidence" jsonschema:"description=Confidence score for the assessment (0.0 to 1.0)"`
}

// Validate normalizes the severity and checks its fields.
func (s *SeverityAssessment) Validate() error {
	s.Severity = Severity(strings.ToLower(strings.TrimSpace(string(s.Severity))))
	switch s.Severity {
	case SeverityHigh, SeverityLow:
	default:
		return fmt.Errorf("unexpected severity %q", s.Severity)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0, 1]", s.Confidence)
	}
	return nil
}
