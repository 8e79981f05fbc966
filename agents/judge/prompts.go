/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"encoding/xml"
	"fmt"

	"chainguard.dev/agentbench/agents/promptbuilder"
)

var goldenPrompt = promptbuilder.MustNewPrompt(`<task>
Grade a response against a reference answer for one criterion.
</task>

{{golden_answer}}

{{actual_response}}

{{criterion}}

<rubric>
Score from 0.0 to 1.0, judging only the criterion:
- 1.0: semantically equivalent to the reference or better; wording and order do not matter.
- 0.75-0.99: meets the criterion with minor gaps (0.90+ for presentation only).
- 0.50-0.74: partially meets the criterion; notable omissions.
- 0.25-0.49: significant errors with some correct elements.
- 0.0-0.24: off topic or contradicts the reference.
</rubric>

<output_format>
Return only a JSON object with "mode": "golden", "score", "reasoning" and "suggestions".
Suggestions must be empty for a perfect score and must explain every deduction otherwise.
</output_format>`)

var benchmarkPrompt = promptbuilder.MustNewPrompt(`<task>
Compare two candidate responses and decide which better meets one criterion.
</task>

{{foo}}

{{bar}}

{{criterion}}

<rubric>
Score from -1.0 to 1.0, judging only the criterion:
- -1.0: foo satisfies the criterion and bar fundamentally fails it.
- -0.60 to -0.99: foo is much better.
- -0.01 to -0.59: foo is somewhat or slightly better.
- 0.0: equivalent.
- 0.01 to 0.59: bar is somewhat or slightly better.
- 0.60 to 0.99: bar is much better.
- 1.0: bar satisfies the criterion and foo fundamentally fails it.
</rubric>

<output_format>
Return only a JSON object with "mode": "benchmark", "score", "reasoning" and "suggestions".
Direct suggestions at the weaker candidate.
</output_format>`)

var standalonePrompt = promptbuilder.MustNewPrompt(`<task>
Grade how well a response meets one criterion. There is no reference answer.
</task>

{{response}}

{{criterion}}

<rubric>
Score from 0.0 to 1.0, judging only the criterion:
- 1.0: fully satisfies the criterion.
- 0.75-0.99: satisfies it with minor gaps.
- 0.50-0.74: partially satisfies it; important elements missing.
- 0.25-0.49: shows awareness of it but fails in major ways.
- 0.0-0.24: ignores or contradicts it.
</rubric>

<output_format>
Return only a JSON object with "mode": "standalone", "score", "reasoning" and "suggestions".
Suggestions must be empty for a perfect score and must explain every deduction otherwise.
</output_format>`)

var tracePrompt = promptbuilder.MustNewPrompt(`<task>
Grade an agent execution trace against one criterion. The trace records the
input, every tool call with its arguments and result, any errors, and the
final answer.
</task>

{{trace}}

{{criterion}}

<rubric>
Score from 0.0 to 1.0, judging only the criterion:
- 1.0: the agent chose appropriate tools, used their results faithfully and
  the final answer satisfies the criterion.
- 0.75-0.99: minor inefficiencies such as a redundant call.
- 0.50-0.74: the answer is usable but ignores or misreads tool results.
- 0.25-0.49: wrong tools, failed calls left unhandled, or unsupported claims.
- 0.0-0.24: the answer contradicts the tool results or the trace failed.
</rubric>

<output_format>
Return only a JSON object with "mode": "trace", "score", "reasoning" and "suggestions".
Suggestions must be empty for a perfect score and must explain every deduction otherwise.
</output_format>`)

// promptFor returns the template for mode.
func promptFor(mode JudgmentMode) (*promptbuilder.Prompt, error) {
	switch mode {
	case GoldenMode:
		return goldenPrompt, nil
	case BenchmarkMode:
		return benchmarkPrompt, nil
	case StandaloneMode:
		return standalonePrompt, nil
	case TraceMode:
		return tracePrompt, nil
	default:
		return nil, fmt.Errorf("unknown judgment mode: %s", mode)
	}
}

// section wraps content in an XML element holding a CDATA block, so answer
// text keeps its formatting and cannot close or open prompt sections.
type section struct {
	XMLName xml.Name
	Content string `xml:",cdata"`
}

func bindSection(p *promptbuilder.Prompt, name, content string) (*promptbuilder.Prompt, error) {
	return p.BindXML(name, section{XMLName: xml.Name{Local: name}, Content: content})
}

// Bind implements promptbuilder.Bindable for Request
func (r *Request) Bind(prompt *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	type binding struct{ name, content string }
	var bindings []binding

	switch r.Mode {
	case GoldenMode:
		bindings = []binding{{"golden_answer", r.ReferenceAnswer}, {"actual_response", r.ActualAnswer}}
	case BenchmarkMode:
		bindings = []binding{{"foo", r.ReferenceAnswer}, {"bar", r.ActualAnswer}}
	case StandaloneMode:
		bindings = []binding{{"response", r.ActualAnswer}}
	case TraceMode:
		bindings = []binding{{"trace", r.ActualAnswer}}
	default:
		return nil, fmt.Errorf("unknown judgment mode: %s", r.Mode)
	}
	bindings = append(bindings, binding{"criterion", r.Criterion})

	var err error
	for _, b := range bindings {
		if prompt, err = bindSection(prompt, b.name, b.content); err != nil {
			return nil, err
		}
	}
	return prompt, nil
}
