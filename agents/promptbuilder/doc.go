/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder builds LLM prompts from developer templates and
escaped runtime data, in the way prepared statements separate SQL from
parameters.

Templates and literal bindings must be string constants. Runtime data is
bound through an encoder (JSON, YAML, XML) or inside a fenced code block,
and substitution is a single pass so bound values are never re-expanded.
Every Bind method returns a new Prompt.

	p := promptbuilder.MustNewPrompt(`Classify this log message:
	{{log_message}}`)
	p, err := p.BindCodeBlock("log_message", "", msg)
	if err != nil {
		return err
	}
	text, err := p.Build()
*/
package promptbuilder
