/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mcptools

// ResearchGuidance tells the model when the documentation tools are worth
// calling. It is appended to the diagnosis instructions.
const ResearchGuidance = `
You have access to research tools that can help diagnose issues:

- **context7**: Use for real-time retrieval of up-to-date, version-specific
  library docs and code snippets. Good for looking up specific error messages,
  API documentation, or code patterns from git repos, OpenAPI specs, or websites.

- **deepwiki**: Use for structured, summarized documentation and architectural
  insights about GitHub repositories. Good for understanding how a library or
  framework works, getting Q&A-style explanations, or finding source code references.

Use these tools when:
- The error message references a specific library or framework
- You need current documentation to understand an API or configuration
- The issue requires understanding architectural patterns or best practices
- Looking up specific error codes or exception types

You may choose NOT to use these tools if:
- The issue is straightforward (e.g., obvious syntax error, clear resource exhaustion)
- The diagnosis is clear from the error message alone
`
