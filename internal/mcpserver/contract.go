package mcpserver

// DocumentFormatContract describes the JSON document format that LLM
// clients should produce when creating drafts.
const DocumentFormatContract = `# Postcraft Document Format Contract

Draft content is a JSON array of block nodes. Each node holds a list of
text runs with optional styling.

## Structure

` + "```" + `json
[
  {
    "type": "paragraph",
    "children": [
      { "text": "Big news", "bold": true },
      { "text": " from the team " },
      { "text": "today", "italic": true, "underline": true }
    ]
  },
  { "type": "paragraph", "children": [ { "text": "" } ] },
  { "type": "paragraph", "children": [ { "text": "Second paragraph." } ] }
]
` + "```" + `

## Rules

1. **The top level is an array.** Anything else is treated as plain text.
2. **Every node has ` + "`" + `"type": "paragraph"` + "`" + `** and a ` + "`" + `children` + "`" + ` array with at least one run.
3. **A run is ` + "`" + `{"text": ...}` + "`" + `** plus any of ` + "`" + `bold` + "`" + `, ` + "`" + `italic` + "`" + `, ` + "`" + `underline` + "`" + `.
   Omit style flags that are false.
4. **Blank lines** are paragraphs holding one empty run. Blank paragraphs at
   the start or end of the post are dropped when publishing.
5. **Line breaks** inside a run are kept as-is.

## Styling on publish

The platform only accepts plain text, so styles are rendered with Unicode
lookalike letters. Only ASCII letters A-Z and a-z are restyled; digits,
punctuation and other scripts are published unchanged.

| Flags | Rendering |
|-------|-----------|
| bold + italic | Mathematical Sans-Serif Bold Italic |
| bold | Mathematical Sans-Serif Bold |
| italic | Mathematical Sans-Serif Italic |
| underline | letter followed by U+0332 COMBINING LOW LINE |

Only one style applies per run, in the order above: underline is ignored
when bold or italic is set.

ASCII parentheses are replaced with fullwidth ` + "`" + `（` + "`" + ` and ` + "`" + `）` + "`" + ` in the
published text. Keep plain ` + "`" + `(` + "`" + ` and ` + "`" + `)` + "`" + ` in the document itself.

## Limits

A published post may hold at most 3000 characters, counted in UTF-16 code
units. Every styled letter counts as two. Use the ` + "`" + `render_content` + "`" + ` tool
to check the final length before creating a draft.
`
