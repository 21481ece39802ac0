package types

// Document is the flat projection of a Chunk handed to indexing and
// embedding consumers: the docstring and definition joined into one text
// block, plus the location metadata a consumer needs to point back at the
// source. This is the only contract the chunking core exposes downstream.
type Document struct {
	Text     string
	Metadata map[string]any
}

// Document projects the chunk into its indexable form. Documentation comes
// first, separated from the definition by a blank line; an empty docstring
// yields just the definition text.
func (c Chunk) Document() Document {
	text := c.DefinitionText
	if c.Documentation != "" {
		text = c.Documentation + "\n\n" + c.DefinitionText
	}

	return Document{
		Text: text,
		Metadata: map[string]any{
			"file_path":  c.Location.FilePath,
			"start_line": c.Location.StartLine,
			"end_line":   c.Location.EndLine,
			"name":       c.Name,
		},
	}
}
