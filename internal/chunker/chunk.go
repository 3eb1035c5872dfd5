package chunker

// Chunk is a size-bounded unit of document content with hierarchy metadata.
// It is the unit persisted and retrieved.
type Chunk struct {
	Content string
	// HeadingPath holds heading texts outermost to innermost.
	HeadingPath  []string
	HeadingLevel int
	// HeadingText is the innermost element of HeadingPath.
	HeadingText string
	// PartNumber is 1-based; TotalParts is identical across all parts of a
	// section and only known once the whole section has been split.
	PartNumber int
	TotalParts int
	// HasOverlap marks chunks whose content includes text duplicated from a
	// neighbouring chunk or section.
	HasOverlap bool
	Filename   string
	// SectionSequence increases monotonically per (filename, heading path)
	// group, disambiguating repeated headings in one document.
	SectionSequence int
}
