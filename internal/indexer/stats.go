package indexer

// IngestStats summarizes one directory ingestion run.
type IngestStats struct {
	// Scanned is the number of files found in the directory.
	Scanned int `json:"scanned"`
	// Ingested is the number of files chunked, embedded and stored.
	Ingested int `json:"ingested"`
	// Skipped is the number of files left alone because their content
	// hash was unchanged.
	Skipped int `json:"skipped"`
	// Failed is the number of files that errored; the run continues
	// past them.
	Failed int `json:"failed"`
}
