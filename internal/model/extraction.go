package model

// FileMetadata describes one processed upload or archive entry.
type FileMetadata struct {
	Path        string `json:"file"`
	Extension   string `json:"type"`
	Blocked     bool   `json:"blocked"`
	Error       string `json:"error,omitempty"`
	NestedFiles *int   `json:"processed_files,omitempty"`
}

// ProductCandidate is a catalog item mention (article code and price) found in free text.
type ProductCandidate struct {
	Code  string `json:"code"`
	Price string `json:"price"`
}

// ExtractionResult is the output of processing a single file. Archives fold
// their children into one result.
type ExtractionResult struct {
	Text       string             `json:"text"`
	Candidates []ProductCandidate `json:"product_candidates"`
	Metadata   FileMetadata       `json:"metadata"`
}

// IngestionResult is the outcome of one ingestion call.
type IngestionResult struct {
	IngestionID string             `json:"ingestion_id"`
	Tender      TenderRecord       `json:"tender"`
	Text        string             `json:"extracted_text"`
	Candidates  []ProductCandidate `json:"product_candidates"`
	Files       []FileMetadata     `json:"files"`
}
