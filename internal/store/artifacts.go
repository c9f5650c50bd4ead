package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tender-cli/internal/model"
)

// Tender artifact paths, relative to the tender directory.
const (
	metadataFile   = "metadata.json"
	textFile       = "extracted/text.txt"
	candidatesFile = "extracted/product_candidates.json"
	originalsDir   = "manual_docs/original"
)

// TenderMetadata describes the ingestion that produced a tender's artifacts.
type TenderMetadata struct {
	IngestionID string               `json:"ingestion_id"`
	Files       []model.FileMetadata `json:"files"`
}

// Artifacts are the side files stored next to a registry record.
type Artifacts struct {
	Metadata   TenderMetadata
	Text       string
	Candidates []model.ProductCandidate
}

// SaveArtifacts writes metadata, extracted text and product candidates into
// the tender directory and creates the empty originals directory. Existing
// artifacts are replaced.
func (l *Layout) SaveArtifacts(inn, number string, a Artifacts) error {
	dir, err := l.TenderDir(inn, number)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, originalsDir), 0o755); err != nil {
		return eris.Wrap(err, "store: create tender directory")
	}

	meta := a.Metadata
	if meta.Files == nil {
		meta.Files = []model.FileMetadata{}
	}
	if err := WriteJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return err
	}
	if err := WriteFile(filepath.Join(dir, textFile), []byte(a.Text)); err != nil {
		return err
	}
	candidates := a.Candidates
	if candidates == nil {
		candidates = []model.ProductCandidate{}
	}
	return WriteJSON(filepath.Join(dir, candidatesFile), candidates)
}

// ExtractedText returns the stored text of a tender, or "" if none.
func (l *Layout) ExtractedText(inn, number string) (string, error) {
	dir, err := l.TenderDir(inn, number)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, textFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "store: read extracted text")
	}
	return string(data), nil
}

// ProductCandidates returns the stored candidates of a tender, or an empty
// slice if none.
func (l *Layout) ProductCandidates(inn, number string) ([]model.ProductCandidate, error) {
	dir, err := l.TenderDir(inn, number)
	if err != nil {
		return nil, err
	}
	candidates := []model.ProductCandidate{}
	if _, err := ReadJSON(filepath.Join(dir, candidatesFile), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// Metadata returns the stored ingestion metadata of a tender. The second
// result is false when the tender has no metadata file.
func (l *Layout) Metadata(inn, number string) (TenderMetadata, bool, error) {
	dir, err := l.TenderDir(inn, number)
	if err != nil {
		return TenderMetadata{}, false, err
	}
	var meta TenderMetadata
	found, err := ReadJSON(filepath.Join(dir, metadataFile), &meta)
	return meta, found, err
}
