package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tender-cli/internal/model"
)

func TestSaveArtifacts(t *testing.T) {
	l := newTestLayout(t)

	err := l.SaveArtifacts("1234567890", "manual", Artifacts{
		Metadata: TenderMetadata{
			IngestionID: "batch-1",
			Files:       []model.FileMetadata{{Path: "/tmp/a.txt", Extension: ".txt"}},
		},
		Text:       "артикул: AB12 цена 1500",
		Candidates: []model.ProductCandidate{{Code: "AB12", Price: "1500"}},
	})
	require.NoError(t, err)

	dir, err := l.TenderDir("1234567890", "manual")
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(dir, "manual_docs", "original"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	text, err := l.ExtractedText("1234567890", "manual")
	require.NoError(t, err)
	assert.Equal(t, "артикул: AB12 цена 1500", text)

	candidates, err := l.ProductCandidates("1234567890", "manual")
	require.NoError(t, err)
	assert.Equal(t, []model.ProductCandidate{{Code: "AB12", Price: "1500"}}, candidates)

	meta, found, err := l.Metadata("1234567890", "manual")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "batch-1", meta.IngestionID)
	assert.Equal(t, "/tmp/a.txt", meta.Files[0].Path)

	raw, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"files"`)
	assert.Contains(t, string(raw), `"file": "/tmp/a.txt"`)
}

func TestSaveArtifacts_EmptyCandidatesWriteArray(t *testing.T) {
	l := newTestLayout(t)
	require.NoError(t, l.SaveArtifacts("1234567890", "manual", Artifacts{}))

	dir, err := l.TenderDir("1234567890", "manual")
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(dir, "extracted", "product_candidates.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestArtifacts_Absent(t *testing.T) {
	l := newTestLayout(t)

	text, err := l.ExtractedText("1234567890", "none")
	require.NoError(t, err)
	assert.Empty(t, text)

	candidates, err := l.ProductCandidates("1234567890", "none")
	require.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)

	_, found, err := l.Metadata("1234567890", "none")
	require.NoError(t, err)
	assert.False(t, found)
}
