package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tender-cli/internal/config"
	"github.com/sells-group/tender-cli/internal/extract"
	"github.com/sells-group/tender-cli/internal/model"
	"github.com/sells-group/tender-cli/internal/ocr"
	"github.com/sells-group/tender-cli/internal/registry"
	"github.com/sells-group/tender-cli/internal/store"
	"github.com/sells-group/tender-cli/internal/testutil"
)

const testINN = "1234567890"

const tenderText = "Извещение о закупке\nСрок исполнения: 01.01.2099 10:00\nартикул: AB12 цена 1500\n"

type fixture struct {
	pipeline  *Pipeline
	layout    *store.Layout
	registry  registry.Registry
	uploads   string
	workspace string
	stateFile string
}

func newFixture(t *testing.T, mutate ...func(*config.IngestConfig)) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		uploads:   filepath.Join(dir, "uploads"),
		workspace: filepath.Join(dir, "tmp"),
		stateFile: filepath.Join(dir, "launcher_state.json"),
	}
	require.NoError(t, os.MkdirAll(f.uploads, 0o755))
	require.NoError(t, os.MkdirAll(f.workspace, 0o755))

	cfg := config.IngestConfig{TempDir: f.workspace, MaxDepth: 8, MaxTotalBytes: 1 << 20, MaxEntries: 100}
	for _, m := range mutate {
		m(&cfg)
	}

	f.layout = store.NewLayout(config.StorageConfig{Dir: filepath.Join(dir, "organizations"), StateFile: f.stateFile})
	f.registry = registry.NewJSON(f.layout)
	extractors, err := extract.New(ocr.Disabled{}, nil, "")
	require.NoError(t, err)

	f.pipeline = New(cfg, f.layout, f.registry, extractors)
	f.pipeline.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) assertWorkspaceClean(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.workspace)
	require.NoError(t, err)
	assert.Empty(t, entries, "ingestion workspace must be removed")
}

func TestIngest_PlainTextEndToEnd(t *testing.T) {
	f := newFixture(t)
	path := testutil.WriteFile(t, f.uploads, "notice.txt", tenderText)

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{path})
	require.NoError(t, err)

	assert.NotEmpty(t, res.IngestionID)
	assert.Equal(t, model.TenderStatusActive, res.Tender.Status)
	assert.Equal(t, "manual", res.Tender.Number)
	assert.Equal(t, "01.01.2099 10:00", res.Tender.Deadline)
	assert.Equal(t, []model.ProductCandidate{{Code: "AB12", Price: "1500"}}, res.Candidates)
	assert.Equal(t, []model.FileMetadata{{Path: path, Extension: ".txt"}}, res.Files)
	assert.Contains(t, res.Text, "Срок исполнения")

	list, err := f.registry.List(context.Background(), testINN)
	require.NoError(t, err)
	assert.Equal(t, []model.TenderRecord{res.Tender}, list)

	text, err := f.layout.ExtractedText(testINN, "manual")
	require.NoError(t, err)
	assert.Equal(t, res.Text, text)

	stored, err := f.layout.ProductCandidates(testINN, "manual")
	require.NoError(t, err)
	assert.Equal(t, res.Candidates, stored)

	meta, found, err := f.layout.Metadata(testINN, "manual")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, res.IngestionID, meta.IngestionID)

	f.assertWorkspaceClean(t)
}

func TestIngest_CustomerTaxIDBecomesNumber(t *testing.T) {
	f := newFixture(t)
	path := testutil.WriteFile(t, f.uploads, "notice.txt", "ИНН заказчика: 7701234567\n"+tenderText)

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "7701234567", res.Tender.Number)
	assert.Equal(t, "7701234567", res.Tender.URL)
}

func TestIngest_Idempotent(t *testing.T) {
	f := newFixture(t)
	path := testutil.WriteFile(t, f.uploads, "notice.txt", tenderText)
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, testINN, []string{path})
	require.NoError(t, err)
	_, err = f.pipeline.Ingest(ctx, testINN, []string{path})
	require.NoError(t, err)

	list, err := f.registry.List(ctx, testINN)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIngest_MissingOrganization(t *testing.T) {
	f := newFixture(t)
	path := testutil.WriteFile(t, f.uploads, "notice.txt", tenderText)

	_, err := f.pipeline.Ingest(context.Background(), "  ", []string{path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingOrganization))

	orgs, err := f.layout.Organizations()
	require.NoError(t, err)
	assert.Empty(t, orgs, "nothing is persisted")
	f.assertWorkspaceClean(t)
}

func TestIngest_ActiveOrganizationFallback(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.stateFile, []byte(`{"active_inn": "7701234567"}`), 0o644))
	path := testutil.WriteFile(t, f.uploads, "notice.txt", tenderText)

	_, err := f.pipeline.Ingest(context.Background(), "", []string{path})
	require.NoError(t, err)

	list, err := f.registry.List(context.Background(), "7701234567")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIngest_MixedBatchCompletes(t *testing.T) {
	f := newFixture(t)
	docx := testutil.WriteDocx(t, f.uploads, "lot.docx", []string{"Срок исполнения: ", "01.01.2099 10:00"}, []string{"артикул: CD34 цена 200"})
	xlsx := testutil.WriteXLSX(t, f.uploads, "items.xlsx", []any{"артикул: EF56 цена 300", 7})
	csv := testutil.WriteFile(t, f.uploads, "items.csv", "артикул;GH78\nцена;400\n")
	exe := testutil.WriteFile(t, f.uploads, "setup.exe", "MZ")
	img := testutil.WriteFile(t, f.uploads, "scan.png", "\x89PNG")
	odt := testutil.WriteFile(t, f.uploads, "notes.odt", "opaque")
	broken := testutil.WriteFile(t, f.uploads, "broken.docx", "not a zip")

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{docx, xlsx, csv, exe, img, odt, broken})
	require.NoError(t, err)
	require.Len(t, res.Files, 7)

	assert.Equal(t, []model.ProductCandidate{
		{Code: "CD34", Price: "200"},
		{Code: "EF56", Price: "300"},
	}, res.Candidates)
	assert.Contains(t, res.Text, "01.01.2099 10:00")
	assert.Contains(t, res.Text, "артикул;GH78")

	assert.True(t, res.Files[3].Blocked)
	assert.Equal(t, ".exe", res.Files[3].Extension)
	assert.Empty(t, res.Files[4].Error)
	assert.Empty(t, res.Files[5].Error)
	assert.NotEmpty(t, res.Files[6].Error)
	assert.Equal(t, model.TenderStatusActive, res.Tender.Status)
}

func TestIngest_NestedArchives(t *testing.T) {
	f := newFixture(t)
	scratch := t.TempDir()

	innerDocx := testutil.WriteDocx(t, scratch, "inner.docx", []string{"артикул: IN1 цена 10"})
	inner := testutil.WriteZIP(t, scratch, "inner.zip",
		testutil.Entry{Name: "docs/inner.docx", Content: testutil.ReadFile(t, innerDocx)},
		testutil.TextEntry("run.bat", "echo"),
	)
	outer := testutil.WriteZIP(t, f.uploads, "bundle.zip",
		testutil.TextEntry("a.txt", "Срок исполнения: 01.01.2099 10:00\nартикул: OUT1 цена 20"),
		testutil.Entry{Name: "nested/inner.zip", Content: testutil.ReadFile(t, inner)},
		testutil.TextEntry("empty.txt", ""),
	)

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{outer})
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	meta := res.Files[0]
	assert.Equal(t, outer, meta.Path)
	assert.Equal(t, ".zip", meta.Extension)
	require.NotNil(t, meta.NestedFiles)
	assert.Equal(t, 3, *meta.NestedFiles)
	assert.Empty(t, meta.Error)

	assert.Equal(t, []model.ProductCandidate{
		{Code: "OUT1", Price: "20"},
		{Code: "IN1", Price: "10"},
	}, res.Candidates)
	assert.Equal(t, "Срок исполнения: 01.01.2099 10:00\nартикул: OUT1 цена 20\nартикул: IN1 цена 10", res.Text)
	f.assertWorkspaceClean(t)
}

func TestIngest_RARArchive(t *testing.T) {
	f := newFixture(t)
	rar := testutil.WriteRAR(t, f.uploads, "lot.rar", testutil.RARArchive)

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{rar})
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	meta := res.Files[0]
	assert.Equal(t, ".rar", meta.Extension)
	assert.Empty(t, meta.Error)
	require.NotNil(t, meta.NestedFiles)
	assert.Equal(t, 2, *meta.NestedFiles)

	assert.Equal(t, "5012345678", res.Tender.Number)
	assert.Equal(t, []model.ProductCandidate{
		{Code: "RR10", Price: "700"},
		{Code: "RR20", Price: "900"},
	}, res.Candidates)
	f.assertWorkspaceClean(t)
}

func TestIngest_SameArchiveTwiceInOneCall(t *testing.T) {
	f := newFixture(t)
	zip := testutil.WriteZIP(t, f.uploads, "bundle.zip", testutil.TextEntry("a.txt", "артикул: A1 цена 1"))

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{zip, zip})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 2)
	for _, m := range res.Files {
		require.NotNil(t, m.NestedFiles)
		assert.Equal(t, 1, *m.NestedFiles)
	}
}

func TestIngest_CorruptArchiveIsRecorded(t *testing.T) {
	f := newFixture(t)
	bad := testutil.WriteFile(t, f.uploads, "bad.zip", "PK not really")
	good := testutil.WriteFile(t, f.uploads, "notice.txt", tenderText)

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{bad, good})
	require.NoError(t, err)
	assert.Contains(t, res.Files[0].Error, "zip: open archive")
	require.NotNil(t, res.Files[0].NestedFiles)
	assert.Zero(t, *res.Files[0].NestedFiles)
	assert.Len(t, res.Candidates, 1)
	f.assertWorkspaceClean(t)
}

func TestIngest_StrictModeFailsOnCorruptContainer(t *testing.T) {
	f := newFixture(t, func(c *config.IngestConfig) { c.Strict = true })
	bad := testutil.WriteFile(t, f.uploads, "bad.zip", "PK not really")

	_, err := f.pipeline.Ingest(context.Background(), testINN, []string{bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt container")

	list, err := f.registry.List(context.Background(), testINN)
	require.NoError(t, err)
	assert.Empty(t, list)
	f.assertWorkspaceClean(t)
}

func TestIngest_StrictModeFailsOnCorruptDocument(t *testing.T) {
	f := newFixture(t, func(c *config.IngestConfig) { c.Strict = true })
	bad := testutil.WriteFile(t, f.uploads, "bad.docx", "not a zip")

	_, err := f.pipeline.Ingest(context.Background(), testINN, []string{bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, extract.ErrCorruptContainer))
}

func TestIngest_UnsupportedArchive(t *testing.T) {
	f := newFixture(t)
	path := testutil.WriteFile(t, f.uploads, "bundle.7z", "7z\xbc\xaf")

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{path})
	require.NoError(t, err)
	assert.Contains(t, res.Files[0].Error, "unsupported archive format .7z")
	assert.Nil(t, res.Files[0].NestedFiles)
}

func TestIngest_DepthLimit(t *testing.T) {
	f := newFixture(t, func(c *config.IngestConfig) { c.MaxDepth = 1 })
	scratch := t.TempDir()

	inner := testutil.WriteZIP(t, scratch, "inner.zip", testutil.TextEntry("deep.txt", "артикул: DEEP цена 1"))
	outer := testutil.WriteZIP(t, f.uploads, "outer.zip",
		testutil.TextEntry("top.txt", "артикул: TOP цена 2"),
		testutil.Entry{Name: "inner.zip", Content: testutil.ReadFile(t, inner)},
	)

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{outer})
	require.NoError(t, err)
	assert.Equal(t, []model.ProductCandidate{{Code: "TOP", Price: "2"}}, res.Candidates)
	f.assertWorkspaceClean(t)
}

func TestIngest_EntryBudget(t *testing.T) {
	f := newFixture(t, func(c *config.IngestConfig) { c.MaxEntries = 2 })
	zip := testutil.WriteZIP(t, f.uploads, "many.zip",
		testutil.TextEntry("1.txt", "артикул: A1 цена 1"),
		testutil.TextEntry("2.txt", "артикул: A2 цена 2"),
		testutil.TextEntry("3.txt", "артикул: A3 цена 3"),
	)

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{zip})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 2)
	assert.Contains(t, res.Files[0].Error, "budget exceeded")
	require.NotNil(t, res.Files[0].NestedFiles)
	assert.Equal(t, 2, *res.Files[0].NestedFiles)
}

func TestIngest_ByteBudgetStrictStillRecoverable(t *testing.T) {
	f := newFixture(t, func(c *config.IngestConfig) {
		c.MaxTotalBytes = 8
		c.Strict = true
	})
	zip := testutil.WriteZIP(t, f.uploads, "big.zip", testutil.TextEntry("big.txt", "0123456789abcdef"))

	res, err := f.pipeline.Ingest(context.Background(), testINN, []string{zip})
	require.NoError(t, err)
	assert.Contains(t, res.Files[0].Error, "budget exceeded")
}

func TestIngest_Cancelled(t *testing.T) {
	f := newFixture(t)
	path := testutil.WriteFile(t, f.uploads, "notice.txt", tenderText)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.Ingest(ctx, testINN, []string{path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	f.assertWorkspaceClean(t)
}

func TestIngest_NoFiles(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline.Ingest(context.Background(), testINN, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "manual", res.Tender.Number)
	assert.Equal(t, "15.03.2026 12:00", res.Tender.Deadline)
	assert.Equal(t, model.TenderStatusExpired, res.Tender.Status)
}
