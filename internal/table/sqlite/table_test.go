package sqlite

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Table {
	t.Helper()
	tbl, err := Open(filepath.Join(t.TempDir(), "links.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func TestCreateListDelete(t *testing.T) {
	tbl := openTest(t)
	ctx := t.Context()

	sortValue := 3
	link := domain.NewLink{Name: "Example", URL: "https://example.com", Category: "工具", Sort: &sortValue}
	rec, err := tbl.CreateRecord(ctx, link.Fields())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rec.ID, "rec"))

	_, err = tbl.CreateRecord(ctx, domain.Fields{"name": "Other", "url": "https://other.example"})
	require.NoError(t, err)

	recs, err := tbl.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, rec.ID, recs[0].ID)

	nav := domain.Reshape(recs)
	tools := nav.Links("工具")
	require.Len(t, tools, 1)
	assert.Equal(t, "Example", tools[0].Name)
	assert.Equal(t, "https://example.com", tools[0].URL)
	assert.Equal(t, 3, tools[0].Sort)

	require.NoError(t, tbl.DeleteRecord(ctx, rec.ID))
	recs, err = tbl.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestDeleteUnknown(t *testing.T) {
	tbl := openTest(t)

	err := tbl.DeleteRecord(t.Context(), "mock_001")
	var remote *domain.RemoteAPIError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, CodeRecordNotFound, remote.Code)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.db")
	tbl, err := Open(path)
	require.NoError(t, err)
	_, err = tbl.CreateRecord(t.Context(), domain.Fields{"name": "Kept", "url": "https://kept.example"})
	require.NoError(t, err)
	require.NoError(t, tbl.Close())

	tbl, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = tbl.Close() }()

	recs, err := tbl.ListRecords(t.Context())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Kept", recs[0].Fields["name"])
}
