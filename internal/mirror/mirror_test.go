package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "dataroom/internal/domain/models/dataroom"
)

func node(id, parent, name string, typ models.NodeType) models.Node {
	return models.Node{ID: id, DataroomID: "dr", ParentID: models.StringPtr(parent), Name: name, Type: typ}
}

func sampleNodes() []models.Node {
	return []models.Node{
		node("contracts", "", "Contracts", models.NodeTypeFolder),
		node("hr", "", "HR", models.NodeTypeFolder),
		node("2024", "contracts", "2024 Deals", models.NodeTypeFolder),
		node("msa", "2024", "MSA final.pdf", models.NodeTypeFile),
		node("offer", "hr", "offer letter.docx", models.NodeTypeFile),
		node("index", "", "index.txt", models.NodeTypeFile),
	}
}

func TestLoad_OwnerMode(t *testing.T) {
	a := Load(sampleNodes(), "owner@example.com")

	assert.Equal(t, ModeOwner, a.Mode())
	assert.Equal(t, models.RootID, a.RootID())
	assert.Equal(t, "Data Room (owner@example.com)", a.Root().Name)
	assert.Equal(t, 6, a.Len())
	assert.Equal(t, []string{"contracts", "hr", "index"}, a.Children(models.RootID))
	assert.Equal(t, []string{"2024"}, a.Children("contracts"))
	assert.Empty(t, a.Children("msa"))
}

func TestLoad_RebuildsWholesale(t *testing.T) {
	a := Load(sampleNodes(), "")
	assert.Equal(t, "Data Room", a.Root().Name)

	// After a delete round trip the new list no longer has hr or its file
	var remaining []models.Node
	for _, n := range sampleNodes() {
		if n.ID != "hr" && n.ID != "offer" {
			remaining = append(remaining, n)
		}
	}
	b := Load(remaining, "")

	assert.Equal(t, []string{"contracts", "index"}, b.Children(models.RootID))
	_, ok := b.Get("offer")
	assert.False(t, ok)
	// The old arena is untouched
	assert.Equal(t, []string{"contracts", "hr", "index"}, a.Children(models.RootID))
}

func TestBreadcrumbs_Owner(t *testing.T) {
	a := Load(sampleNodes(), "o@x.io")

	crumbs := a.Breadcrumbs("2024")
	assert.Equal(t, []models.Breadcrumb{
		{ID: models.RootID, Name: "Data Room (o@x.io)", Path: ""},
		{ID: "contracts", Name: "Contracts", Path: "/Contracts"},
		{ID: "2024", Name: "2024 Deals", Path: "/Contracts/2024%20Deals"},
	}, crumbs)

	assert.Len(t, a.Breadcrumbs(models.RootID), 1)
	assert.Nil(t, a.Breadcrumbs("missing"))
}

func TestLoadShared_Anchor(t *testing.T) {
	// Server only returns the anchor and its subtree
	visible := []models.Node{
		node("contracts", "", "Contracts", models.NodeTypeFolder),
		node("2024", "contracts", "2024 Deals", models.NodeTypeFolder),
		node("msa", "2024", "MSA final.pdf", models.NodeTypeFile),
	}
	anchor := "contracts"
	a := LoadShared(visible, &anchor, "Acme room")

	assert.Equal(t, ModeShared, a.Mode())
	assert.Equal(t, "contracts", a.RootID())
	assert.Equal(t, 3, a.Len())

	crumbs := a.Breadcrumbs("2024")
	assert.Equal(t, []models.Breadcrumb{
		{ID: "contracts", Name: "Contracts", Path: ""},
		{ID: "2024", Name: "2024 Deals", Path: "/2024%20Deals"},
	}, crumbs)

	assert.Equal(t, []string{"2024%20Deals", "MSA%20final.pdf"}, a.PathSegments("msa"))

	folder, ok := a.FolderByPath("/2024 Deals")
	require.True(t, ok)
	assert.Equal(t, "2024", folder.ID)

	root, ok := a.FolderByPath("/")
	require.True(t, ok)
	assert.Equal(t, "contracts", root.ID)
}

func TestLoadShared_WholeRoom(t *testing.T) {
	a := LoadShared(sampleNodes(), nil, "Acme room")

	assert.Equal(t, models.RootID, a.RootID())
	assert.Equal(t, "Acme room", a.Root().Name)
	assert.Equal(t, []string{"contracts", "hr", "index"}, a.Children(models.RootID))
	assert.Equal(t, "Acme room", a.Breadcrumbs("hr")[0].Name)
}

func TestFolderByPath(t *testing.T) {
	a := Load(sampleNodes(), "")

	tests := []struct {
		name   string
		path   string
		wantID string
		wantOK bool
	}{
		{"root", "", models.RootID, true},
		{"slash root", "/", models.RootID, true},
		{"nested", "/Contracts/2024 Deals", "2024", true},
		{"encoded", "/Contracts/2024%20Deals", "2024", true},
		{"case-insensitive", "/contracts", "contracts", true},
		{"file is not a folder", "/index.txt", "", false},
		{"missing", "/Nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := a.FolderByPath(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	a := Load(sampleNodes(), "")

	got := a.Search("  2024 ")
	require.Len(t, got, 1)
	assert.Equal(t, "2024", got[0].ID)

	got = a.Search("e")
	var names []string
	for _, n := range got {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"2024 Deals", "index.txt", "offer letter.docx"}, names)

	assert.Nil(t, a.Search(""))
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	assert.False(t, s.IsSelected("a"))

	s.Toggle("a")
	s.Set("b", true)
	s.Set("c", true)
	s.Set("c", false)
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	s.Toggle("a")
	assert.Equal(t, 1, s.Count())

	s.Set("ghost", true)
	s.Prune(Load([]models.Node{node("b", "", "B", models.NodeTypeFile)}, ""))
	assert.Equal(t, []string{"b"}, s.IDs())

	s.Clear()
	assert.Zero(t, s.Count())
}

func TestExpansion(t *testing.T) {
	e := NewExpansion()
	assert.True(t, e.IsExpanded(models.RootID))
	assert.False(t, e.IsExpanded("contracts"))

	e.Toggle("contracts")
	assert.True(t, e.IsExpanded("contracts"))
	e.Toggle("contracts")
	assert.False(t, e.IsExpanded("contracts"))

	e.ExpandTo(Load(sampleNodes(), ""), "msa")
	assert.True(t, e.IsExpanded("contracts"))
	assert.True(t, e.IsExpanded("2024"))
	assert.False(t, e.IsExpanded("hr"))
}
