package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptist/category"
	"promptist/prompt"
)

func TestTreeIsTwoLevel(t *testing.T) {
	tree := category.Tree()
	require.NotEmpty(t, tree)
	ids := map[string]bool{}
	for _, m := range tree {
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.Subcategories, m.ID)
		for _, s := range m.Subcategories {
			assert.False(t, ids[s.ID], "duplicate subcategory %s", s.ID)
			ids[s.ID] = true
		}
	}
}

func TestTreeIsACopy(t *testing.T) {
	a := category.Tree()
	a[0].Subcategories[0].Name = "changed"
	assert.NotEqual(t, "changed", category.Tree()[0].Subcategories[0].Name)
}

func TestFind(t *testing.T) {
	m, s, ok := category.Find("Debugging")
	require.True(t, ok)
	assert.Equal(t, "coding", m.ID)
	assert.Equal(t, "debugging", s.ID)

	_, _, ok = category.Find("nope")
	assert.False(t, ok)
}

func TestWithCounts(t *testing.T) {
	review := "code-review"
	templates := []prompt.Template{
		{ID: "1", CollectionID: &review},
		{ID: "2", Tags: []string{"Debugging", "testing"}},
		{ID: "3", Tags: []string{"email"}},
		{ID: "4"},
	}

	tree := category.WithCounts(templates)
	counts := map[string]int{}
	for _, m := range tree {
		counts[m.ID] = m.Count
		for _, s := range m.Subcategories {
			counts[s.ID] = s.Count
		}
	}

	assert.Equal(t, 1, counts["code-review"])
	assert.Equal(t, 1, counts["debugging"])
	assert.Equal(t, 1, counts["testing"])
	assert.Equal(t, 2, counts["coding"], "template 2 counts once for its major")
	assert.Equal(t, 1, counts["email"])
	assert.Equal(t, 1, counts["writing"])
	assert.Equal(t, 0, counts["research"])
}
