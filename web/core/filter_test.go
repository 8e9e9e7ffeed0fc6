package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

func comic(slug string, categories ...string) core.Comic {
	c := core.Comic{Slug: slug, Title: slug}
	for i, name := range categories {
		c.Categories = append(c.Categories, core.Category{ID: i + 1, Name: name})
	}
	return c
}

func TestFilterByCategory_All(t *testing.T) {
	records := []core.Comic{comic("a", "Action"), comic("b", "Drama")}
	for _, all := range []string{"All", "all", "ALL", ""} {
		require.Equal(t, records, core.FilterByCategory(records, all), all)
	}
	require.Empty(t, core.FilterByCategory([]core.Comic{}, "All"))
	require.Nil(t, core.FilterByCategory(nil, "All"))
}

func TestFilterByCategory_CaseInsensitive(t *testing.T) {
	records := []core.Comic{comic("a", "Action"), comic("b", "Drama")}
	got := core.FilterByCategory(records, "action")
	require.Equal(t, []core.Comic{records[0]}, got)
}

func TestFilterByCategory_AnyCategoryMatchesAndOrderKept(t *testing.T) {
	records := []core.Comic{
		comic("a", "Drama", "Action"),
		comic("b", "Comedy"),
		comic("c", "ACTION"),
		comic("d"),
	}
	got := core.FilterByCategory(records, "Action")
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Slug)
	require.Equal(t, "c", got[1].Slug)
}

func TestFilterByCategory_NoMatchAndNil(t *testing.T) {
	records := []core.Comic{comic("a", "Action")}
	require.Empty(t, core.FilterByCategory(records, "Horror"))
	require.Nil(t, core.FilterByCategory(nil, "Horror"))
}

func TestSameName(t *testing.T) {
	require.True(t, core.SameName("Éclair", "éCLAIR"))
	require.True(t, core.SameName("Sci-Fi", "sci-fi"))
	require.False(t, core.SameName("Action", "Actions"))
}
