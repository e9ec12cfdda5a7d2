package search

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

func TestBuildSearchQueryFiltersActiveAndCategory(t *testing.T) {
	cat := int64(4)
	q := buildSearchQuery("huile", &cat)

	raw, err := json.Marshal(q)
	require.NoError(t, err)

	var decoded struct {
		Bool struct {
			Filter []map[string]map[string]any `json:"filter"`
			Must   []map[string]any            `json:"must"`
		} `json:"bool"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Len(t, decoded.Bool.Filter, 2)
	assert.Equal(t, true, decoded.Bool.Filter[0]["term"]["actif"])
	assert.Equal(t, float64(4), decoded.Bool.Filter[1]["term"]["categorie_id"])
	assert.Len(t, decoded.Bool.Must, 1)
}

func TestBuildSearchQueryWithoutText(t *testing.T) {
	q := buildSearchQuery("", nil)
	boolQuery := q["bool"].(map[string]any)

	_, hasMust := boolQuery["must"]
	assert.False(t, hasMust)
	assert.Len(t, boolQuery["filter"], 1)
}

func TestBuildSortQuery(t *testing.T) {
	assert.Len(t, buildSortQuery("savon"), 2)
	assert.Len(t, buildSortQuery(""), 1)
}

func TestBulkBodyIsNDJSON(t *testing.T) {
	desc := "Huile d'argan"
	products := []models.Product{
		{ID: 1, Nom: "Huile", Description: &desc, Prix: 19.9, Actif: true},
		{ID: 2, Nom: "Savon noir", Prix: 8, Actif: true},
	}

	body, err := bulkBody("products", products)
	require.NoError(t, err)

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"index":{"_index":"products","_id":"1"}}`, lines[0])

	var doc ProductDocument
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &doc))
	assert.Equal(t, "Huile d'argan", doc.Description)
	assert.False(t, doc.UpdatedAt.IsZero())
}
