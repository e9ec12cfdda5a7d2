package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Config struct {
	Enabled    bool
	URL        string
	Index      string
	Username   string
	Password   string
	MaxRetries int
}

// ProductDocument is the indexed shape of a store product
type ProductDocument struct {
	ID           int64     `json:"id"`
	Nom          string    `json:"nom"`
	Description  string    `json:"description"`
	Prix         float64   `json:"prix"`
	CategorieID  *int64    `json:"categorie_id"`
	CategorieNom string    `json:"categorie_nom"`
	Actif        bool      `json:"actif"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewProductDocument(p *models.Product) ProductDocument {
	doc := ProductDocument{
		ID:          p.ID,
		Nom:         p.Nom,
		Prix:        p.Prix,
		CategorieID: p.CategorieID,
		Actif:       p.Actif,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Description != nil {
		doc.Description = *p.Description
	}
	if p.CategorieNom != nil {
		doc.CategorieNom = *p.CategorieNom
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	return doc
}

// ProductIndex wraps the Elasticsearch product index
type ProductIndex struct {
	client *elasticsearch.Client
	config Config
}

// NewProductIndex connects and creates the index when missing
func NewProductIndex(cfg Config) (*ProductIndex, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	idx := &ProductIndex{client: es, config: cfg}
	if err := idx.EnsureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}
	return idx, nil
}

func indexMapping() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"french_analyzer": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding", "french_elision", "french_stop", "french_stemmer"},
					},
				},
				"filter": map[string]any{
					"french_elision": map[string]any{
						"type":          "elision",
						"articles_case": true,
						"articles":      []string{"l", "m", "t", "qu", "n", "s", "j", "d", "c"},
					},
					"french_stop": map[string]any{
						"type":      "stop",
						"stopwords": "_french_",
					},
					"french_stemmer": map[string]any{
						"type":     "stemmer",
						"language": "light_french",
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id": map[string]any{"type": "long"},
				"nom": map[string]any{
					"type":     "text",
					"analyzer": "french_analyzer",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
					},
				},
				"description":   map[string]any{"type": "text", "analyzer": "french_analyzer"},
				"prix":          map[string]any{"type": "scaled_float", "scaling_factor": 100},
				"categorie_id":  map[string]any{"type": "long"},
				"categorie_nom": map[string]any{"type": "keyword"},
				"actif":         map[string]any{"type": "boolean"},
				"updated_at":    map[string]any{"type": "date"},
			},
		},
	}
}

func (c *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{c.config.Index}}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mappingJSON, err := json.Marshal(indexMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// Search returns the ids of matching active products in relevance order and the total hit count
func (c *ProductIndex) Search(ctx context.Context, f models.ProductFilter) ([]int64, int, error) {
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	body := map[string]any{
		"query":            buildSearchQuery(f.Query, f.CategorieID),
		"sort":             buildSortQuery(f.Query),
		"from":             (page - 1) * size,
		"size":             size,
		"_source":          []string{"id"},
		"track_total_hits": true,
	}

	searchJSON, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(searchJSON),
	}.Do(ctx, c.client)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int64, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		ids[i] = hit.Source.ID
	}
	return ids, response.Hits.Total.Value, nil
}

func buildSearchQuery(query string, categoryID *int64) map[string]any {
	filters := []map[string]any{
		{"term": map[string]any{"actif": true}},
	}
	if categoryID != nil {
		filters = append(filters, map[string]any{"term": map[string]any{"categorie_id": *categoryID}})
	}

	boolQuery := map[string]any{"filter": filters}
	if query != "" {
		boolQuery["must"] = []map[string]any{
			{
				"multi_match": map[string]any{
					"query":     query,
					"fields":    []string{"nom^2", "description", "categorie_nom"},
					"fuzziness": "AUTO",
				},
			},
		}
	}
	return map[string]any{"bool": boolQuery}
}

func buildSortQuery(query string) []map[string]any {
	if query != "" {
		return []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
			{"nom.keyword": map[string]any{"order": "asc"}},
		}
	}
	return []map[string]any{
		{"nom.keyword": map[string]any{"order": "asc"}},
	}
}

func (c *ProductIndex) IndexProduct(ctx context.Context, p *models.Product) error {
	docJSON, err := json.Marshal(NewProductDocument(p))
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(p.ID, 10),
		Body:       bytes.NewReader(docJSON),
		Refresh:    "wait_for",
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}
	return nil
}

func (c *ProductIndex) DeleteProduct(ctx context.Context, id int64) error {
	res, err := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(id, 10),
		Refresh:    "wait_for",
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// BulkIndex replaces the documents of products in one _bulk call
func (c *ProductIndex) BulkIndex(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	body, err := bulkBody(c.config.Index, products)
	if err != nil {
		return 0, err
	}

	res, err := esapi.BulkRequest{Body: bytes.NewReader(body), Refresh: "true"}.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("bulk error: %s", res.String())
	}

	var response struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	indexed := 0
	for _, item := range response.Items {
		for _, result := range item {
			if result.Status < 300 {
				indexed++
			}
		}
	}
	if response.Errors {
		slog.Warn("Some products failed to index", "indexed", indexed, "total", len(products))
	}
	return indexed, nil
}

func bulkBody(index string, products []models.Product) ([]byte, error) {
	var buf bytes.Buffer
	for i := range products {
		meta := map[string]any{"index": map[string]any{"_index": index, "_id": strconv.FormatInt(products[i].ID, 10)}}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return nil, err
		}
		if err := json.NewEncoder(&buf).Encode(NewProductDocument(&products[i])); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (c *ProductIndex) HealthCheck(ctx context.Context) error {
	res, err := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", strings.TrimSpace(res.String()))
	}
	return nil
}
