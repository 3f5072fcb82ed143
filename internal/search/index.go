// Package search keeps an Elasticsearch index of catalog products.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

type Document struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  uint   `json:"category_id"`
	Price       int64  `json:"price"`
	IsActive    bool   `json:"is_active"`
}

func DocumentFromProduct(p *models.Product) Document {
	return Document{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
		IsActive:    p.IsActive,
	}
}

type Index struct {
	es   *elasticsearch.Client
	name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{es: es, name: name}
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "long"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "category_id": {"type": "long"},
      "price":       {"type": "long"},
      "is_active":   {"type": "boolean"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.name}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: exists %s: %w", i.name, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = i.es.Indices.Create(i.name,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("search: create %s: %w", i.name, err)
	}
	return checkResponse(res, "create index")
}

func (i *Index) Put(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: marshal: %w", err)
	}

	res, err := i.es.Index(i.name, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(strconv.FormatUint(uint64(doc.ID), 10)),
		i.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("search: index %d: %w", doc.ID, err)
	}
	return checkResponse(res, "index")
}

func (i *Index) Delete(ctx context.Context, id uint) error {
	res, err := i.es.Delete(i.name, strconv.FormatUint(uint64(id), 10),
		i.es.Delete.WithContext(ctx),
		i.es.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("search: delete %d: %w", id, err)
	}
	if res.StatusCode == 404 {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, "delete")
}

// Search runs a fuzzy multi_match over active products and returns the total
// hit count and the ids of the requested page, best match first.
func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"is_active": true}},
				},
			},
		},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.name),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError(res, "query")
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	return r.Hits.Total.Value, ids, nil
}

func checkResponse(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res, op)
	}
	return nil
}

func responseError(res *esapi.Response, op string) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("search: %s: %s: %s", op, res.Status(), body)
}
