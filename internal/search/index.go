// internal/search/index.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrSearchFailed  = errors.New("search request failed")
)

// Document is the searchable projection of an application.
type Document struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId,omitempty"`
	CompanyName   string   `json:"companyName"`
	BusinessType  string   `json:"businessType,omitempty"`
	LoanPurpose   string   `json:"loanPurpose,omitempty"`
	Tags          []string `json:"tags"`
	LoanAmount    float64  `json:"loanAmount"`
	InterestRate  float64  `json:"interestRate"`
	LoanTenure    float64  `json:"loanTenure"`
	FundingStatus string   `json:"fundingStatus"`
	IsSpecial     bool     `json:"isSpecial"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

// NewDocument projects app for indexing. Malformed tags are dropped.
func NewDocument(app *models.Application) Document {
	return Document{
		ID:            app.ID.String(),
		UserID:        app.UserID,
		CompanyName:   app.CompanyName,
		BusinessType:  app.BusinessType,
		LoanPurpose:   app.LoanPurpose,
		Tags:          app.Tags.Names(),
		LoanAmount:    app.LoanAmount.Float64(),
		InterestRate:  app.InterestRate.Float64(),
		LoanTenure:    app.LoanTenure.Float64(),
		FundingStatus: app.FundingStatus,
		IsSpecial:     app.IsSpecial,
		CreatedAt:     app.CreatedAt,
	}
}

type Hit struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Document Document `json:"application"`
}

type Result struct {
	Hits     []Hit   `json:"hits"`
	Total    int64   `json:"total"`
	MaxScore float64 `json:"maxScore"`
	Took     int64   `json:"took"`
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "keyword"},
      "userId":        {"type": "keyword"},
      "companyName":   {"type": "text"},
      "businessType":  {"type": "text"},
      "loanPurpose":   {"type": "text"},
      "tags":          {"type": "keyword"},
      "loanAmount":    {"type": "double"},
      "interestRate":  {"type": "double"},
      "loanTenure":    {"type": "double"},
      "fundingStatus": {"type": "keyword"},
      "isSpecial":     {"type": "boolean"},
      "createdAt":     {"type": "date"}
    }
  }
}`

// Index reads and writes the application search index.
type Index struct {
	client  *elasticsearch.Client
	name    string
	refresh string
	logger  logger.Logger
}

func NewIndex(client *elasticsearch.Client, name string, log logger.Logger) *Index {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Index{client: client, name: name, refresh: "wait_for", logger: log}
}

func (i *Index) Name() string { return i.name }

// EnsureIndex creates the index with its mapping when it does not exist.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.name}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: exists %s: %v", ErrSearchFailed, i.name, err)
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: exists %s: %s", ErrSearchFailed, i.name, res.Status())
	}

	res, err = esapi.IndicesCreateRequest{Index: i.name, Body: strings.NewReader(mapping)}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrSearchFailed, i.name, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("%w: create %s: %s", ErrSearchFailed, i.name, res.Status())
	}
	i.logger.Info("created search index", map[string]interface{}{"index": i.name})
	return nil
}

// Put indexes or replaces the application document.
func (i *Index) Put(ctx context.Context, app *models.Application) error {
	body, err := json.Marshal(NewDocument(app))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: app.ID.String(),
		Body:       bytes.NewReader(body),
		Refresh:    i.refresh,
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: index %s: %v", ErrSearchFailed, app.ID, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("%w: index %s: %s", ErrSearchFailed, app.ID, res.Status())
	}
	return nil
}

// Delete removes a document. A missing document is not an error.
func (i *Index) Delete(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: i.name, DocumentID: id, Refresh: i.refresh}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrSearchFailed, id, err)
	}
	defer drain(res)
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("%w: delete %s: %s", ErrSearchFailed, id, res.Status())
	}
	return nil
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string   `json:"_id"`
			Score  *float64 `json:"_score"`
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs q, which must already be normalized.
func (i *Index) Search(ctx context.Context, q Query) (*Result, error) {
	body, err := json.Marshal(q.Body())
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	from, size := q.From, q.Size
	res, err := esapi.SearchRequest{
		Index: []string{i.name},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}.Do(ctx, i.client)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer drain(res)

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, i.name)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	result := &Result{Hits: make([]Hit, 0, len(sr.Hits.Hits)), Total: sr.Hits.Total.Value, Took: sr.Took}
	if sr.Hits.MaxScore != nil {
		result.MaxScore = *sr.Hits.MaxScore
	}
	for _, h := range sr.Hits.Hits {
		hit := Hit{ID: h.ID, Document: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// OpenApplicationsByTags returns ids of open applications carrying at
// least one of tags, for use as a ranking pre-filter.
func (i *Index) OpenApplicationsByTags(ctx context.Context, tags []string, limit int) ([]string, error) {
	if len(tags) == 0 {
		return []string{}, nil
	}
	q, err := Query{Tags: tags, Size: limit}.Normalize(DefaultSize, 10000)
	if err != nil {
		return nil, err
	}
	result, err := i.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(result.Hits))
	for n, h := range result.Hits {
		ids[n] = h.ID
	}
	return ids, nil
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}
