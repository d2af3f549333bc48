// internal/search/query.go
package search

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

var ErrInvalidQuery = errors.New("invalid search query")

// Query is an investor-facing filter over the application index. Zero
// values mean "no constraint".
type Query struct {
	Keyword          string   `json:"keyword,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	MinAmount        float64  `json:"minAmount,omitempty"`
	MaxAmount        float64  `json:"maxAmount,omitempty"`
	MaxInterestRate  float64  `json:"maxInterestRate,omitempty"`
	MaxTenure        float64  `json:"maxTenure,omitempty"`
	IncludeFinalized bool     `json:"includeFinalized,omitempty"`
	SortBy           string   `json:"sortBy,omitempty"`
	From             int      `json:"from,omitempty"`
	Size             int      `json:"size,omitempty"`
}

var sortFields = map[string]string{
	"loanAmount":   "asc",
	"interestRate": "asc",
	"loanTenure":   "asc",
	"createdAt":    "desc",
}

// Normalize applies paging defaults and rejects contradictory filters.
func (q Query) Normalize(defaultSize, maxSize int) (Query, error) {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}
	if maxSize <= 0 {
		maxSize = MaxSize
	}

	switch {
	case q.From < 0:
		return q, fmt.Errorf("%w: from must not be negative", ErrInvalidQuery)
	case q.MinAmount < 0 || q.MaxAmount < 0 || q.MaxInterestRate < 0 || q.MaxTenure < 0:
		return q, fmt.Errorf("%w: numeric filters must not be negative", ErrInvalidQuery)
	case q.MaxAmount > 0 && q.MinAmount > q.MaxAmount:
		return q, fmt.Errorf("%w: minAmount %g exceeds maxAmount %g", ErrInvalidQuery, q.MinAmount, q.MaxAmount)
	}
	if q.SortBy != "" {
		if _, ok := sortFields[q.SortBy]; !ok {
			return q, fmt.Errorf("%w: cannot sort by %q", ErrInvalidQuery, q.SortBy)
		}
	}

	if q.Size < 1 {
		q.Size = defaultSize
	}
	if q.Size > maxSize {
		q.Size = maxSize
	}
	q.Keyword = strings.TrimSpace(q.Keyword)
	return q, nil
}

// Body builds the Elasticsearch request body for q.
func (q Query) Body() map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Keyword != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Keyword,
				"fields": []string{"companyName^3", "loanPurpose^2", "businessType", "tags"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if len(q.Tags) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"tags": q.Tags},
		})
	}

	amount := map[string]interface{}{}
	if q.MinAmount > 0 {
		amount["gte"] = q.MinAmount
	}
	if q.MaxAmount > 0 {
		amount["lte"] = q.MaxAmount
	}
	if len(amount) > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"loanAmount": amount},
		})
	}
	if q.MaxInterestRate > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"interestRate": map[string]interface{}{"lte": q.MaxInterestRate}},
		})
	}
	if q.MaxTenure > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"loanTenure": map[string]interface{}{"lte": q.MaxTenure}},
		})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if !q.IncludeFinalized {
		boolQuery["must_not"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"fundingStatus": "finalized"}},
		}
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
	if q.SortBy != "" {
		body["sort"] = []interface{}{
			map[string]interface{}{q.SortBy: sortFields[q.SortBy]},
			"_score",
		}
	}
	return body
}
