// internal/workers/search/search-applications/models.go
package searchapplications

import "lending-workers/internal/search"

type Input struct {
	search.Query
}

type Output struct {
	Applications []search.Hit `json:"applications"`
	Total        int64        `json:"total"`
	Returned     int          `json:"returned"`
	From         int          `json:"from"`
	Size         int          `json:"size"`
	MaxScore     float64      `json:"maxScore"`
	Took         int64        `json:"took"`
}
