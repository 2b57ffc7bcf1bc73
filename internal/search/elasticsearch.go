// internal/search/elasticsearch.go
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"airquality-agent/internal/models"
)

// ElasticsearchSearcher implements the resolver's Searcher against a
// location index. Same two-pass contract as the Postgres backend: a
// phrase-prefix pass, and a fuzzy pass only when the first finds nothing.
type ElasticsearchSearcher struct {
	client *elasticsearch.Client
	index  string
	limit  int
}

func NewElasticsearchSearcher(client *elasticsearch.Client, index string, limit int) *ElasticsearchSearcher {
	if limit <= 0 {
		limit = 20
	}
	return &ElasticsearchSearcher{
		client: client,
		index:  index,
		limit:  limit,
	}
}

func (s *ElasticsearchSearcher) Search(ctx context.Context, text string) ([]models.LocationCandidate, error) {
	prefixQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"match_phrase_prefix": map[string]interface{}{
				"name": text,
			},
		},
	}
	candidates, err := s.run(ctx, prefixQuery, text, false)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	fuzzyQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"name": map[string]interface{}{
					"query":     text,
					"fuzziness": "AUTO",
				},
			},
		},
	}
	return s.run(ctx, fuzzyQuery, text, true)
}

type esHit struct {
	Score  float64 `json:"_score"`
	Source struct {
		Level           string `json:"level"`
		Name            string `json:"name"`
		Code            string `json:"code"`
		ParentCode      string `json:"parent_code"`
		StateName       string `json:"state_name"`
		DistrictName    string `json:"district_name"`
		SubDistrictName string `json:"sub_district_name"`
	} `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		MaxScore float64 `json:"max_score"`
		Hits     []esHit `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSearcher) run(ctx context.Context, queryBody map[string]interface{}, text string, fuzzy bool) ([]models.LocationCandidate, error) {
	body, _ := json.Marshal(queryBody)
	size := s.limit

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.Status())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("elasticsearch decode failed: %w", err)
	}

	candidates := make([]models.LocationCandidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		c := models.LocationCandidate{
			Level:        models.LocationLevel(hit.Source.Level),
			Name:         hit.Source.Name,
			Code:         hit.Source.Code,
			ParentCode:   hit.Source.ParentCode,
			StateName:    hit.Source.StateName,
			DistrictName: hit.Source.DistrictName,
			SubDistrict:  hit.Source.SubDistrictName,
		}
		if parsed.Hits.MaxScore > 0 {
			c.Similarity = hit.Score / parsed.Hits.MaxScore
		}
		if fuzzy {
			c.MatchType = models.MatchFuzzy
		} else if strings.EqualFold(hit.Source.Name, text) {
			c.MatchType = models.MatchExact
			c.Similarity = 1.0
		} else {
			c.MatchType = models.MatchPrefix
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}
