// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"strings"

	"recruit-automation/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// auditMapping keeps dispatch audit documents queryable by rule, trigger and outcome.
const auditMapping = `{
  "mappings": {
    "properties": {
      "dispatchId": {"type": "keyword"},
      "ruleId":     {"type": "keyword"},
      "ruleName":   {"type": "text"},
      "trigger":    {"type": "keyword"},
      "channel":    {"type": "keyword"},
      "recipient":  {"type": "keyword"},
      "subject":    {"type": "text"},
      "status":     {"type": "keyword"},
      "errorCode":  {"type": "keyword"},
      "gaps":       {"type": "keyword"},
      "sentAt":     {"type": "date"}
    }
  }
}`

// ElasticsearchClient wraps the client used for the dispatch audit log.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the audit index with its mapping if it does not exist yet.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index string) error {
	res, err := c.Client.Indices.Exists([]string{index}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.Client.Indices.Create(index,
		c.Client.Indices.Create.WithContext(ctx),
		c.Client.Indices.Create.WithBody(strings.NewReader(auditMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()

	// 400 here is resource_already_exists from a concurrent creator.
	if res.IsError() && res.StatusCode != 400 {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
