package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// AuditEntry is the record written for every rule evaluated in a real run.
type AuditEntry struct {
	DispatchID string    `json:"dispatchId"`
	RuleID     string    `json:"ruleId"`
	RuleName   string    `json:"ruleName"`
	Trigger    string    `json:"trigger"`
	Channel    string    `json:"channel"`
	Recipient  string    `json:"recipient,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Status     string    `json:"status"`
	ErrorCode  string    `json:"errorCode,omitempty"`
	Gaps       []string  `json:"gaps,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

// AuditSink stores audit entries. Failures are reported but never block a send.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// NopAudit discards entries; used when no audit cluster is configured.
type NopAudit struct{}

func (NopAudit) Record(context.Context, AuditEntry) error { return nil }

// ElasticAudit indexes entries into an Elasticsearch index, one document per
// dispatch id.
type ElasticAudit struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticAudit(client *elasticsearch.Client, index string) *ElasticAudit {
	return &ElasticAudit{client: client, index: index}
}

func (a *ElasticAudit) Record(ctx context.Context, entry AuditEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}

	res, err := a.client.Index(
		a.index,
		bytes.NewReader(body),
		a.client.Index.WithContext(ctx),
		a.client.Index.WithDocumentID(entry.DispatchID),
	)
	if err != nil {
		return fmt.Errorf("index audit entry: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index audit entry: %s: %s", res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}
