// Package cache puts a short-lived redis read-through layer in front of the
// entity and template collaborators.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/engine/loader"
	"recruit-automation/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	entityKeyPrefix = "automation:entities:"
	templatesKey    = "automation:templates"
)

// TemplateSource lists the template catalog.
type TemplateSource interface {
	FetchTemplates(ctx context.Context) ([]models.Template, error)
}

func entityKey(kind models.EntityKind) string {
	return entityKeyPrefix + string(kind)
}

// Entities caches each entity list as JSON. Redis errors are logged and
// the backing provider is used instead.
type Entities struct {
	next   loader.EntityProvider
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewEntities(next loader.EntityProvider, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *Entities {
	return &Entities{next: next, redis: rdb, ttl: ttl, logger: logger.ForComponent(log, "entity-cache")}
}

func (c *Entities) FetchEntityList(ctx context.Context, kind models.EntityKind) ([]models.Entity, error) {
	key := entityKey(kind)
	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		list, derr := decodeEntities(kind, []byte(val))
		if derr == nil {
			return list, nil
		}
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key, "error": derr.Error()})
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	list, err := c.next.FetchEntityList(ctx, kind)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(list)
	if err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return list, nil
}

// Invalidate drops every cached entity list.
func (c *Entities) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(models.EntityKinds()))
	for _, kind := range models.EntityKinds() {
		keys = append(keys, entityKey(kind))
	}
	return c.redis.Del(ctx, keys...).Err()
}

func decodeEntities(kind models.EntityKind, data []byte) ([]models.Entity, error) {
	switch kind {
	case models.KindCandidate:
		return decodeAs[models.Candidate](data)
	case models.KindJob:
		return decodeAs[models.Job](data)
	case models.KindCompany:
		return decodeAs[models.Company](data)
	case models.KindSender:
		return decodeAs[models.Sender](data)
	case models.KindInterview:
		return decodeAs[models.Interview](data)
	case models.KindApplication:
		return decodeAs[models.Application](data)
	}
	return nil, fmt.Errorf("unsupported entity kind %q", kind)
}

func decodeAs[T models.Entity](data []byte) ([]models.Entity, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	out := make([]models.Entity, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

// Templates caches the template catalog under a single key.
type Templates struct {
	next   TemplateSource
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewTemplates(next TemplateSource, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *Templates {
	return &Templates{next: next, redis: rdb, ttl: ttl, logger: logger.ForComponent(log, "template-cache")}
}

func (c *Templates) FetchTemplates(ctx context.Context) ([]models.Template, error) {
	if val, err := c.redis.Get(ctx, templatesKey).Result(); err == nil {
		var cached []models.Template
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": templatesKey, "error": err.Error()})
	}

	templates, err := c.next.FetchTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(templates); err == nil {
		if err := c.redis.Set(ctx, templatesKey, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{"key": templatesKey, "error": err.Error()})
		}
	}
	return templates, nil
}

func (c *Templates) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, templatesKey).Err()
}
