package messagequeue

import "time"

// EntityChangedPayload is the schema for dashboard.*.changed messages.
type EntityChangedPayload struct {
	Kind       string    `json:"kind"`
	EntityID   string    `json:"entity_id"`
	Op         string    `json:"op"`
	CacheKey   string    `json:"cache_key"`
	OriginID   string    `json:"origin_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
