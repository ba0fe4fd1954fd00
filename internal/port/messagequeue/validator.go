package messagequeue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Validate checks whether data is valid JSON conforming to the schema
// associated with the given subject. Subjects outside the dashboard
// namespace pass unchecked.
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}
	if !strings.HasPrefix(subject, SubjectPrefix+".") || !strings.HasSuffix(subject, ".changed") {
		return nil
	}

	var p EntityChangedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	if p.Kind == "" {
		return errors.New("schema validation failed: kind is required")
	}
	if SubjectFor(p.Kind) != subject {
		return fmt.Errorf("schema validation failed: kind %q does not match subject %s", p.Kind, subject)
	}
	if p.CacheKey == "" {
		return errors.New("schema validation failed: cache_key is required")
	}
	return nil
}
