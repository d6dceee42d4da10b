package messagequeue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeTenantUpdated validates and decodes a tenant update event.
func DecodeTenantUpdated(subject string, data []byte) (TenantUpdatedPayload, error) {
	var p TenantUpdatedPayload
	if !json.Valid(data) {
		return p, fmt.Errorf("invalid JSON on subject %s", subject)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode %s: %w", subject, err)
	}
	if p.TenantID == "" {
		return p, errors.New("tenant_id is required")
	}
	return p, nil
}

// EncodeTenantUpdated validates and encodes a tenant update event.
func EncodeTenantUpdated(p TenantUpdatedPayload) ([]byte, error) {
	if p.TenantID == "" {
		return nil, errors.New("tenant_id is required")
	}
	return json.Marshal(p)
}
