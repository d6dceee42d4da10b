package messagequeue

// TenantUpdatedPayload is published by the organization-settings service
// whenever a tenant record changes or is deleted.
type TenantUpdatedPayload struct {
	TenantID string `json:"tenant_id"`
	Deleted  bool   `json:"deleted,omitempty"`
}
