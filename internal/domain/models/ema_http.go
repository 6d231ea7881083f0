package models

// Requests for the snapshot HTTP endpoints. Defined in domain for
// consistency and reuse.

type SnapshotRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
}

type SnapshotTTLRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
}
