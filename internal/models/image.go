package models

// ImageEntityType identifies what an uploaded image is attached to
type ImageEntityType string

const (
	ImageEntityFigure ImageEntityType = "figure"
	ImageEntityAvatar ImageEntityType = "avatar"
)

// ModerationStatus is the outcome of screening an uploaded image
type ModerationStatus string

const (
	ModerationApproved ModerationStatus = "APPROVED"
	ModerationRejected ModerationStatus = "REJECTED"
	// ModerationUnverified means the screening provider could not be
	// reached; the upload is refused rather than stored unscreened
	ModerationUnverified ModerationStatus = "UNVERIFIED"
)

// ModerationLabel is a single label returned by the screening provider
type ModerationLabel struct {
	Name       string  `json:"name"`
	ParentName string  `json:"parentName,omitempty"`
	Confidence float64 `json:"confidence"`
}

// ModerationDecision is the aggregate verdict for an uploaded image
type ModerationDecision struct {
	Status        ModerationStatus  `json:"status"`
	Reason        string            `json:"reason"`
	Labels        []ModerationLabel `json:"labels,omitempty"`
	MaxConfidence float64           `json:"maxConfidence"`
}
