package models

// Collection names of the projector models.
const (
	CollectionProjector  = "projector"
	CollectionProjection = "projection"
)

// Projector is a screen that shows projections.
type Projector struct {
	Base

	Name                 string `json:"name"`
	Scale                int    `json:"scale,omitempty"`
	Scroll               int    `json:"scroll,omitempty"`
	Width                int    `json:"width,omitempty"`
	AspectRatioNumerator int    `json:"aspect_ratio_numerator,omitempty"`
	AspectRatioDenom     int    `json:"aspect_ratio_denominator,omitempty"`
	CurrentProjectionIDs []int  `json:"current_projection_ids,omitempty"`
	PreviewProjectionIDs []int  `json:"preview_projection_ids,omitempty"`
	HistoryProjectionIDs []int  `json:"history_projection_ids,omitempty"`
	MeetingID            int    `json:"meeting_id,omitempty"`
}

// Collection implements [BaseModel].
func (Projector) Collection() string { return CollectionProjector }

// Projection puts one element (generic relation) on a projector.
type Projection struct {
	Base

	Stable             bool   `json:"stable,omitempty"`
	Type               string `json:"type,omitempty"`
	Weight             int    `json:"weight,omitempty"`
	ElementID          string `json:"element_id,omitempty"`
	CurrentProjectorID int    `json:"current_projector_id,omitempty"`
	PreviewProjectorID int    `json:"preview_projector_id,omitempty"`
	HistoryProjectorID int    `json:"history_projector_id,omitempty"`
	MeetingID          int    `json:"meeting_id,omitempty"`
}

// Collection implements [BaseModel].
func (Projection) Collection() string { return CollectionProjection }
