package face

import "context"

// Match is a single gallery candidate returned by the recognition provider.
type Match struct {
	// ExternalID is the identity the provider has enrolled for this face.
	// Workers are enrolled under their user ID.
	ExternalID     string  `json:"external_id"`
	Similarity     float64 `json:"similarity"`      // 0-100
	FaceConfidence float64 `json:"face_confidence"` // 0-100
}

// QualityMetrics describes the submitted capture, used by the liveness heuristic.
type QualityMetrics struct {
	FaceDetected bool    `json:"face_detected"`
	Sharpness    float64 `json:"sharpness"`
	Brightness   float64 `json:"brightness"`
}

// SearchResult is the provider's answer for one submitted image.
type SearchResult struct {
	Matches []Match        `json:"matches"`
	Quality QualityMetrics `json:"quality"`
}

// Recognizer is the external face-recognition collaborator. Search runs
// the submitted image against an organization's enrolled gallery and
// returns candidates ranked by similarity plus capture quality metrics.
type Recognizer interface {
	Search(ctx context.Context, image []byte, galleryID string) (SearchResult, error)
}
