package face

import (
	"context"
	"fmt"
	"sort"
)

// Decision is the outcome of an identity verification attempt.
type Decision string

const (
	// DecisionMatched means the identity cleared the similarity threshold.
	DecisionMatched Decision = "matched"
	// DecisionNoMatch means the gallery produced no candidate for the identity.
	DecisionNoMatch Decision = "no_match"
	// DecisionBelowThreshold means a candidate existed but its similarity
	// was below the configured threshold.
	DecisionBelowThreshold Decision = "below_threshold"
)

// LivenessResult is the advisory spoof assessment for a capture. It is
// recorded on the attendance event for review; it does not gate check-in.
type LivenessResult struct {
	IsLive    bool
	Score     float64 // 0-100
	SpoofFlag bool
	Reasons   []string
}

// Verification combines the identity decision with the liveness assessment.
type Verification struct {
	Decision       Decision
	DiscoveredID   string
	Similarity     float64
	FaceConfidence float64
	Liveness       LivenessResult
}

// Thresholds configures the verifier. Similarity, sharpness, and
// brightness are on the provider's 0-100 scales.
type Thresholds struct {
	MatchThreshold    float64
	MinSharpness      float64
	BrightnessMin     float64
	BrightnessMax     float64
	LivenessThreshold float64
}

// Verifier interprets raw recognition results into present/absent
// decisions plus a liveness score.
type Verifier struct {
	recognizer Recognizer
	thresholds Thresholds
}

func NewVerifier(recognizer Recognizer, thresholds Thresholds) *Verifier {
	return &Verifier{recognizer: recognizer, thresholds: thresholds}
}

// VerifyClaimed checks whether the capture matches one specific claimed
// identity. Only the claimed identity's own candidate counts: a
// higher-similarity candidate for a different identity neither accepts
// nor rejects the claim.
func (v *Verifier) VerifyClaimed(ctx context.Context, image []byte, claimedID, galleryID string) (Verification, error) {
	result, err := v.recognizer.Search(ctx, image, galleryID)
	if err != nil {
		return Verification{}, fmt.Errorf("face search failed: %w", err)
	}

	verification := Verification{
		Decision: DecisionNoMatch,
		Liveness: v.AssessLiveness(result.Quality),
	}

	for _, match := range result.Matches {
		if match.ExternalID != claimedID {
			continue
		}
		verification.DiscoveredID = match.ExternalID
		verification.Similarity = match.Similarity
		verification.FaceConfidence = match.FaceConfidence
		if match.Similarity >= v.thresholds.MatchThreshold {
			verification.Decision = DecisionMatched
		} else {
			verification.Decision = DecisionBelowThreshold
		}
		break
	}

	return verification, nil
}

// Identify discovers who is present from the capture alone (watch mode).
// Candidates are taken in descending similarity order and the first one
// at or above the threshold wins; if none clears it the event is
// unresolved.
func (v *Verifier) Identify(ctx context.Context, image []byte, galleryID string) (Verification, error) {
	result, err := v.recognizer.Search(ctx, image, galleryID)
	if err != nil {
		return Verification{}, fmt.Errorf("face search failed: %w", err)
	}

	verification := Verification{
		Decision: DecisionNoMatch,
		Liveness: v.AssessLiveness(result.Quality),
	}

	matches := make([]Match, len(result.Matches))
	copy(matches, result.Matches)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	for _, match := range matches {
		if match.Similarity >= v.thresholds.MatchThreshold {
			verification.Decision = DecisionMatched
			verification.DiscoveredID = match.ExternalID
			verification.Similarity = match.Similarity
			verification.FaceConfidence = match.FaceConfidence
			return verification, nil
		}
	}

	if len(matches) > 0 {
		verification.Decision = DecisionBelowThreshold
		verification.Similarity = matches[0].Similarity
	}
	return verification, nil
}

// AssessLiveness scores the capture quality against the configured bands.
// This is a deterministic heuristic over provider quality metrics, not a
// liveness model; the result is advisory.
func (v *Verifier) AssessLiveness(quality QualityMetrics) LivenessResult {
	if !quality.FaceDetected {
		return LivenessResult{
			IsLive:    false,
			Score:     0,
			SpoofFlag: true,
			Reasons:   []string{"no face detected in capture"},
		}
	}

	score := 100.0
	spoof := false
	var reasons []string

	if quality.Sharpness < v.thresholds.MinSharpness {
		score -= (v.thresholds.MinSharpness - quality.Sharpness) * 2
		spoof = true
		reasons = append(reasons, fmt.Sprintf("sharpness %.1f below minimum %.1f", quality.Sharpness, v.thresholds.MinSharpness))
	}

	if quality.Brightness < v.thresholds.BrightnessMin {
		score -= (v.thresholds.BrightnessMin - quality.Brightness) * 1.5
		spoof = true
		reasons = append(reasons, fmt.Sprintf("brightness %.1f below minimum %.1f", quality.Brightness, v.thresholds.BrightnessMin))
	} else if quality.Brightness > v.thresholds.BrightnessMax {
		score -= (quality.Brightness - v.thresholds.BrightnessMax) * 1.5
		spoof = true
		reasons = append(reasons, fmt.Sprintf("brightness %.1f above maximum %.1f", quality.Brightness, v.thresholds.BrightnessMax))
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return LivenessResult{
		IsLive:    score >= v.thresholds.LivenessThreshold && !spoof,
		Score:     score,
		SpoofFlag: spoof,
		Reasons:   reasons,
	}
}
