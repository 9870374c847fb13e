package face

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecognizer struct {
	result SearchResult
	err    error
}

func (s *stubRecognizer) Search(_ context.Context, _ []byte, _ string) (SearchResult, error) {
	return s.result, s.err
}

func testThresholds() Thresholds {
	return Thresholds{
		MatchThreshold:    90,
		MinSharpness:      40,
		BrightnessMin:     30,
		BrightnessMax:     80,
		LivenessThreshold: 70,
	}
}

func goodQuality() QualityMetrics {
	return QualityMetrics{FaceDetected: true, Sharpness: 60, Brightness: 55}
}

func TestVerifyClaimedMatched(t *testing.T) {
	recognizer := &stubRecognizer{result: SearchResult{
		Matches: []Match{{ExternalID: "user-1", Similarity: 96, FaceConfidence: 99}},
		Quality: goodQuality(),
	}}
	v := NewVerifier(recognizer, testThresholds())

	got, err := v.VerifyClaimed(context.Background(), []byte("img"), "user-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, DecisionMatched, got.Decision)
	assert.Equal(t, "user-1", got.DiscoveredID)
	assert.InDelta(t, 96, got.Similarity, 0.001)
	assert.True(t, got.Liveness.IsLive)
}

func TestVerifyClaimedIgnoresOtherIdentities(t *testing.T) {
	// A stronger match for a different identity must not accept or reject
	// the claimed one; the claimed identity's own score decides.
	recognizer := &stubRecognizer{result: SearchResult{
		Matches: []Match{
			{ExternalID: "someone-else", Similarity: 99},
			{ExternalID: "user-1", Similarity: 72},
		},
		Quality: goodQuality(),
	}}
	v := NewVerifier(recognizer, testThresholds())

	got, err := v.VerifyClaimed(context.Background(), []byte("img"), "user-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, DecisionBelowThreshold, got.Decision)
	assert.InDelta(t, 72, got.Similarity, 0.001)
}

func TestVerifyClaimedNoMatch(t *testing.T) {
	recognizer := &stubRecognizer{result: SearchResult{
		Matches: []Match{{ExternalID: "someone-else", Similarity: 99}},
		Quality: goodQuality(),
	}}
	v := NewVerifier(recognizer, testThresholds())

	got, err := v.VerifyClaimed(context.Background(), []byte("img"), "user-1", "org-1")
	require.NoError(t, err)
	assert.Equal(t, DecisionNoMatch, got.Decision)
}

func TestIdentifyPicksHighestClearingThreshold(t *testing.T) {
	recognizer := &stubRecognizer{result: SearchResult{
		Matches: []Match{
			{ExternalID: "user-low", Similarity: 85},
			{ExternalID: "user-best", Similarity: 97},
			{ExternalID: "user-ok", Similarity: 93},
		},
		Quality: goodQuality(),
	}}
	v := NewVerifier(recognizer, testThresholds())

	got, err := v.Identify(context.Background(), []byte("img"), "org-1")
	require.NoError(t, err)
	assert.Equal(t, DecisionMatched, got.Decision)
	assert.Equal(t, "user-best", got.DiscoveredID)
}

func TestIdentifyUnresolvedBelowThreshold(t *testing.T) {
	recognizer := &stubRecognizer{result: SearchResult{
		Matches: []Match{{ExternalID: "user-1", Similarity: 82}},
		Quality: goodQuality(),
	}}
	v := NewVerifier(recognizer, testThresholds())

	got, err := v.Identify(context.Background(), []byte("img"), "org-1")
	require.NoError(t, err)
	assert.Equal(t, DecisionBelowThreshold, got.Decision)
	assert.Empty(t, got.DiscoveredID)
}

func TestAssessLivenessCleanCapture(t *testing.T) {
	v := NewVerifier(nil, testThresholds())

	got := v.AssessLiveness(goodQuality())
	assert.True(t, got.IsLive)
	assert.False(t, got.SpoofFlag)
	assert.InDelta(t, 100, got.Score, 0.001)
	assert.Empty(t, got.Reasons)
}

func TestAssessLivenessNoFace(t *testing.T) {
	v := NewVerifier(nil, testThresholds())

	got := v.AssessLiveness(QualityMetrics{FaceDetected: false})
	assert.False(t, got.IsLive)
	assert.True(t, got.SpoofFlag)
	assert.Zero(t, got.Score)
}

func TestAssessLivenessSharpnessPenalty(t *testing.T) {
	v := NewVerifier(nil, testThresholds())

	// 10 below the minimum sharpness: 100 - 10*2 = 80. Above the liveness
	// threshold, but the spoof flag still forces IsLive=false.
	got := v.AssessLiveness(QualityMetrics{FaceDetected: true, Sharpness: 30, Brightness: 55})
	assert.InDelta(t, 80, got.Score, 0.001)
	assert.True(t, got.SpoofFlag)
	assert.False(t, got.IsLive)
	assert.Len(t, got.Reasons, 1)
}

func TestAssessLivenessBrightnessPenalty(t *testing.T) {
	v := NewVerifier(nil, testThresholds())

	// 20 above the maximum brightness: 100 - 20*1.5 = 70.
	got := v.AssessLiveness(QualityMetrics{FaceDetected: true, Sharpness: 60, Brightness: 100})
	assert.InDelta(t, 70, got.Score, 0.001)
	assert.True(t, got.SpoofFlag)
	assert.False(t, got.IsLive)
}

func TestAssessLivenessScoreClampedToZero(t *testing.T) {
	v := NewVerifier(nil, testThresholds())

	got := v.AssessLiveness(QualityMetrics{FaceDetected: true, Sharpness: 0, Brightness: 0})
	assert.Zero(t, got.Score)
	assert.True(t, got.SpoofFlag)
	assert.Len(t, got.Reasons, 2)
}
