package fusion

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestAggregate(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(33 * time.Millisecond)

	t.Run("zero detections yield an empty result and zero stats", func(t *testing.T) {
		result, stats := Aggregate(nil, start, end)
		test.That(t, result.DistancesM, test.ShouldBeEmpty)
		test.That(t, result.Associations, test.ShouldBeEmpty)
		test.That(t, stats.TotalDetections, test.ShouldEqual, 0)
		test.That(t, stats.FusedDetections, test.ShouldEqual, 0)
		test.That(t, stats.FusionRate, test.ShouldEqual, 0.0)
		test.That(t, stats.Latency, test.ShouldEqual, 33*time.Millisecond)
	})

	t.Run("counts, rate and mapping reflect the associations", func(t *testing.T) {
		associations := []Association{
			{Detection: Detection{ID: 0}, Fused: true, DistanceM: 2.3},
			{Detection: Detection{ID: 1}, Fused: false},
			{Detection: Detection{ID: 2}, Fused: true, DistanceM: 5.0},
			{Detection: Detection{ID: 3}, Fused: false},
		}

		result, stats := Aggregate(associations, start, end)
		test.That(t, stats.TotalDetections, test.ShouldEqual, 4)
		test.That(t, stats.FusedDetections, test.ShouldEqual, 2)
		test.That(t, stats.FusionRate, test.ShouldEqual, 0.5)
		test.That(t, result.DistancesM, test.ShouldResemble, map[int]float64{0: 2.3, 2: 5.0})
		test.That(t, len(result.Associations), test.ShouldEqual, 4)
	})

	t.Run("re-aggregating the same associations is idempotent", func(t *testing.T) {
		associations := []Association{
			{Detection: Detection{ID: 0}, Fused: true, DistanceM: 1.1},
			{Detection: Detection{ID: 1}, Fused: false},
		}

		firstResult, firstStats := Aggregate(associations, start, end)
		secondResult, secondStats := Aggregate(associations, start, end)
		test.That(t, secondResult, test.ShouldResemble, firstResult)
		test.That(t, secondStats, test.ShouldResemble, firstStats)
	})
}
