package registry

import (
	"math"
)

// ----------------------------------------------------------------------------
// sizeHistogram
// ----------------------------------------------------------------------------

// sizeHistogram tracks the distribution of allocation sizes.
// Sizes are sorted into exponential buckets (16B up to 4GB) so the memory
// needed does not depend on the number of samples.
//
// The histogram is not synchronized on its own, the registry guard protects it.
type sizeHistogram struct {
	boundaries []uint64 // Bucket boundaries covering byte to GB range
	buckets    []int64  // Count of items in each bucket
	count      int64    // Total number of samples
	sum        uint64   // Sum of all sampled sizes
}

func newSizeHistogram() *sizeHistogram {
	boundaries := []uint64{
		16, 64, 256, 1024, 4096, // Bytes: 16B to 4KB
		16384, 65536, 262144, 1048576, // KB range: 16KB to 1MB
		4194304, 16777216, 67108864, // MB range: 4MB to 64MB
		268435456, 1073741824, 4294967296, // Above 256MB to 4GB
	}
	return &sizeHistogram{
		boundaries: boundaries,
		buckets:    make([]int64, len(boundaries)+1), // +1 for larger values
	}
}

// addSample adds an allocation size to the histogram
func (h *sizeHistogram) addSample(size uint64) {
	bucketIndex := len(h.boundaries) // Last bucket for all larger values
	for i, boundary := range h.boundaries {
		if size <= boundary {
			bucketIndex = i
			break
		}
	}

	h.buckets[bucketIndex]++
	h.count++
	h.sum += size
}

// averageSize returns the average size across all samples
func (h *sizeHistogram) averageSize() int {
	if h.count == 0 {
		return 0
	}
	return int(h.sum / uint64(h.count))
}

// percentileEstimate returns an estimate for the given percentile (0-100).
// The estimate is the middle of the bucket the percentile falls into.
func (h *sizeHistogram) percentileEstimate(percentile int) int {
	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	targetCount := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	cumulativeCount := int64(0)

	for i, count := range h.buckets {
		cumulativeCount += count
		if cumulativeCount >= targetCount {
			switch {
			case i == 0:
				return int(h.boundaries[0] / 2)
			case i < len(h.boundaries):
				return int((h.boundaries[i-1] + h.boundaries[i]) / 2)
			default:
				return int(h.boundaries[len(h.boundaries)-1] * 2)
			}
		}
	}

	return h.averageSize()
}
