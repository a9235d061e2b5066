package ai

import "math"

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	// Calculate magnitude
	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	// Normalize
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// CosineDistance computes the cosine distance between two vectors of equal
// dimension. The result is in [0, 2]: 0 for identical direction, 1 for
// orthogonal, 2 for opposite. Zero vectors are treated as maximally distant.
func CosineDistance(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 2
	}

	var dot, magA, magB float32
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 2
	}

	cos := float64(dot) / (math.Sqrt(float64(magA)) * math.Sqrt(float64(magB)))
	// Clamp against float drift before converting to a distance.
	cos = math.Max(-1, math.Min(1, cos))
	return float32(1 - cos)
}
