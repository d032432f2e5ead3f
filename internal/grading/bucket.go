package grading

// Bucket is the qualitative grade tier printed on a certificate.
type Bucket string

const (
	BucketPoor      Bucket = "poor"
	BucketGood      Bucket = "good"
	BucketVeryGood  Bucket = "veryGood"
	BucketExcellent Bucket = "excellent"
)

// BucketFor maps a percentage to its tier. Boundaries belong to the upper
// tier: 50 is good, 70 is veryGood, 85 is excellent.
func BucketFor(percent float64) Bucket {
	switch {
	case percent < 50:
		return BucketPoor
	case percent < 70:
		return BucketGood
	case percent < 85:
		return BucketVeryGood
	default:
		return BucketExcellent
	}
}
