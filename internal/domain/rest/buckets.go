// Package rest computes days of rest between consecutive games and maps
// them onto a fixed set of ordered rest buckets.
package rest

// Bucket is a discrete rest-duration category.
type Bucket string

// Canonical rest buckets, from least to most rest.
const (
	BucketBackToBack Bucket = "back-to-back"
	BucketShort      Bucket = "short"
	BucketNormal     Bucket = "normal"
	BucketExtended   Bucket = "extended"
)

// Thresholds defines the inclusive upper bound, in days of rest, of each
// bucket below "extended". It is the single source of truth for bucket
// boundaries; call sites must never re-derive their own cutoffs.
type Thresholds struct {
	BackToBackMax int // 0..BackToBackMax days -> back-to-back
	ShortMax      int // ..ShortMax days       -> short
	NormalMax     int // ..NormalMax days      -> normal, beyond -> extended
}

// CanonicalThresholds is the one threshold table applied uniformly across
// the engine: 0-1 days is a back-to-back, 2 short, 3 normal, 4+ extended.
var CanonicalThresholds = Thresholds{
	BackToBackMax: 1,
	ShortMax:      2,
	NormalMax:     3,
}

// Buckets returns the canonical bucket order. Aggregation output must follow
// this order, never a map's or groupby's incidental one.
func Buckets() []Bucket {
	return []Bucket{BucketBackToBack, BucketShort, BucketNormal, BucketExtended}
}

// LowRest is the default "tired" bucket set used by the sensitivity ranker:
// games on 0-1 days of rest.
func LowRest() []Bucket { return []Bucket{BucketBackToBack} }

// HighRest is the default "rested" bucket set: games on 3 or more days of
// rest.
func HighRest() []Bucket { return []Bucket{BucketNormal, BucketExtended} }

// ParseBucket maps a configured bucket name to its canonical Bucket.
func ParseBucket(s string) (Bucket, bool) {
	for _, b := range Buckets() {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// Classify maps days of rest onto a bucket using t. A nil daysRest (first
// game of an entity, no prior game) has no bucket and the second return is
// false; such records are excluded from every downstream aggregate.
func (t Thresholds) Classify(daysRest *int) (Bucket, bool) {
	if daysRest == nil {
		return "", false
	}
	switch d := *daysRest; {
	case d <= t.BackToBackMax:
		return BucketBackToBack, true
	case d <= t.ShortMax:
		return BucketShort, true
	case d <= t.NormalMax:
		return BucketNormal, true
	default:
		return BucketExtended, true
	}
}

// Classify applies the canonical threshold table.
func Classify(daysRest *int) (Bucket, bool) {
	return CanonicalThresholds.Classify(daysRest)
}
