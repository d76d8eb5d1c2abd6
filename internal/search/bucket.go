package search

// NormalizeBuckets folds a caller's bucket filter — "bucket" (singular),
// "buckets" (list), or neither — into one list. Missing this normalization
// is the spec's named historical bug class: every backend call must see
// the same list regardless of which form the caller used.
func NormalizeBuckets(bucket string, buckets []string) []string {
	if len(buckets) > 0 {
		return buckets
	}
	if bucket != "" {
		return []string{bucket}
	}
	return nil
}
