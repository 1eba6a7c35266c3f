package messenger

// Single-segment SMS limit and the per-part budget once the multipart
// header eats into each segment.
const (
	segmentLimit = 160
	partLimit    = 153
)

// SegmentCount is the display-only segment estimate: length/160 + 1. The
// transport decides actual segmentation.
func SegmentCount(body string) int {
	return len([]rune(body))/segmentLimit + 1
}

// SplitParts divides a body into transport-sized parts. Bodies that fit a
// single segment are returned whole.
func SplitParts(body string) []string {
	runes := []rune(body)
	if len(runes) <= segmentLimit {
		return []string{body}
	}

	parts := []string{}
	for len(runes) > 0 {
		n := partLimit
		if len(runes) < n {
			n = len(runes)
		}
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	return parts
}
