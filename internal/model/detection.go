package model

// DetectionResult is the normalized record of one completed image analysis.
// Count and Timestamp are passed through from the prediction service as-is.
type DetectionResult struct {
	Image     string   `json:"image"`
	Labels    []string `json:"labels"`
	Count     int      `json:"count"`
	Timestamp string   `json:"timestamp"`
}

// UniqueLabels removes duplicate labels, keeping the order of first occurrence.
func UniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	unique := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		unique = append(unique, label)
	}
	return unique
}
