package dto

// HistoryRow is the display summary of one stored result on the history view.
type HistoryRow struct {
	Index     int
	Image     string
	Summary   string // Labels joined for display, or a placeholder
	Timestamp string
	Tags      []string
}

// ResultCard is what the result view shows for one stored result.
type ResultCard struct {
	Image   string
	Caption string
	Tags    []string
}
