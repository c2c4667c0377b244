package handler

import (
	"html/template"
	"strings"

	"detectwidget/internal/controller"
	"detectwidget/internal/dto"
	wsservice "detectwidget/internal/service/websocket"
)

var pageTitles = map[controller.Page]string{
	controller.PageUpload:  "Upload",
	controller.PageResult:  "Result",
	controller.PageHistory: "History",
}

type resultCard struct {
	Image   template.URL
	Caption string
	Tags    []string
}

type historyRow struct {
	Index     int
	Number    int
	Image     template.URL
	Summary   string
	Timestamp string
	Tags      []string
}

type pageData struct {
	Page  controller.Page
	Title string

	// upload
	Alert   string
	Preview template.URL
	Status  string
	Loading bool

	// result
	Card *resultCard

	// history
	Rows []historyRow
}

// pageView collects what a controller shows so it can be rendered as one
// HTML page. It implements every controller view interface.
type pageView struct {
	data     pageData
	navigate bool
	hub      *wsservice.HubService
	session  string
}

func newPageView(page controller.Page, hub *wsservice.HubService, session string) *pageView {
	return &pageView{
		data:    pageData{Page: page, Title: pageTitles[page]},
		hub:     hub,
		session: session,
	}
}

func (v *pageView) bindings() controller.Bindings {
	return controller.Bindings{Upload: v, Result: v, History: v}
}

func (v *pageView) Alert(message string) {
	v.data.Alert = message
}

func (v *pageView) ShowPreview(dataURI string) {
	v.data.Preview = imageURL(dataURI)
}

func (v *pageView) SetStatus(message string) {
	v.data.Status = message
}

// SetLoading also pushes the state to the session's open pages.
func (v *pageView) SetLoading(visible bool) {
	v.data.Loading = visible
	if v.hub != nil {
		v.hub.Notify(v.session, wsservice.LoadingEvent(visible))
	}
}

func (v *pageView) NavigateToResult() {
	v.navigate = true
}

func (v *pageView) ShowResult(card dto.ResultCard) {
	v.data.Card = &resultCard{
		Image:   imageURL(card.Image),
		Caption: card.Caption,
		Tags:    card.Tags,
	}
}

func (v *pageView) ShowEmpty() {
	v.data.Card = nil
	v.data.Rows = nil
}

func (v *pageView) ShowHistory(rows []dto.HistoryRow) {
	v.data.Rows = make([]historyRow, 0, len(rows))
	for _, row := range rows {
		v.data.Rows = append(v.data.Rows, historyRow{
			Index:     row.Index,
			Number:    row.Index + 1,
			Image:     imageURL(row.Image),
			Summary:   row.Summary,
			Timestamp: row.Timestamp,
			Tags:      row.Tags,
		})
	}
}

// imageURL marks image references from the prediction service safe for src
// attributes. Only inline images and http(s) or site-relative URLs pass.
func imageURL(s string) template.URL {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//"):
		return template.URL(s)
	}
	return ""
}
