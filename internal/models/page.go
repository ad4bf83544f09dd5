package models

import (
	"strings"
	"time"
)

type Page int

const (
	PageDashboard Page = iota
	PageAbnormal
	PageQuery
	PageUpload
	PagePatients
)

// Pages lists every page in tab order
var Pages = []Page{PageDashboard, PageAbnormal, PageQuery, PageUpload, PagePatients}

func (p Page) String() string {
	switch p {
	case PageDashboard:
		return "dashboard"
	case PageAbnormal:
		return "abnormal"
	case PageQuery:
		return "query"
	case PageUpload:
		return "upload"
	case PagePatients:
		return "patients"
	}
	return "unknown"
}

// Title is the tab label
func (p Page) Title() string {
	switch p {
	case PageDashboard:
		return "Dashboard"
	case PageAbnormal:
		return "Abnormal"
	case PageQuery:
		return "Ask"
	case PageUpload:
		return "Upload"
	case PagePatients:
		return "Patients"
	}
	return "?"
}

// HasData reports whether activating the page fetches remote data
func (p Page) HasData() bool {
	return p == PageDashboard || p == PageAbnormal || p == PagePatients
}

// Next returns the following page in tab order, wrapping around
func (p Page) Next(step int) Page {
	n := len(Pages)
	idx := (int(p) + step%n + n) % n
	return Pages[idx]
}

func ParsePage(name string) (Page, bool) {
	for _, p := range Pages {
		if strings.EqualFold(p.String(), strings.TrimSpace(name)) {
			return p, true
		}
	}
	return PageDashboard, false
}

// PageData is the result of one page activation. Placeholder is set when
// the fetch failed.
type PageData struct {
	Page        Page
	Stats       *Stats
	Abnormal    []AbnormalResult
	Patients    []Patient
	Placeholder string
	Err         error
	FetchedAt   time.Time
}

// Failed reports whether the page should show its placeholder
func (d PageData) Failed() bool {
	return d.Placeholder != ""
}
