package arxiv

import "encoding/xml"

// Feed represents the Atom XML response from the arXiv API.
type Feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults int      `xml:"totalResults"`
	Entries      []Entry  `xml:"entry"`
}

// Entry represents a single arXiv paper in the Atom feed.
type Entry struct {
	ID        string `xml:"id"` // "http://arxiv.org/abs/2301.12345v1"
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`   // abstract
	Published string `xml:"published"` // "2023-01-15T18:30:00Z"
}
