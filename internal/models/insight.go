package models

// Provenance tags where an insight text came from.
type Provenance string

const (
	ProvenanceRemote   Provenance = "remote"
	ProvenanceTemplate Provenance = "template"
)

// InsightRequest asks for an insight for a set of tracked assets.
type InsightRequest struct {
	Assets  []string
	Persona Persona
}

// InsightResult is the final text plus where it came from.
type InsightResult struct {
	Text   string     `json:"insight"`
	Source Provenance `json:"source"`
}

// NewsItem is a headline shown in the news section.
type NewsItem struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      NewsSource `json:"source"`
	PublishedAt string     `json:"published_at"`
}

// NewsSource names the outlet of a headline.
type NewsSource struct {
	Title  string `json:"title"`
	Domain string `json:"domain,omitempty"`
}

// Meme is an image with a caption for the fun section.
type Meme struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
