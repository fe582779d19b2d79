// Package broadcast implements the fan-out engine and media-album
// aggregation for relaying operator content to every destination chat.
package broadcast

// Kind discriminates the normalized content variants. Values match the
// content_kind column of the delivery ledger.
type Kind string

const (
	KindText  Kind = "text"
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// Item is one normalized piece of content: literal text, or a platform file
// reference with an optional caption. Inbound messages are normalized into
// Items once at the boundary; everything downstream consumes them uniformly.
type Item struct {
	Kind    Kind
	Payload string
	Caption string
}

// Content is what one broadcast delivers to each destination: a single item,
// or an ordered album of media items sent as one media group.
type Content struct {
	Items []Item
}

// Single wraps one item as broadcast content.
func Single(item Item) Content {
	return Content{Items: []Item{item}}
}

// Album wraps an ordered media item sequence as broadcast content.
func Album(items []Item) Content {
	return Content{Items: items}
}

// IsAlbum reports whether the content must be delivered as a media group.
func (c Content) IsAlbum() bool {
	return len(c.Items) > 1
}
