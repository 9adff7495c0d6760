package engine

// Source identifies media for the engine to play. The only directly
// playable kind is URISource; PlaylistSource composes playable items.
// Implementations outside this package are rejected by the session layer
// with ErrUnsupportedSource.
type Source interface {
	isSource()
}

// URISource points at a single media resource, with optional request
// headers for network fetches.
type URISource struct {
	URI     string
	Headers map[string]string
}

func (URISource) isSource() {}

// PlaylistSource is a composite source: an ordered list of items opened as
// one engine playlist.
type PlaylistSource struct {
	Items []Source
}

func (PlaylistSource) isSource() {}

// Len returns the number of items.
func (p PlaylistSource) Len() int {
	return len(p.Items)
}
