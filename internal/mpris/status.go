package mpris

import (
	"fmt"
	"hash/fnv"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/cadence/internal/engine"
	"github.com/llehouerou/cadence/internal/session"
)

// statusFor maps the session's processing state plus the play flag onto
// the three MPRIS statuses.
func statusFor(state session.ProcessingState, playing bool) types.PlaybackStatus {
	if state == session.Idle {
		return types.PlaybackStatusStopped
	}
	if playing {
		return types.PlaybackStatusPlaying
	}
	return types.PlaybackStatusPaused
}

func sourceFor(uri string) engine.Source {
	return engine.URISource{URI: uri}
}

func formatTrackID(index int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d", index)
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
