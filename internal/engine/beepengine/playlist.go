package beepengine

import (
	"math/rand"

	"github.com/llehouerou/cadence/internal/engine"
)

// playlist is the engine-side item list plus the playback order used for
// auto-advance. The order is the identity permutation unless shuffle is on,
// in which case it is a random permutation that still starts playback
// wherever the current item sits.
type playlist struct {
	items   []engine.URISource
	current int // index into items, -1 when empty
	order   []int
	shuffle bool
	mode    engine.PlaylistMode
}

func newPlaylist() *playlist {
	return &playlist{current: -1}
}

func (p *playlist) replace(items []engine.URISource, index int) {
	p.items = append([]engine.URISource(nil), items...)
	p.current = -1
	if len(p.items) > 0 {
		if index < 0 || index >= len(p.items) {
			index = 0
		}
		p.current = index
	}
	p.reorder()
}

func (p *playlist) len() int {
	return len(p.items)
}

func (p *playlist) currentItem() (engine.URISource, bool) {
	if p.current < 0 || p.current >= len(p.items) {
		return engine.URISource{}, false
	}
	return p.items[p.current], true
}

func (p *playlist) jump(index int) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}
	p.current = index
	return true
}

func (p *playlist) add(item engine.URISource) {
	p.items = append(p.items, item)
	if p.current < 0 {
		p.current = 0
	}
	p.reorder()
}

// remove deletes the item at index and keeps current pointing at the same
// track when possible, clamping when the current item itself goes away.
func (p *playlist) remove(index int) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	switch {
	case len(p.items) == 0:
		p.current = -1
	case p.current > index:
		p.current--
	case p.current == index && p.current >= len(p.items):
		p.current = len(p.items) - 1
	}
	p.reorder()
	return true
}

func (p *playlist) move(from, to int) bool {
	if from < 0 || from >= len(p.items) || to < 0 || to >= len(p.items) {
		return false
	}
	item := p.items[from]
	p.items = append(p.items[:from], p.items[from+1:]...)
	p.items = append(p.items[:to], append([]engine.URISource{item}, p.items[to:]...)...)
	switch {
	case p.current == from:
		p.current = to
	case from < p.current && to >= p.current:
		p.current--
	case from > p.current && to <= p.current:
		p.current++
	}
	return true
}

func (p *playlist) setShuffle(enabled bool) {
	p.shuffle = enabled
	p.reorder()
}

func (p *playlist) reorder() {
	p.order = make([]int, len(p.items))
	for i := range p.order {
		p.order[i] = i
	}
	if p.shuffle {
		rand.Shuffle(len(p.order), func(i, j int) {
			p.order[i], p.order[j] = p.order[j], p.order[i]
		})
	}
}

// next returns the item index to play after the current one finishes,
// honoring the playlist mode and shuffle order. ok is false when playback
// should stop.
func (p *playlist) next() (index int, ok bool) {
	if p.current < 0 || len(p.items) == 0 {
		return 0, false
	}
	if p.mode == engine.ModeSingle {
		return p.current, true
	}
	pos := 0
	for i, idx := range p.order {
		if idx == p.current {
			pos = i
			break
		}
	}
	pos++
	if pos >= len(p.order) {
		if p.mode != engine.ModeLoop {
			return 0, false
		}
		pos = 0
	}
	return p.order[pos], true
}
