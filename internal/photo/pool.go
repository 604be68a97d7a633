package photo

import "fmt"

// Pool is an ordered, read-only set of photos keyed by id. Order is the
// caller's input order and drives deterministic tie-breaking.
type Pool struct {
	photos []Photo
	byID   map[string]int
}

// NewPool normalizes photos and indexes them. Duplicate ids are an error.
func NewPool(photos []Photo) (*Pool, error) {
	p := &Pool{
		photos: make([]Photo, 0, len(photos)),
		byID:   make(map[string]int, len(photos)),
	}
	for _, ph := range photos {
		if err := ph.Normalize(); err != nil {
			return nil, err
		}
		if _, dup := p.byID[ph.ID]; dup {
			return nil, fmt.Errorf("duplicate photo id %q", ph.ID)
		}
		p.byID[ph.ID] = len(p.photos)
		p.photos = append(p.photos, ph)
	}
	return p, nil
}

// Len returns the number of photos.
func (p *Pool) Len() int {
	return len(p.photos)
}

// Get looks up a photo by id. The id is normalized first.
func (p *Pool) Get(id string) (Photo, bool) {
	i, ok := p.byID[NormalizeID(id)]
	if !ok {
		return Photo{}, false
	}
	return p.photos[i], true
}

// Photos returns a copy of the photos in pool order.
func (p *Pool) Photos() []Photo {
	out := make([]Photo, len(p.photos))
	copy(out, p.photos)
	return out
}

// IDs returns photo ids in pool order.
func (p *Pool) IDs() []string {
	ids := make([]string, len(p.photos))
	for i, ph := range p.photos {
		ids[i] = ph.ID
	}
	return ids
}

// Unused returns the photos whose ids are not in used, in pool order.
func (p *Pool) Unused(used map[string]bool) []Photo {
	var out []Photo
	for _, ph := range p.photos {
		if !used[ph.ID] {
			out = append(out, ph)
		}
	}
	return out
}

// Subset returns a pool of the given ids in the order given. Unknown ids are
// an error.
func (p *Pool) Subset(ids []string) (*Pool, error) {
	photos := make([]Photo, 0, len(ids))
	for _, id := range ids {
		ph, ok := p.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown photo id %q", id)
		}
		photos = append(photos, ph)
	}
	return NewPool(photos)
}
