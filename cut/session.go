package cut

import (
	"github.com/ansel1/merry/v2"
	"github.com/samber/lo"
)

// EditSession is the full composition state: one stage, the referenced
// materials and the timeline tracks. It is a single-writer structure; no
// internal locking is provided.
type EditSession struct {
	Stage     Stage
	Materials []Material
	Tracks    []*Track
}

func NewEditSession(stage Stage) *EditSession {
	return &EditSession{Stage: stage}
}

func (s *EditSession) AddMaterial(material Material) *EditSession {
	s.Materials = append(s.Materials, material)
	return s
}

func (s *EditSession) AddTrack(track *Track) *EditSession {
	s.Tracks = append(s.Tracks, track)
	return s
}

func (s *EditSession) Material(id string) (Material, bool) {
	return lo.Find(s.Materials, func(m Material) bool {
		return m.ID() == id
	})
}

func (s *EditSession) Track(id string) (*Track, bool) {
	return lo.Find(s.Tracks, func(t *Track) bool {
		return t.ID == id
	})
}

func (s *EditSession) RemoveMaterial(id string) bool {
	for i, m := range s.Materials {
		if m.ID() == id {
			s.Materials = append(s.Materials[:i], s.Materials[i+1:]...)
			return true
		}
	}
	return false
}

func (s *EditSession) RemoveTrack(id string) bool {
	for i, t := range s.Tracks {
		if t.ID == id {
			s.Tracks = append(s.Tracks[:i], s.Tracks[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks the session in a fixed phase order: stage dimensions,
// each material, each track's own attributes, each segment, then segment
// material references. The first violation is returned, so failures are
// deterministic.
func (s *EditSession) Validate() error {
	if err := s.Stage.Validate(); err != nil {
		return err
	}

	for _, m := range s.Materials {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	for _, t := range s.Tracks {
		if err := t.validateAttrs(); err != nil {
			return err
		}
	}

	for _, t := range s.Tracks {
		for _, seg := range t.Segments {
			if err := seg.Validate(); err != nil {
				return err
			}
		}
	}

	for _, t := range s.Tracks {
		for _, seg := range t.Segments {
			if _, ok := s.Material(seg.MaterialID); !ok {
				return merry.Wrap(ErrInvalidParams,
					merry.AppendMessagef("segment %s: material %q not found", seg.ID, seg.MaterialID))
			}
		}
	}

	return nil
}

// TotalDuration is the end of the longest track.
func (s *EditSession) TotalDuration() uint32 {
	var d uint32
	for _, t := range s.Tracks {
		d = max(d, t.Duration())
	}
	return d
}

func (s *EditSession) VideoTracks() []*Track {
	return lo.Filter(s.Tracks, func(t *Track, _ int) bool {
		return t.Type == TrackTypeVideo
	})
}

func (s *EditSession) AudioTracks() []*Track {
	return lo.Filter(s.Tracks, func(t *Track, _ int) bool {
		return t.Type == TrackTypeAudio
	})
}
