package linksource

import "github.com/lintang-b-s/isomatch/pkg/datastructure"

// SliceScanner iterates an in-memory list of links.
type SliceScanner struct {
	links []datastructure.Link
	pos   int
}

func NewSliceScanner(links []datastructure.Link) *SliceScanner {
	return &SliceScanner{links: links, pos: -1}
}

func (s *SliceScanner) Scan() bool {
	if s.pos+1 >= len(s.links) {
		s.pos = len(s.links)
		return false
	}
	s.pos++
	return true
}

func (s *SliceScanner) Link() datastructure.Link {
	return s.links[s.pos]
}

func (s *SliceScanner) Err() error {
	return nil
}
