package graphbuilder

import "github.com/lintang-b-s/isomatch/pkg/datastructure"

// LinkScanner is a single pass, lazy sequence of links.
type LinkScanner interface {
	Scan() bool
	Link() datastructure.Link
	Err() error
}
