package diagram

import (
	"fmt"

	"github.com/google/uuid"
)

// Id prefixes by element kind.
const (
	NodePrefix      = "n-"
	LinkPrefix      = "l-"
	ContainerPrefix = "c-"
)

// IDSource issues identifiers for new elements.
type IDSource interface {
	Next(prefix string) string
}

// UUIDSource issues random identifiers.
type UUIDSource struct{}

func (UUIDSource) Next(prefix string) string {
	return prefix + uuid.NewString()
}

// Sequence issues predictable identifiers: prefix1, prefix2, ...
type Sequence struct {
	n int
}

func (s *Sequence) Next(prefix string) string {
	s.n++
	return fmt.Sprintf("%s%d", prefix, s.n)
}

// issue draws ids from src until one is free in d and in taken.
func issue(src IDSource, prefix string, d *Document, taken map[string]bool) string {
	if src == nil {
		src = UUIDSource{}
	}
	for {
		id := src.Next(prefix)
		if !d.Has(id) && !taken[id] {
			if taken != nil {
				taken[id] = true
			}
			return id
		}
	}
}

// NewID returns an id of the given prefix that is unused in d.
func (d Document) NewID(src IDSource, prefix string) string {
	return issue(src, prefix, &d, nil)
}
