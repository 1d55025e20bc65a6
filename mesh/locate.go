package mesh

import (
	"fmt"
	"strings"
)

// RegionNotFoundError reports a failed region search, carrying every block
// name seen so the caller can diagnose without reloading the case.
type RegionNotFoundError struct {
	Name      string
	Available []string
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("region matching %q not found, available blocks: %v",
		e.Name, e.Available)
}

// FindRegion locates a block by case-insensitive substring match against
// block names. Top-level blocks are checked first; a non-matching container
// has its direct children searched before moving on. The tree is two levels
// deep by construction (interior + boundary group), so no deeper recursion
// is needed. First match in tree order wins.
func FindRegion(s *Snapshot, nameSubstring string) (*Block, error) {
	want := strings.ToLower(nameSubstring)
	var seen []string
	for _, b := range s.Blocks {
		seen = append(seen, b.Name)
		if strings.Contains(strings.ToLower(b.Name), want) {
			return b, nil
		}
		for _, child := range b.Children {
			seen = append(seen, child.Name)
			if strings.Contains(strings.ToLower(child.Name), want) {
				return child, nil
			}
		}
	}
	return nil, &RegionNotFoundError{Name: nameSubstring, Available: seen}
}
