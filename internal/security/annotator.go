package security

import (
	"sort"
	"sync"

	"github.com/neetkit/cardforge/internal/contenthash"
)

// Annotator stores marks keyed by subject id. It is safe for concurrent use.
type Annotator struct {
	mu    sync.RWMutex
	marks map[string]Mark
}

// NewAnnotator returns an empty annotator.
func NewAnnotator() *Annotator {
	return &Annotator{marks: make(map[string]Mark)}
}

// NewMark digests data and tags it with perception without storing it.
// Only canonicalization of data can fail.
func NewMark(subjectID string, data any, perception string) (Mark, error) {
	digest, err := contenthash.IntegrityDigest(data)
	if err != nil {
		return Mark{}, err
	}
	return Mark{
		SubjectID:       subjectID,
		IntegrityDigest: digest,
		Perception:      ParsePerception(perception),
	}, nil
}

// Mark digests data, tags it with perception and stores it under subjectID,
// replacing any earlier mark. Only canonicalization of data can fail.
func (a *Annotator) Mark(subjectID string, data any, perception string) (Mark, error) {
	mark, err := NewMark(subjectID, data, perception)
	if err != nil {
		return Mark{}, err
	}
	a.Put(mark)
	return mark, nil
}

// Put stores mark under its subject id, replacing any earlier mark.
func (a *Annotator) Put(mark Mark) {
	a.mu.Lock()
	a.marks[mark.SubjectID] = mark
	a.mu.Unlock()
}

// Lookup returns the mark for subjectID.
func (a *Annotator) Lookup(subjectID string) (Mark, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	mark, ok := a.marks[subjectID]
	return mark, ok
}

// Marks returns every mark ordered by subject id.
func (a *Annotator) Marks() []Mark {
	a.mu.RLock()
	out := make([]Mark, 0, len(a.marks))
	for _, mark := range a.marks {
		out = append(out, mark)
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out
}
