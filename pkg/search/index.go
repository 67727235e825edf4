package search

import (
	"sync"
	"sync/atomic"
)

// Index is the in-process document index. Reads run lock-free against an
// immutable snapshot; writers serialize on a mutex and publish a rebuilt
// snapshot atomically, so searches never observe a half-applied update and
// never block ingestion.
type Index struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

type snapshot struct {
	docs []Document
	byID map[string]int
}

func NewIndex() *Index {
	idx := &Index{}
	idx.current.Store(&snapshot{byID: make(map[string]int)})
	return idx
}

// Replace swaps the entire index contents in one atomic publish. Used for
// the bootstrap load and full re-index.
func (idx *Index) Replace(docs []Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	next := &snapshot{
		docs: make([]Document, 0, len(docs)),
		byID: make(map[string]int, len(docs)),
	}
	for _, doc := range docs {
		if pos, ok := next.byID[doc.ID]; ok {
			next.docs[pos] = doc
			continue
		}
		next.byID[doc.ID] = len(next.docs)
		next.docs = append(next.docs, doc)
	}
	idx.current.Store(next)
}

// Upsert inserts or fully replaces one document.
func (idx *Index) Upsert(doc Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	next := idx.current.Load().clone()
	if pos, ok := next.byID[doc.ID]; ok {
		next.docs[pos] = doc
	} else {
		next.byID[doc.ID] = len(next.docs)
		next.docs = append(next.docs, doc)
	}
	idx.current.Store(next)
}

// Remove soft-deletes a document. Unknown ids are a no-op.
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cur := idx.current.Load()
	pos, ok := cur.byID[id]
	if !ok {
		return
	}
	next := cur.clone()
	next.docs[pos].Active = false
	idx.current.Store(next)
}

// RemoveByParent soft-deletes every chunk belonging to a parent document,
// used when a knowledge document is re-chunked or withdrawn.
func (idx *Index) RemoveByParent(parentID string) {
	if parentID == "" {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	next := idx.current.Load().clone()
	for i := range next.docs {
		if next.docs[i].ParentID == parentID {
			next.docs[i].Active = false
		}
	}
	idx.current.Store(next)
}

// Get returns a document by id.
func (idx *Index) Get(id string) (Document, bool) {
	cur := idx.current.Load()
	if pos, ok := cur.byID[id]; ok {
		return cur.docs[pos], true
	}
	return Document{}, false
}

// Count reports active documents of a kind; the empty kind counts all.
func (idx *Index) Count(kind Kind) int {
	cur := idx.current.Load()
	n := 0
	for i := range cur.docs {
		if !cur.docs[i].Active {
			continue
		}
		if kind != "" && cur.docs[i].Kind != kind {
			continue
		}
		n++
	}
	return n
}

// SearchOptions narrows a search to one corpus and caps the result count.
type SearchOptions struct {
	Kind    Kind
	Limit   int
	Weights Weights
}

// Search scores every active document of the requested kind against the
// query and returns the ranked, policy-filtered results.
func (idx *Index) Search(q QueryFeatures, opts SearchOptions) []SearchResult {
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	cur := idx.current.Load()

	scored := make([]SearchResult, 0, 16)
	for i := range cur.docs {
		doc := &cur.docs[i]
		if !doc.Active {
			continue
		}
		if opts.Kind != "" && doc.Kind != opts.Kind {
			continue
		}
		score, searchType := Score(q, *doc, opts.Weights)
		if score <= opts.Weights.MinScore {
			continue
		}
		scored = append(scored, SearchResult{
			Document:   *doc,
			Score:      score,
			SearchType: searchType,
		})
	}

	return Rank(scored, q, opts.Limit)
}

func (s *snapshot) clone() *snapshot {
	next := &snapshot{
		docs: make([]Document, len(s.docs)),
		byID: make(map[string]int, len(s.byID)),
	}
	copy(next.docs, s.docs)
	for id, pos := range s.byID {
		next.byID[id] = pos
	}
	return next
}
