// Package hybrid orchestrates chunk → embed → persist for (re)indexing,
// and at query time runs vector and keyword search in parallel and
// fuses the two ranked lists with Reciprocal Rank Fusion (§4.8).
package hybrid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/argus-dev/argus/internal/chunker"
	"github.com/argus-dev/argus/internal/model"
	"github.com/argus-dev/argus/internal/store"
	"github.com/argus-dev/argus/internal/walker"
)

// rrfConstant is the RRF smoothing constant k from §4.8.3.
const rrfConstant = 60

// Embedder is the subset of internal/embed.Embedder that Hybrid Search
// depends on, kept as an interface so tests can supply a fake.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ProgressFunc receives coarse-grained progress updates during
// IndexRepo/ReindexRepo. stage is one of "scanning", "chunking",
// "embedding", "indexing"; currentFile is set where a single file is
// the unit of work and empty for batch-level updates.
type ProgressFunc func(stage string, current, total int, currentFile string)

// Search owns a Store and an Embedder exclusively: it is the only
// caller permitted to invoke Store mutations, per §3's ownership rule.
type Search struct {
	store    *store.Store
	embedder Embedder
	walker   *walker.Walker
	chunker  *chunker.Chunker
	progress ProgressFunc
}

// New takes ownership of s and e.
func New(s *store.Store, e Embedder, w *walker.Walker, c *chunker.Chunker) *Search {
	return &Search{store: s, embedder: e, walker: w, chunker: c}
}

// SetProgress installs a callback invoked during IndexRepo/ReindexRepo.
// Passing nil disables reporting.
func (h *Search) SetProgress(fn ProgressFunc) {
	h.progress = fn
}

func (h *Search) report(stage string, current, total int, file string) {
	if h.progress != nil {
		h.progress(stage, current, total, file)
	}
}

// IndexRepo performs a full index: walk, chunk every file, embed every
// chunk, and insert everything into the Store. If no chunks are
// produced, it returns the Store's current stats without calling the
// embedder.
func (h *Search) IndexRepo(ctx context.Context, root string) (model.IndexStats, error) {
	h.report("scanning", 0, 0, "")
	files, err := h.walker.Walk(root)
	if err != nil {
		return model.IndexStats{}, err
	}

	var allChunks []model.CodeChunk
	for i, f := range files {
		h.report("chunking", i+1, len(files), f.Path)
		hash := fileHash(f.Content)
		if err := h.store.RecordFile(f.Path, hash); err != nil {
			return model.IndexStats{}, err
		}
		allChunks = append(allChunks, h.chunker.Chunk(f)...)
	}

	if len(allChunks) == 0 {
		return h.store.Stats()
	}

	if err := h.embedAndInsert(ctx, allChunks); err != nil {
		return model.IndexStats{}, err
	}
	return h.store.Stats()
}

// ReindexRepo performs an incremental index: only files whose content
// hash changed (or that are new) are rechunked and re-embedded; files
// removed from the tree have their chunks dropped.
func (h *Search) ReindexRepo(ctx context.Context, root string) (model.IndexStats, error) {
	h.report("scanning", 0, 0, "")
	files, err := h.walker.Walk(root)
	if err != nil {
		return model.IndexStats{}, err
	}

	current := make(map[string]model.SourceFile, len(files))
	for _, f := range files {
		current[f.Path] = f
	}

	storedPaths, err := h.store.IndexedFiles()
	if err != nil {
		return model.IndexStats{}, err
	}
	stored := make(map[string]bool, len(storedPaths))
	for _, p := range storedPaths {
		stored[p] = true
	}

	var changedChunks []model.CodeChunk
	for path, f := range current {
		hash := fileHash(f.Content)
		oldHash, err := h.store.FileHash(path)
		changed := err != nil || oldHash != hash
		if !changed {
			continue
		}
		if err := h.store.RemoveFile(path); err != nil {
			return model.IndexStats{}, err
		}
		if err := h.store.RecordFile(path, hash); err != nil {
			return model.IndexStats{}, err
		}
		changedChunks = append(changedChunks, h.chunker.Chunk(f)...)
	}

	for path := range stored {
		if _, ok := current[path]; !ok {
			if err := h.store.RemoveFile(path); err != nil {
				return model.IndexStats{}, err
			}
		}
	}

	if len(changedChunks) > 0 {
		if err := h.embedAndInsert(ctx, changedChunks); err != nil {
			return model.IndexStats{}, err
		}
	}
	return h.store.Stats()
}

func (h *Search) embedAndInsert(ctx context.Context, chunks []model.CodeChunk) error {
	h.report("embedding", 0, len(chunks), "")
	inputs := make([]string, len(chunks))
	for i, c := range chunks {
		inputs[i] = c.ContextHeader + "\n\n" + c.Content
	}

	vecs, err := h.embedder.EmbedBatch(ctx, inputs)
	if err != nil {
		return err
	}

	h.report("indexing", 0, len(chunks), "")
	for i, c := range chunks {
		var v []float32
		if i < len(vecs) {
			v = vecs[i]
		}
		h.report("indexing", i+1, len(chunks), "")
		if err := h.store.InsertChunk(c, v); err != nil {
			return err
		}
	}
	return nil
}

// Search runs vector and keyword search concurrently over fetch = 2 *
// limit candidates each, fuses them with RRF (k=60), and truncates to
// limit.
func (h *Search) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	fetch := 2 * limit

	var vecHits, kwHits []model.SearchHit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		queryVec, err := h.embedder.EmbedQuery(gctx, query)
		if err != nil {
			return err
		}
		hits, err := h.store.VectorSearch(queryVec, fetch)
		if err != nil {
			return err
		}
		vecHits = hits
		return nil
	})
	g.Go(func() error {
		hits, err := h.store.KeywordSearch(query, fetch)
		if err != nil {
			return err
		}
		kwHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := fuse(vecHits, kwHits)
	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}

	out := make([]model.SearchResult, len(fused))
	for i, f := range fused {
		out[i] = model.SearchResult{
			FilePath:  f.chunk.FilePath,
			LineStart: f.chunk.StartLine,
			LineEnd:   f.chunk.EndLine,
			Snippet:   f.chunk.Content,
			Score:     f.score,
			Language:  f.chunk.Language,
		}
	}
	return out, nil
}

type fusedEntry struct {
	chunk        model.CodeChunk
	score        float64
	firstAppears int // insertion order, for stable tie-breaking
}

// fuse implements Reciprocal Rank Fusion per §4.8.3 and §8's invariant
// 5: each hit at 0-based rank r in a list contributes 1/(k+r+1) to its
// content_hash's accumulator. The chunk object carried forward for a
// hash is the one from the first list it appeared in. Ties are broken
// by first-appearance order, per §5.
func fuse(lists ...[]model.SearchHit) []fusedEntry {
	scores := make(map[string]*fusedEntry)
	order := make([]string, 0)

	for _, list := range lists {
		for rank, hit := range list {
			e, ok := scores[hit.Chunk.ContentHash]
			if !ok {
				e = &fusedEntry{chunk: hit.Chunk, firstAppears: len(order)}
				scores[hit.Chunk.ContentHash] = e
				order = append(order, hit.Chunk.ContentHash)
			}
			e.score += 1.0 / float64(rrfConstant+rank+1)
		}
	}

	out := make([]fusedEntry, 0, len(scores))
	for _, e := range scores {
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].firstAppears < out[j].firstAppears
	})
	return out
}

func fileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
