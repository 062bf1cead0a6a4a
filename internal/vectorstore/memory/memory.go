package memory

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"emptrack/internal/domain"
	"emptrack/internal/vectorstore"
)

// indexMagic prefixes the binary index file.
var indexMagic = [4]byte{'E', 'M', 'P', 'V'}

// Storage is a simple in-memory vector store using brute-force inner
// product over unit vectors.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	docs      []domain.Document
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.docs = nil
	return nil
}

func (s *Storage) Upsert(docs []domain.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return errors.New("documents and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.docs = append(s.docs, docs...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns up to topK hits by descending score. Equal scores keep
// insertion order. topK is capped at the corpus size.
func (s *Storage) Search(vector []float32, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = dot(s.vectors[i], vector)
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{Document: s.docs[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.docs = nil
	return nil
}

// Len returns the number of stored vectors.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Save writes the vectors as a flat little-endian float32 index plus a
// JSON sidecar of ids and metadata.
func (s *Storage) Save(dir string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := s.writeIndex(filepath.Join(dir, vectorstore.IndexFile)); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	meta := vectorstore.Meta{IDs: make([]string, len(s.docs)), Metas: make([]domain.Metadata, len(s.docs))}
	for i, d := range s.docs {
		meta.IDs[i] = d.ID
		meta.Metas[i] = d.Metadata
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, vectorstore.MetaFile), data, 0o644)
}

func (s *Storage) writeIndex(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	header := []uint32{uint32(len(s.vectors)), uint32(s.dimension)}
	if _, err := w.Write(indexMagic[:]); err != nil {
		f.Close()
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		f.Close()
		return err
	}
	for _, v := range s.vectors {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
