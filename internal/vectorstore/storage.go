package vectorstore

import "emptrack/internal/domain"

// Storage holds document vectors and answers inner-product
// nearest-neighbour queries.
type Storage interface {
	Init(dimension int) error
	Upsert(docs []domain.Document, vectors [][]float32) error
	Search(vector []float32, topK int) ([]domain.SearchResult, error)
	Clear() error
}

// Shared is implemented by stores whose instances all address one
// backend, so clearing a new instance also empties the live one.
type Shared interface {
	SharesBackend() bool
}

// IsShared reports whether s shares its backend across instances.
func IsShared(s Storage) bool {
	sh, ok := s.(Shared)
	return ok && sh.SharesBackend()
}

// Persister is implemented by stores that can write their index to a
// directory.
type Persister interface {
	Save(dir string) error
}

// Persisted index file names.
const (
	IndexFile = "faiss.index"
	MetaFile  = "faiss_meta.json"
)

// Meta is the JSON sidecar written next to a persisted index.
type Meta struct {
	IDs   []string          `json:"ids"`
	Metas []domain.Metadata `json:"metas"`
}
