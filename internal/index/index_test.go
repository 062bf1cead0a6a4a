package index

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptrack/internal/domain"
	"emptrack/internal/embedding"
	"emptrack/internal/embedding/sparse"
	"emptrack/internal/source"
	"emptrack/internal/vectorstore"
	"emptrack/internal/vectorstore/memory"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func fixture() source.Static {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local)
	return source.Static{
		Directory: source.NewDirectory(
			domain.Employee{EmpID: "E001", Name: "Asha"},
			domain.Employee{EmpID: "E002", Name: "Rahul"},
		),
		Ledger: []domain.AttendanceRecord{
			{EmpID: "E001", Status: domain.StatusWFO, Timestamp: now, CheckInTime: "09:45 AM"},
		},
	}
}

func newIndex(p source.Provider, c *clock, opts ...Option) *Index {
	newStore := func() vectorstore.Storage { return memory.NewStorage() }
	opts = append([]Option{WithClock(c.Now)}, opts...)
	return New(p, sparse.NewEmbedder(), newStore, opts...)
}

func TestRefresh_BuildsState(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	ix := newIndex(fixture(), c)

	require.True(t, ix.Refresh())
	st := ix.State()
	require.NotNil(t, st)
	assert.Equal(t, []string{"E001", "E002", "agg_checked_in_today", "agg_wfo_today", "agg_wfh_today", "agg_on_leave_today", "agg_attendance_ratio_today"}, st.IDs)
	assert.Equal(t, len(st.Vocab), st.Dim)
	assert.Len(t, st.Metas, len(st.IDs))
	assert.Len(t, st.Texts, len(st.IDs))
}

func TestRefresh_TwiceIsStable(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	ix := newIndex(fixture(), c)

	require.True(t, ix.Refresh())
	first := ix.State()
	require.True(t, ix.Refresh())
	second := ix.State()

	assert.Equal(t, first.IDs, second.IDs)
	assert.Equal(t, first.Metas, second.Metas)
	assert.True(t, second.LastRefresh.After(first.LastRefresh))
}

func TestRefresh_EmptyCorpusClearsState(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	p := &switchable{snap: source.Snapshot(fixture())}
	ix := newIndex(p, c)
	require.True(t, ix.Refresh())

	p.set(source.Snapshot{})
	assert.False(t, ix.Refresh())
	assert.Nil(t, ix.State())
}

func TestView_TTL(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	ix := newIndex(fixture(), c, WithTTL(30*time.Second))

	noop := func(View) {}
	assert.Equal(t, Refreshed, ix.View(noop))
	c.Advance(10 * time.Second)
	assert.Equal(t, Reused, ix.View(noop))
	c.Advance(21 * time.Second)
	assert.Equal(t, Refreshed, ix.View(noop))
}

func TestView_Search(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	ix := newIndex(fixture(), c)

	var hits []domain.SearchResult
	ix.View(func(v View) {
		require.True(t, v.Ready())
		assert.Equal(t, 2, v.Directory().Len())
		hits = v.Search("who is wfo today", 100)
	})
	require.Len(t, hits, 7)
	assert.Equal(t, "agg_wfo_today", hits[0].Document.ID)
}

func TestView_ConcurrentCallers(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	ix := newIndex(fixture(), c)

	const n = 16
	var wg sync.WaitGroup
	results := make(chan Transition, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ix.View(func(v View) {
				assert.NotEmpty(t, v.Search("asha", 8))
			})
		}()
	}
	wg.Wait()
	close(results)

	refreshed := 0
	for tr := range results {
		if tr == Refreshed {
			refreshed++
		}
	}
	assert.Equal(t, 1, refreshed)
	assert.NotNil(t, ix.State())
}

type denseFake struct{ embedding.Embedder }

func (denseFake) Dense() bool { return true }

func TestRefresh_PersistsDenseIndex(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	dir := filepath.Join(t.TempDir(), "idx")
	newStore := func() vectorstore.Storage { return memory.NewStorage() }
	ix := New(fixture(), denseFake{sparse.NewEmbedder()}, newStore, WithClock(c.Now), WithPersistDir(dir))

	require.True(t, ix.Refresh())
	_, err := os.Stat(filepath.Join(dir, vectorstore.IndexFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, vectorstore.MetaFile))
	assert.NoError(t, err)
}

func TestRefresh_SparseDoesNotPersist(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	dir := filepath.Join(t.TempDir(), "idx")
	ix := newIndex(fixture(), c, WithPersistDir(dir))

	require.True(t, ix.Refresh())
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

type switchable struct {
	mu   sync.Mutex
	snap source.Snapshot
}

func (s *switchable) Load() source.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *switchable) set(snap source.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

type flakyStore struct {
	*memory.Storage
	shared bool
	fail   *bool
}

func (s flakyStore) Upsert(docs []domain.Document, vectors [][]float32) error {
	if *s.fail {
		return errors.New("upsert rejected")
	}
	return s.Storage.Upsert(docs, vectors)
}

func (s flakyStore) SharesBackend() bool { return s.shared }

func TestRefresh_StoreFailure(t *testing.T) {
	for _, tc := range []struct {
		name      string
		shared    bool
		wantState bool
	}{
		{name: "private store keeps live state", shared: false, wantState: true},
		{name: "shared backend drops live state", shared: true, wantState: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
			fail := false
			newStore := func() vectorstore.Storage {
				return flakyStore{Storage: memory.NewStorage(), shared: tc.shared, fail: &fail}
			}
			ix := New(fixture(), sparse.NewEmbedder(), newStore, WithClock(c.Now))
			require.True(t, ix.Refresh())
			before := ix.State()

			fail = true
			assert.False(t, ix.Refresh())
			if tc.wantState {
				assert.Same(t, before, ix.State())
			} else {
				assert.Nil(t, ix.State())
			}

			c.Advance(time.Minute)
			assert.Equal(t, RefreshFailed, ix.View(func(View) {}))

			fail = false
			assert.Equal(t, Refreshed, ix.View(func(v View) { assert.True(t, v.Ready()) }))
		})
	}
}

func TestView_EmptyCorpusReportsFailure(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.Local)}
	ix := newIndex(source.Static{}, c)

	var ready bool
	tr := ix.View(func(v View) { ready = v.Ready() })
	assert.Equal(t, RefreshFailed, tr)
	assert.False(t, ready)
	assert.Equal(t, "refresh_failed", tr.String())
}
