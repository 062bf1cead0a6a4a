package qdrant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emptrack/internal/domain"
	"emptrack/internal/vectorstore"
)

func TestStorage_RoundTripAgainstFakeServer(t *testing.T) {
	var upserted []map[string]any
	var created map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("api-key"))
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/staff":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/points"):
			var body struct {
				Points []map[string]any `json:"points"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			upserted = body.Points
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/points/search"):
			_, _ = w.Write([]byte(`{"result":[{"score":0.9,"payload":{"doc_id":"E001","text":"Asha","metadata":{"kind":"employee","employee":{"emp_id":"E001","name":"Asha","email":"","department":"","role":""}}}}]}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, APIKey: "k", Collection: "staff"})
	require.NoError(t, s.Clear())
	require.NoError(t, s.Init(3))
	assert.Equal(t, "Dot", created["vectors"].(map[string]any)["distance"])

	doc := domain.Document{ID: "E001", Text: "Asha", Metadata: domain.Metadata{Kind: domain.KindEmployee}}
	require.NoError(t, s.Upsert([]domain.Document{doc}, [][]float32{{1, 0, 0}}))
	require.Len(t, upserted, 1)
	assert.Equal(t, PointID("E001"), upserted[0]["id"])

	res, err := s.Search([]float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "E001", res[0].Document.ID)
	assert.Equal(t, "Asha", res[0].Document.Metadata.Employee.Name)
}

func TestStorage_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL})
	_, err := s.Search([]float32{1}, 1)
	assert.Error(t, err)
	assert.Error(t, s.Clear())
}

func TestPointID_Stable(t *testing.T) {
	assert.Equal(t, PointID("E001"), PointID("E001"))
	assert.NotEqual(t, PointID("E001"), PointID("E002"))
}

func TestStorage_SharesBackend(t *testing.T) {
	assert.True(t, vectorstore.IsShared(NewStorage(Config{URL: "http://localhost:6333"})))
}
