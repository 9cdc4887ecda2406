package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/filestore"
	"dealdesk/internal/negotiation/service"
	feedbackStore "dealdesk/internal/negotiation/store/feedback"
	submissionStore "dealdesk/internal/negotiation/store/submission"
	"dealdesk/internal/report"
	id "dealdesk/pkg/domain"
	"dealdesk/pkg/requestcontext"
)

// newTestRouter builds a router around a real service on in-memory stores,
// with the caller's identity injected the way the auth middleware would.
func newTestRouter(t *testing.T, brokerID id.CompanyID) http.Handler {
	t.Helper()

	svc := service.New(submissionStore.NewInMemory(), feedbackStore.NewInMemory(),
		service.WithReportGenerator(report.NewCSV()),
	)
	h := New(svc, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithCompanyID(req.Context(), brokerID)
			ctx = requestcontext.WithUserID(ctx, id.NewUserID())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, version string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if version != "" {
		req.Header.Set("If-Match", version)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSubmission(t *testing.T, router http.Handler) (submissionID, version string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/submissions", "", map[string]any{
		"name":        "Project Borealis",
		"broker_name": "Howden",
		"enhancements": []map[string]any{
			{"title": "tax covenant", "type": "request", "requested_by_broker": true},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID      string `json:"id"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.NotEmpty(t, resp.Version)
	return resp.ID, resp.Version
}

func TestCreateSubmissionEndpoint(t *testing.T) {
	router := newTestRouter(t, id.NewCompanyID())

	t.Run("created with version token", func(t *testing.T) {
		submissionID, version := createSubmission(t, router)
		assert.NotEmpty(t, submissionID)
		assert.NotEmpty(t, version)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty name returns 400 with validation code", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/submissions", "", map[string]any{"name": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "validation_failed", body["error"])
	})
}

func TestGetSubmissionEndpoint(t *testing.T) {
	router := newTestRouter(t, id.NewCompanyID())

	t.Run("unknown id returns 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/submissions/"+id.NewSubmissionID().String(), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("garbage id returns 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/submissions/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("existing submission round-trips", func(t *testing.T) {
		submissionID, _ := createSubmission(t, router)
		rec := doJSON(t, router, http.MethodGet, "/submissions/"+submissionID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Project Borealis", resp.Name)
		assert.NotEmpty(t, resp.Version)
	})
}

func TestAmendSubmissionEndpoint(t *testing.T) {
	router := newTestRouter(t, id.NewCompanyID())
	submissionID, version := createSubmission(t, router)

	t.Run("missing If-Match returns 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/submissions/"+submissionID, "", map[string]any{"name": "renamed"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("fresh token amends and rotates", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/submissions/"+submissionID, version, map[string]any{"name": "renamed"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "renamed", resp.Name)
		assert.NotEqual(t, version, resp.Version)
	})

	t.Run("stale token returns 409", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, "/submissions/"+submissionID, version, map[string]any{"name": "too late"})
		assert.Equal(t, http.StatusConflict, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "conflict", body["error"])
	})
}

func TestFeedbackEndpoints(t *testing.T) {
	router := newTestRouter(t, id.NewCompanyID())
	submissionID, version := createSubmission(t, router)

	invite := doJSON(t, router, http.MethodPost, "/submissions/"+submissionID+"/insurers", version, map[string]any{
		"insurer_id":   id.NewCompanyID().String(),
		"insurer_name": "Hiscox",
	})
	require.Equal(t, http.StatusCreated, invite.Code)

	var fb struct {
		ID      string `json:"id"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(invite.Body.Bytes(), &fb))

	t.Run("submit before NDA conflicts", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/feedback/"+fb.ID+"/submit", fb.Version, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("nda then submit succeeds", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/feedback/"+fb.ID+"/nda", fb.Version, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var after struct {
			NdaAccepted bool   `json:"nda_accepted"`
			Version     string `json:"version"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
		require.True(t, after.NdaAccepted)

		rec = doJSON(t, router, http.MethodPost, "/feedback/"+fb.ID+"/submit", after.Version, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var submitted struct {
			Submitted bool `json:"submitted"`
			ForReview bool `json:"for_review"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
		assert.True(t, submitted.Submitted)
		assert.True(t, submitted.ForReview)
	})

	t.Run("update with unknown item title returns 400", func(t *testing.T) {
		get := doJSON(t, router, http.MethodGet, "/feedback/"+fb.ID, "", nil)
		require.Equal(t, http.StatusOK, get.Code)
		var current struct {
			Version string `json:"version"`
		}
		require.NoError(t, json.Unmarshal(get.Body.Bytes(), &current))

		rec := doJSON(t, router, http.MethodPatch, "/feedback/"+fb.ID, current.Version, map[string]any{
			"enhancements": []map[string]any{{"title": "invented", "insurer_offers": true}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("comparison report is CSV", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/submissions/"+submissionID+"/reports/comparison", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "Hiscox")
	})
}

func TestFileEndpoints(t *testing.T) {
	router := newTestRouterWithFiles(t, id.NewCompanyID())
	submissionID, version := createSubmission(t, router)

	req := httptest.NewRequest(http.MethodPost, "/submissions/"+submissionID+"/files?name=teaser.pdf",
		bytes.NewReader([]byte("pdf-bytes")))
	req.Header.Set("If-Match", version)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Files []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 1)

	t.Run("download returns the original bytes and name", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/submissions/"+submissionID+"/files/"+resp.Files[0].ID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pdf-bytes", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "teaser.pdf")
	})

	t.Run("download of unknown file returns 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/submissions/"+submissionID+"/files/"+id.NewFileID().String(), "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func newTestRouterWithFiles(t *testing.T, brokerID id.CompanyID) http.Handler {
	t.Helper()

	svc := service.New(submissionStore.NewInMemory(), feedbackStore.NewInMemory(),
		service.WithReportGenerator(report.NewCSV()),
		service.WithFileStore(filestore.NewMemory()),
	)
	h := New(svc, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithCompanyID(req.Context(), brokerID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)
	return r
}
