package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"linkstate/linkstate/internal/config"
	"linkstate/linkstate/internal/model"
	"linkstate/linkstate/internal/repo"
	"linkstate/linkstate/internal/service"
	"linkstate/linkstate/internal/util"
)

// Mock links service for testing
type mockLinks struct {
	createFunc   func(ctx context.Context, baseURL, originalURL, ownerTag string) (model.Link, error)
	redirectFunc func(ctx context.Context, token string) (string, error)
	updateFunc   func(ctx context.Context, token, originalURL string) (model.Link, error)
	deleteFunc   func(ctx context.Context, token string) error
	infoFunc     func(ctx context.Context, baseURL, token string) (model.Link, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockLinks) Create(ctx context.Context, baseURL, originalURL, ownerTag string) (model.Link, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, baseURL, originalURL, ownerTag)
	}
	return model.Link{}, errNotImplemented
}

func (m *mockLinks) Redirect(ctx context.Context, token string) (string, error) {
	if m.redirectFunc != nil {
		return m.redirectFunc(ctx, token)
	}
	return "", errNotImplemented
}

func (m *mockLinks) Update(ctx context.Context, token, originalURL string) (model.Link, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, token, originalURL)
	}
	return model.Link{}, errNotImplemented
}

func (m *mockLinks) Delete(ctx context.Context, token string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, token)
	}
	return errNotImplemented
}

func (m *mockLinks) Info(ctx context.Context, baseURL, token string) (model.Link, error) {
	if m.infoFunc != nil {
		return m.infoFunc(ctx, baseURL, token)
	}
	return model.Link{}, errNotImplemented
}

var testCfg = config.Config{BaseURL: "http://host/api/state/"}

func newTestRouter(srv service.Links) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := New(testCfg, srv)
	router := gin.New()
	api := router.Group("/api/state")
	api.POST("/create", h.Create)
	api.GET("/:token", h.Redirect)
	api.GET("/info/:token", h.Info)
	api.PUT("/update/:token", h.Update)
	api.DELETE("/delete/:token", h.Delete)
	router.GET("/healthz", h.Health)
	return router
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return response
}

func TestHandler_Create_Success(t *testing.T) {
	var gotBase, gotURL, gotOwner string
	router := newTestRouter(&mockLinks{
		createFunc: func(ctx context.Context, baseURL, originalURL, ownerTag string) (model.Link, error) {
			gotBase, gotURL, gotOwner = baseURL, originalURL, ownerTag
			return model.Link{
				ID:          "test-id",
				Token:       "ABC123de",
				OriginalURL: originalURL,
				CreatedAt:   time.Now(),
				ShortURL:    baseURL + "ABC123de",
			}, nil
		},
	})

	w := doRequest(router, http.MethodPost, "/api/state/create", `{"originalUrl":"https://example.com/a/b","userId":"anonymous"}`)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	response := decodeMap(t, w)
	if response["url"] != "http://host/api/state/ABC123de" {
		t.Errorf("Expected url http://host/api/state/ABC123de, got %s", response["url"])
	}
	if gotBase != testCfg.BaseURL {
		t.Errorf("Expected base URL %s, got %s", testCfg.BaseURL, gotBase)
	}
	if gotURL != "https://example.com/a/b" {
		t.Errorf("Expected original URL to be passed through, got %s", gotURL)
	}
	if gotOwner != "anonymous" {
		t.Errorf("Expected owner tag anonymous, got %s", gotOwner)
	}
}

func TestHandler_Create_InvalidJSON(t *testing.T) {
	router := newTestRouter(&mockLinks{})

	w := doRequest(router, http.MethodPost, "/api/state/create", `{"originalUrl":`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if response := decodeMap(t, w); response["error"] != "Invalid JSON body" {
		t.Errorf("Expected error 'Invalid JSON body', got %s", response["error"])
	}
}

func TestHandler_Create_InvalidURL(t *testing.T) {
	router := newTestRouter(&mockLinks{
		createFunc: func(ctx context.Context, baseURL, originalURL, ownerTag string) (model.Link, error) {
			return model.Link{}, util.ValidateURL(originalURL)
		},
	})

	w := doRequest(router, http.MethodPost, "/api/state/create", `{"originalUrl":"ftp://example.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if response := decodeMap(t, w); response["error"] == "" {
		t.Error("Expected an error message")
	}
}

func TestHandler_Create_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{"token space exhausted", service.ErrTokenSpace},
		{"duplicate key", fmt.Errorf("%w: token", repo.ErrDuplicateKey)},
		{"persistence fault", errors.New("connection refused")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&mockLinks{
				createFunc: func(ctx context.Context, baseURL, originalURL, ownerTag string) (model.Link, error) {
					return model.Link{}, tc.err
				},
			})

			w := doRequest(router, http.MethodPost, "/api/state/create", `{"originalUrl":"https://example.com"}`)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
			}
			if response := decodeMap(t, w); response["error"] != tc.err.Error() {
				t.Errorf("Expected error %q, got %q", tc.err.Error(), response["error"])
			}
		})
	}
}

func TestHandler_Redirect_Success(t *testing.T) {
	router := newTestRouter(&mockLinks{
		redirectFunc: func(ctx context.Context, token string) (string, error) {
			if token != "ABC123de" {
				t.Errorf("Expected token ABC123de, got %s", token)
			}
			return "https://example.com/a/b", nil
		},
	})

	w := doRequest(router, http.MethodGet, "/api/state/ABC123de", "")

	if w.Code != http.StatusFound {
		t.Errorf("Expected status %d, got %d", http.StatusFound, w.Code)
	}
	if location := w.Header().Get("Location"); location != "https://example.com/a/b" {
		t.Errorf("Expected Location https://example.com/a/b, got %s", location)
	}
}

func TestHandler_Redirect_NotFound(t *testing.T) {
	router := newTestRouter(&mockLinks{
		redirectFunc: func(ctx context.Context, token string) (string, error) {
			return "", repo.ErrNotFound
		},
	})

	w := doRequest(router, http.MethodGet, "/api/state/NOTFOUND", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if response := decodeMap(t, w); response["error"] != "URL not found" {
		t.Errorf("Expected error 'URL not found', got %s", response["error"])
	}
}

func TestHandler_Redirect_StoreError(t *testing.T) {
	router := newTestRouter(&mockLinks{
		redirectFunc: func(ctx context.Context, token string) (string, error) {
			return "", errors.New("database connection error")
		},
	})

	w := doRequest(router, http.MethodGet, "/api/state/ABC123de", "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if response := decodeMap(t, w); response["error"] != "database connection error" {
		t.Errorf("Expected underlying error message, got %s", response["error"])
	}
}

func TestHandler_Update_Success(t *testing.T) {
	var gotToken, gotURL string
	router := newTestRouter(&mockLinks{
		updateFunc: func(ctx context.Context, token, originalURL string) (model.Link, error) {
			gotToken, gotURL = token, originalURL
			return model.Link{Token: token, OriginalURL: originalURL}, nil
		},
	})

	w := doRequest(router, http.MethodPut, "/api/state/update/ABC123de", `{"originalUrl":"https://example.com/new"}`)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if response := decodeMap(t, w); response["message"] != "URL updated successfully" {
		t.Errorf("Expected message 'URL updated successfully', got %s", response["message"])
	}
	if gotToken != "ABC123de" || gotURL != "https://example.com/new" {
		t.Errorf("Unexpected arguments token=%s url=%s", gotToken, gotURL)
	}
}

func TestHandler_Update_NotFound(t *testing.T) {
	router := newTestRouter(&mockLinks{
		updateFunc: func(ctx context.Context, token, originalURL string) (model.Link, error) {
			return model.Link{}, repo.ErrNotFound
		},
		infoFunc: func(ctx context.Context, baseURL, token string) (model.Link, error) {
			return model.Link{}, repo.ErrNotFound
		},
	})

	for _, body := range []string{`{"originalUrl":"https://example.com"}`, `not json`, ""} {
		w := doRequest(router, http.MethodPut, "/api/state/update/zzz", body)

		if w.Code != http.StatusNotFound {
			t.Errorf("Body %q: expected status %d, got %d", body, http.StatusNotFound, w.Code)
		}
		if response := decodeMap(t, w); response["error"] != "URL not found" {
			t.Errorf("Body %q: expected error 'URL not found', got %s", body, response["error"])
		}
	}
}

func TestHandler_Update_InvalidJSON(t *testing.T) {
	updated := false
	router := newTestRouter(&mockLinks{
		updateFunc: func(ctx context.Context, token, originalURL string) (model.Link, error) {
			updated = true
			return model.Link{}, nil
		},
		infoFunc: func(ctx context.Context, baseURL, token string) (model.Link, error) {
			return model.Link{Token: token, OriginalURL: "https://example.com"}, nil
		},
	})

	for _, body := range []string{`not json`, `{"originalUrl":`, ""} {
		w := doRequest(router, http.MethodPut, "/api/state/update/ABC123de", body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Body %q: expected status %d, got %d", body, http.StatusBadRequest, w.Code)
		}
		if response := decodeMap(t, w); response["error"] != "Invalid JSON body" {
			t.Errorf("Body %q: expected error 'Invalid JSON body', got %s", body, response["error"])
		}
	}
	if updated {
		t.Error("Update should not be called for an unreadable body")
	}
}

func TestHandler_Update_InvalidURL(t *testing.T) {
	router := newTestRouter(&mockLinks{
		updateFunc: func(ctx context.Context, token, originalURL string) (model.Link, error) {
			return model.Link{}, util.ValidateURL(originalURL)
		},
	})

	w := doRequest(router, http.MethodPut, "/api/state/update/ABC123de", `{"originalUrl":"nope"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestHandler_Delete(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{"success", nil, http.StatusOK, "message", "URL deleted successfully"},
		{"not found", repo.ErrNotFound, http.StatusNotFound, "error", "URL not found"},
		{"store error", errors.New("disk full"), http.StatusInternalServerError, "error", "disk full"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&mockLinks{
				deleteFunc: func(ctx context.Context, token string) error { return tc.err },
			})

			w := doRequest(router, http.MethodDelete, "/api/state/delete/ABC123de", "")

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			if response := decodeMap(t, w); response[tc.wantKey] != tc.wantValue {
				t.Errorf("Expected %s %q, got %q", tc.wantKey, tc.wantValue, response[tc.wantKey])
			}
		})
	}
}

func TestHandler_Info(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	router := newTestRouter(&mockLinks{
		infoFunc: func(ctx context.Context, baseURL, token string) (model.Link, error) {
			if token == "NOTFOUND" {
				return model.Link{}, repo.ErrNotFound
			}
			return model.Link{
				ID:          "test-id",
				Token:       token,
				OriginalURL: "https://example.com/info",
				ClickCount:  4,
				CreatedAt:   created,
				ShortURL:    baseURL + token,
			}, nil
		},
	})

	w := doRequest(router, http.MethodGet, "/api/state/info/ABC123de", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var rec model.Link
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if rec.Token != "ABC123de" || rec.ClickCount != 4 || rec.ShortURL != "http://host/api/state/ABC123de" {
		t.Errorf("Unexpected record %+v", rec)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("Expected CreatedAt %s, got %s", created, rec.CreatedAt)
	}

	w = doRequest(router, http.MethodGet, "/api/state/info/NOTFOUND", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHandler_Health(t *testing.T) {
	router := newTestRouter(&mockLinks{})

	w := doRequest(router, http.MethodGet, "/healthz", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if response := decodeMap(t, w); response["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", response["status"])
	}
}
