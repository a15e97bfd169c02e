package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/cache"
	"server/internal/expose"
	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/providers/describe"
)

func newTestServer(t *testing.T) (*httptest.Server, *handlers.App) {
	t.Helper()
	cfg := &infra.Config{
		AppEnv:          "test",
		AllowedOrigins:  []string{"http://localhost:3000"},
		CacheDir:        t.TempDir(),
		CacheBaseURL:    "/static/cache",
		JWTSecret:       "test-secret",
		RateLimitPerMin: 1000,
	}
	logger := zerolog.Nop()
	store := cache.NewStore()
	manager := expose.NewManager(store, describe.NewStaticDescriber(), expose.Options{
		CacheDir:  cfg.CacheDir,
		StepDelay: time.Millisecond,
		Logger:    logger,
	})
	t.Cleanup(manager.Close)

	app := &handlers.App{
		Store:    store,
		Ingestor: cache.NewIngestor(store, cfg.CacheDir, cfg.CacheBaseURL, logger),
		Sweeper:  cache.NewSweeper(store, cfg.CacheDir, logger),
		Manager:  manager,
		Config:   cfg,
		Logger:   logger,
	}
	srv := httptest.NewServer(NewRouter(app))
	t.Cleanup(srv.Close)
	return srv, app
}

func doJSON(t *testing.T, method, url string, body any) (*stdhttp.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := stdhttp.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func stageDraft(t *testing.T, srv *httptest.Server, bundle map[string]any) string {
	t.Helper()
	resp, body := doJSON(t, stdhttp.MethodPost, srv.URL+"/api/cache/property-data", bundle)
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("stage draft status = %d, want 201", resp.StatusCode)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("no draft id in response: %v", body)
	}
	return id
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, stdhttp.MethodGet, srv.URL+"/healthz", nil)
	if resp.StatusCode != stdhttp.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestCachePropertyDataRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	id := stageDraft(t, srv, map[string]any{"title": "Loft", "price": 300000})

	resp, body := doJSON(t, stdhttp.MethodGet, srv.URL+"/api/cache/property-data/"+id, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("get draft status = %d", resp.StatusCode)
	}
	if body["title"] != "Loft" {
		t.Fatalf("title = %v", body["title"])
	}
	if body["id"] != id || body["created_at"] == nil {
		t.Fatalf("server-stamped fields missing: %v", body)
	}

	resp, _ = doJSON(t, stdhttp.MethodPut, srv.URL+"/api/cache/property-data/"+id, map[string]any{"title": "Loft II"})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("update draft status = %d", resp.StatusCode)
	}
	_, body = doJSON(t, stdhttp.MethodGet, srv.URL+"/api/cache/property-data/"+id, nil)
	if body["title"] != "Loft II" {
		t.Fatalf("title after update = %v", body["title"])
	}
	if _, ok := body["price"]; ok {
		t.Fatalf("update must replace the full bundle, price survived: %v", body)
	}
}

func TestGetCachedPropertyDataNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, stdhttp.MethodGet, srv.URL+"/api/cache/property-data/unknown", nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["detail"] != "Property data not found in cache" {
		t.Fatalf("detail = %v", body["detail"])
	}
}

func uploadImages(t *testing.T, srv *httptest.Server, draftID string, names []string, labels []string) (*stdhttp.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("image-bytes-" + name)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	for _, label := range labels {
		if err := mw.WriteField("labels", label); err != nil {
			t.Fatalf("write label: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, err := stdhttp.NewRequest(stdhttp.MethodPost, srv.URL+"/api/cache/property-images/"+draftID, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestCachePropertyImages(t *testing.T) {
	srv, _ := newTestServer(t)
	id := stageDraft(t, srv, map[string]any{"title": "Villa"})

	resp, body := uploadImages(t, srv, id, []string{"front.jpg", "garden.jpg"}, []string{"aussen", "garten"})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}
	if body["message"] != "Successfully cached 2 images" {
		t.Fatalf("message = %v", body["message"])
	}
	images, _ := body["images"].([]any)
	if len(images) != 2 {
		t.Fatalf("len(images) = %d, want 2", len(images))
	}
	first, _ := images[0].(map[string]any)
	if first["isPrimary"] != true {
		t.Fatalf("first image should be primary: %v", first)
	}
	if first["category"] != "aussen" {
		t.Fatalf("category = %v", first["category"])
	}

	url, _ := first["url"].(string)
	if !strings.HasPrefix(url, "/static/cache/") {
		t.Fatalf("url = %q, want /static/cache/ prefix", url)
	}
	// The uploaded file is served back under its record URL.
	fileResp, err := stdhttp.Get(srv.URL + url)
	if err != nil {
		t.Fatalf("fetch cached file: %v", err)
	}
	fileResp.Body.Close()
	if fileResp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("cached file status = %d, want 200", fileResp.StatusCode)
	}

	_, listBody := doJSON(t, stdhttp.MethodGet, srv.URL+"/api/cache/property-images/"+id, nil)
	listed, _ := listBody["images"].([]any)
	if len(listed) != 2 {
		t.Fatalf("listed images = %d, want 2", len(listed))
	}
}

func TestCachePropertyImagesUnknownDraft(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := uploadImages(t, srv, "unknown", []string{"a.jpg"}, nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["detail"] != "Property data not found in cache" {
		t.Fatalf("detail = %v", body["detail"])
	}
}

func TestArchiveCachedPropertyImages(t *testing.T) {
	srv, _ := newTestServer(t)
	id := stageDraft(t, srv, map[string]any{})
	if resp, _ := uploadImages(t, srv, id, []string{"a.jpg"}, nil); resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("upload failed: %d", resp.StatusCode)
	}

	resp, err := stdhttp.Get(srv.URL + "/api/cache/property-images/" + id + "/archive")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("archive status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("Content-Type = %q, want application/zip", ct)
	}

	resp2, body := doJSON(t, stdhttp.MethodGet, srv.URL+"/api/cache/property-images/unknown/archive", nil)
	if resp2.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("archive of unknown draft = %d %v, want 404", resp2.StatusCode, body)
	}
}

func awaitCompleted(t *testing.T, srv *httptest.Server, exposeID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, body := doJSON(t, stdhttp.MethodGet, srv.URL+"/api/expose/status/"+exposeID, nil)
		if resp.StatusCode != stdhttp.StatusOK {
			t.Fatalf("status endpoint = %d", resp.StatusCode)
		}
		switch body["status"] {
		case "completed":
			return body
		case "failed":
			t.Fatalf("generation failed: %v", body)
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("generation did not complete in time")
	return nil
}

func TestExposeGenerationFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	id := stageDraft(t, srv, map[string]any{
		"title":     "Schöne Altbauwohnung",
		"city":      "Berlin",
		"rooms":     3,
		"bedrooms":  2,
		"bathrooms": 1,
	})
	uploadImages(t, srv, id, []string{"wohnen.jpg", "bad.jpg"}, []string{"wohnzimmer", "bad"})

	resp, body := doJSON(t, stdhttp.MethodPost, srv.URL+"/api/expose/generate/"+id, nil)
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("generate status = %d, want 201", resp.StatusCode)
	}
	exposeID, _ := body["exposeId"].(string)
	if exposeID == "" || body["status"] != "pending" {
		t.Fatalf("generate response = %v", body)
	}

	final := awaitCompleted(t, srv, exposeID)
	if final["progress"] != float64(100) {
		t.Fatalf("final progress = %v, want 100", final["progress"])
	}
	if final["pdfUrl"] != "/api/expose/download/"+exposeID {
		t.Fatalf("pdfUrl = %v", final["pdfUrl"])
	}

	resp, preview := doJSON(t, stdhttp.MethodGet, srv.URL+"/api/expose/preview/"+exposeID, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("preview status = %d", resp.StatusCode)
	}
	if preview["title"] != "Schöne Altbauwohnung" {
		t.Fatalf("preview title = %v", preview["title"])
	}
	images, _ := preview["images"].([]any)
	if len(images) != 2 {
		t.Fatalf("preview images = %d, want 2", len(images))
	}
	firstImg, _ := images[0].(map[string]any)
	if firstImg["isPrimary"] != true {
		t.Fatalf("first preview image should be primary: %v", firstImg)
	}
	details, _ := preview["floorPlanDetails"].([]any)
	if len(details) != 6 {
		t.Fatalf("floorPlanDetails = %d entries, want 6", len(details))
	}

	resp, _ = doJSON(t, stdhttp.MethodDelete, srv.URL+"/api/expose/"+exposeID, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, stdhttp.MethodGet, srv.URL+"/api/expose/status/"+exposeID, nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("status after delete = %d, want 404", resp.StatusCode)
	}
	// Deleting again still succeeds.
	resp, _ = doJSON(t, stdhttp.MethodDelete, srv.URL+"/api/expose/"+exposeID, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("second delete status = %d", resp.StatusCode)
	}
}

func TestExposePreviewNotReady(t *testing.T) {
	srv, app := newTestServer(t)

	// Slow the executor down so the job is still pending when we peek.
	slow := expose.NewManager(app.Store, describe.NewStaticDescriber(), expose.Options{
		CacheDir:  app.Config.CacheDir,
		StepDelay: time.Minute,
		Logger:    zerolog.Nop(),
	})
	t.Cleanup(slow.Close)
	app.Manager = slow

	resp, body := doJSON(t, stdhttp.MethodPost, srv.URL+"/api/expose/generate/some-draft", nil)
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("generate status = %d", resp.StatusCode)
	}
	exposeID, _ := body["exposeId"].(string)

	resp, body = doJSON(t, stdhttp.MethodGet, srv.URL+"/api/expose/preview/"+exposeID, nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("preview of pending job = %d, want 404", resp.StatusCode)
	}
	if body["detail"] != "Expose preview not found" {
		t.Fatalf("detail = %v", body["detail"])
	}
}

func TestExposeStatusUnknown(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := doJSON(t, stdhttp.MethodGet, srv.URL+"/api/expose/status/unknown", nil)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["detail"] != "Expose not found" {
		t.Fatalf("detail = %v", body["detail"])
	}
}

func TestSweepEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	id := stageDraft(t, srv, map[string]any{})
	uploadImages(t, srv, id, []string{"keep.jpg"}, nil)

	// Drop an orphan straight into the cache directory.
	orphan := id + "_9_deadbeef.jpg"
	if err := writeFile(app.Config.CacheDir, orphan); err != nil {
		t.Fatalf("write orphan: %v", err)
	}

	resp, body := doJSON(t, stdhttp.MethodPost, srv.URL+"/api/cache/sweep?property_id="+id, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("sweep status = %d", resp.StatusCode)
	}
	if body["removedFiles"] != float64(1) {
		t.Fatalf("removedFiles = %v, want 1", body["removedFiles"])
	}
}

func writeFile(dir, name string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644)
}
