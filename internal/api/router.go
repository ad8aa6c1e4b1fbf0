package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mpdharvest/internal/cache"
	"mpdharvest/internal/dash"
	"mpdharvest/internal/logger"
)

// maxManifestSize bounds manifests posted to the API.
const maxManifestSize = 16 << 20

// ManifestFetcher retrieves a manifest and reports where it was served from.
type ManifestFetcher interface {
	FetchManifest(ctx context.Context, manifestURL string) ([]byte, string, error)
}

// Response is the JSON body returned for a resolved manifest.
type Response struct {
	dash.URLInfo
	Diagnostics []dash.Diagnostic `json:"diagnostics"`
}

type API struct {
	fetcher ManifestFetcher
	cache   *cache.ResponseCache
	logger  logger.Logger
}

func New(fetcher ManifestFetcher, responses *cache.ResponseCache, log logger.Logger) http.Handler {
	api := &API{
		fetcher: fetcher,
		cache:   responses,
		logger:  log,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /resolve", api.handleResolveRemote)
	mux.HandleFunc("POST /resolve", api.handleResolveBody)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return mux
}

// handleResolveRemote fetches the manifest named by the url query parameter
// and returns its segment URLs.
func (a *API) handleResolveRemote(w http.ResponseWriter, r *http.Request) {
	manifestURL := r.URL.Query().Get("url")
	if manifestURL == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	if body, found := a.cache.Get(manifestURL); found {
		a.logger.Debugf("Serving cached resolution of %s", manifestURL)
		writeJSON(w, body)
		return
	}

	data, finalURL, err := a.fetcher.FetchManifest(r.Context(), manifestURL)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch manifest: %v", err), http.StatusBadGateway)
		return
	}

	body, ok := a.resolve(w, data, finalURL)
	if !ok {
		return
	}
	a.cache.Set(manifestURL, body)
	writeJSON(w, body)
}

// handleResolveBody resolves a manifest posted in the request body; the url
// query parameter gives the location it was retrieved from.
func (a *API) handleResolveBody(w http.ResponseWriter, r *http.Request) {
	manifestURL := r.URL.Query().Get("url")
	if manifestURL == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxManifestSize))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read manifest: %v", err), http.StatusBadRequest)
		return
	}

	if body, ok := a.resolve(w, data, manifestURL); ok {
		writeJSON(w, body)
	}
}

// resolve renders the response for a manifest, or writes an error and
// returns false.
func (a *API) resolve(w http.ResponseWriter, data []byte, manifestURL string) ([]byte, bool) {
	res, err := dash.GetFragmentURLs(data, manifestURL, a.logger)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dash.ErrMalformedManifest) || errors.Is(err, dash.ErrNoBaseURL) || errors.Is(err, dash.ErrInvalidFormat) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, fmt.Sprintf("Failed to resolve manifest: %v", err), status)
		return nil, false
	}

	resp := Response{URLInfo: res.URLInfo(), Diagnostics: res.Diagnostics}
	if resp.URLs == nil {
		resp.URLs = []string{}
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []dash.Diagnostic{}
	}
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
