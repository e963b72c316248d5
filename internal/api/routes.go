package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kdrivas1989/video-trimmer/internal/config"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Post("/upload", uploadHandler(cfg))
	r.Post("/trim", trimHandler(cfg))
	r.Get("/download/{id}", downloadHandler(cfg))
	r.Get("/duration/{id}", durationHandler(cfg))
	r.Get("/video/{id}", videoHandler(cfg))
	r.Get("/preview/{id}", previewHandler(cfg))
	r.Get("/preview/status/{id}", previewStatusHandler(cfg))
	r.Delete("/delete/{id}", deleteHandler(cfg))
	r.Get("/jobs", listJobsHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
			Assets:  cfg.Assets.Registry().Count(),
		}
		if cfg.Engine != nil {
			resp.Engine = cfg.Engine
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				msg := fmt.Sprintf("File exceeds the %d MiB upload limit", maxErr.Limit/(1024*1024))
				WriteError(w, http.StatusBadRequest, msg, "INVALID_INPUT")
				return
			}
			WriteError(w, http.StatusBadRequest, "No file provided", "INVALID_INPUT")
			return
		}
		defer file.Close()

		a, err := cfg.Assets.Upload(r.Context(), header.Filename, file)
		if err != nil {
			WriteAssetError(w, err)
			return
		}

		// Probe the codec off the request path; a non-playable upload
		// starts its preview transcode right away.
		go func(id string) {
			if _, err := cfg.Assets.Status(context.Background(), id); err != nil {
				cfg.Logger.Warn("post-upload playability check failed", "asset_id", id, "error", err)
			}
		}(a.ID)

		WriteJSON(w, http.StatusOK, UploadResponse{
			ID:          a.ID,
			Filename:    a.OriginalFilename,
			Duration:    a.Duration,
			DurationStr: formatDuration(a.Duration),
		})
	}
}

func trimHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TrimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.ID == "" {
			WriteError(w, http.StatusBadRequest, "id is required", "BAD_REQUEST")
			return
		}

		outputName, err := cfg.Assets.Trim(r.Context(), req.ID, req.Start, req.End, req.OutputName)
		if err != nil {
			WriteAssetError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, TrimResponse{Success: true, ID: req.ID, OutputName: outputName})
	}
}

func downloadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := cfg.Assets.Lookup(chi.URLParam(r, "id"))
		if err != nil {
			WriteAssetError(w, err)
			return
		}
		if a.TrimOutputPath == "" {
			WriteError(w, http.StatusBadRequest, "Video not yet trimmed", "NOT_TRIMMED")
			return
		}

		if err := cfg.Streamer.ServeDownload(w, r, a.TrimOutputPath, a.TrimOutputName); err != nil {
			cfg.Logger.Error("download error", "error", err, "asset_id", a.ID)
		}
	}
}

func durationHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dur, err := cfg.Assets.Duration(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteAssetError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, DurationResponse{
			Duration:    dur,
			DurationStr: formatDuration(dur),
		})
	}
}

func videoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := cfg.Assets.Lookup(chi.URLParam(r, "id"))
		if err != nil {
			WriteAssetError(w, err)
			return
		}

		if err := cfg.Streamer.ServeFile(w, r, a.SourcePath); err != nil {
			cfg.Logger.Error("video streaming error", "error", err, "asset_id", a.ID)
		}
	}
}

func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		a, err := cfg.Assets.Lookup(id)
		if err != nil {
			WriteAssetError(w, err)
			return
		}

		// Idempotent: an existing preview short-circuits, a playable
		// source needs none, everything else transcodes now.
		if err := cfg.Assets.EnsurePreview(r.Context(), id); err != nil {
			WriteAssetError(w, err)
			return
		}

		path := cfg.Assets.PreviewPath(id)
		st, err := cfg.Assets.Status(r.Context(), id)
		if err != nil {
			WriteAssetError(w, err)
			return
		}
		if !st.UsePreview {
			// Playable source, no derived copy: stream the original.
			path = a.SourcePath
		}

		if err := cfg.Streamer.ServeFile(w, r, path); err != nil {
			cfg.Logger.Error("preview streaming error", "error", err, "asset_id", id)
		}
	}
}

func previewStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		st, err := cfg.Assets.Status(r.Context(), id)
		if err != nil {
			WriteAssetError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, StatusToResponse(id, st))
	}
}

func deleteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Assets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			WriteAssetError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, DeleteResponse{Success: true})
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Jobs == nil {
			WriteJSON(w, http.StatusOK, JobsResponse{Jobs: []JobResponse{}})
			return
		}

		jobs, err := cfg.Jobs.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
