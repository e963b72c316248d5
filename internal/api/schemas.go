package api

import (
	"time"

	"github.com/kdrivas1989/video-trimmer/internal/asset"
	"github.com/kdrivas1989/video-trimmer/internal/media"
	"github.com/kdrivas1989/video-trimmer/internal/store"
)

type HealthResponse struct {
	Status  string              `json:"status"`
	Version string              `json:"version"`
	UptimeS int64               `json:"uptime_s"`
	Assets  int                 `json:"assets"`
	Engine  *media.Capabilities `json:"engine,omitempty"`
}

type UploadResponse struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	Duration    float64 `json:"duration"`
	DurationStr string  `json:"duration_str"`
}

type TrimRequest struct {
	ID         string `json:"id"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	OutputName string `json:"output_name,omitempty"`
}

type TrimResponse struct {
	Success    bool   `json:"success"`
	ID         string `json:"id"`
	OutputName string `json:"output_name"`
}

type DurationResponse struct {
	Duration    float64 `json:"duration"`
	DurationStr string  `json:"duration_str"`
}

type PreviewStatusResponse struct {
	Exists     bool   `json:"exists"`
	Playable   bool   `json:"playable"`
	UsePreview bool   `json:"use_preview"`
	VideoID    string `json:"video_id"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

type JobResponse struct {
	ID         string `json:"id"`
	AssetID    string `json:"asset_id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	OutputName string `json:"output_name,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func JobToResponse(j *store.Job) JobResponse {
	return JobResponse{
		ID:         j.ID,
		AssetID:    j.AssetID,
		Type:       j.Type,
		Status:     j.Status,
		OutputName: j.OutputName,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
	}
}

func StatusToResponse(id string, st asset.PreviewStatus) PreviewStatusResponse {
	return PreviewStatusResponse{
		Exists:     st.Exists,
		Playable:   st.Playable,
		UsePreview: st.UsePreview,
		VideoID:    id,
	}
}
