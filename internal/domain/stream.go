package domain

import "github.com/google/uuid"

// TileWarmJob - задача на прогрев кеша тайлов слоя (или всех слоев, если LayerID == 0)
type TileWarmJob struct {
	JobID   uuid.UUID `json:"job_id"`
	LayerID int64     `json:"layer_id,omitempty"`
	MinZoom *int      `json:"minzoom,omitempty"`
	MaxZoom *int      `json:"maxzoom,omitempty"`
}

// AllLayers - задача относится ко всем слоям
func (j *TileWarmJob) AllLayers() bool {
	return j.LayerID == 0
}

// ZoomRange возвращает диапазон зумов задачи, подставляя значения слоя
func (j *TileWarmJob) ZoomRange(layerMin, layerMax int) (int, int) {
	minZoom, maxZoom := layerMin, layerMax
	if j.MinZoom != nil {
		minZoom = *j.MinZoom
	}
	if j.MaxZoom != nil {
		maxZoom = *j.MaxZoom
	}
	return minZoom, maxZoom
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
