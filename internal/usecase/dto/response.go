package dto

// WarmTilesResponse - ответ на постановку задачи прогрева
type WarmTilesResponse struct {
	JobID  string `json:"job_id"`
	Queued bool   `json:"queued"` // false - задача выполняется в процессе API
}

// ProcessResponse - итог обработки слоя
type ProcessResponse struct {
	InputLayer  string `json:"input_layer"`
	OutputLayer string `json:"output_layer"`
	OutputID    int64  `json:"output_id"`
	Operation   string `json:"operation"`
	Features    int64  `json:"features"`
}

// RouteLineResponse - маршрут одной линией
type RouteLineResponse struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// LayerResponse - краткая информация о слое
type LayerResponse struct {
	ID       int64                  `json:"id"`
	Name     string                 `json:"name"`
	GeomType string                 `json:"geom_type"`
	Routable bool                   `json:"routable"`
	Settings map[string]interface{} `json:"settings"`
}

// HealthResponse - состояние зависимостей сервиса
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
