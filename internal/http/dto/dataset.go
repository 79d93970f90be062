package dto

import "aitools.app/recommender/internal/model"

type DatasetResponse struct {
	Herramientas []model.ToolRecord `json:"herramientas"`
	Count        int                `json:"count"`
}

func ToDatasetResponse(rows []model.ToolRecord) DatasetResponse {
	if rows == nil {
		rows = []model.ToolRecord{}
	}
	return DatasetResponse{
		Herramientas: rows,
		Count:        len(rows),
	}
}
