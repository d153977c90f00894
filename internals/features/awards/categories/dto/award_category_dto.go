package dto

import "pahla_backend/internals/features/awards/categories/model"

type AwardCategoryResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	ClusterTitle string   `json:"cluster_title,omitempty"`
	Awards       []string `json:"awards"`
}

func FromModel(m model.AwardCategoryModel) AwardCategoryResponse {
	awards := []string(m.AwardCategoryAwards)
	if awards == nil {
		awards = []string{}
	}
	return AwardCategoryResponse{
		ID:           m.AwardCategoryID,
		Title:        m.AwardCategoryTitle,
		ClusterTitle: m.AwardCategoryClusterTitle,
		Awards:       awards,
	}
}

func FromModels(ms []model.AwardCategoryModel) []AwardCategoryResponse {
	out := make([]AwardCategoryResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromModel(m))
	}
	return out
}
