package dto

import (
	schoolDTO "schoolhub_backend/internals/features/schools/schools/dto"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	studentDTO "schoolhub_backend/internals/features/schools/students/dto"
	teacherDTO "schoolhub_backend/internals/features/schools/teachers/dto"
)

type SlugAvailabilityResponse struct {
	RequestedSlug  string  `json:"requested_slug"`
	CleanSlug      string  `json:"clean_slug"`
	Available      bool    `json:"available"`
	ExistingSchool *string `json:"existing_school"`
}

type StatesResponse struct {
	Country string   `json:"country"`
	States  []string `json:"states"`
	Count   int      `json:"count"`
}

type SchoolTypesResponse struct {
	SchoolTypes  []schoolModel.SchoolType          `json:"school_types"`
	Descriptions map[schoolModel.SchoolType]string `json:"descriptions"`
}

type SearchResults struct {
	Schools  []schoolDTO.SchoolBrief      `json:"schools"`
	Teachers []teacherDTO.TeacherResponse `json:"teachers"`
	Students []studentDTO.StudentResponse `json:"students"`
}

type SearchResponse struct {
	Query        string        `json:"query"`
	TotalResults int           `json:"total_results"`
	Results      SearchResults `json:"results"`
}
