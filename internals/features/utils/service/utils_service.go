package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	schoolDTO "schoolhub_backend/internals/features/schools/schools/dto"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	studentDTO "schoolhub_backend/internals/features/schools/students/dto"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	teacherDTO "schoolhub_backend/internals/features/schools/teachers/dto"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	"schoolhub_backend/internals/features/utils/dto"
	helper "schoolhub_backend/internals/helpers"
)

const (
	schoolSearchLimit  = 10
	teacherSearchLimit = 20
	studentSearchLimit = 20
	slugMaxLen         = 100
	minQueryLen        = 2
)

type UtilsService struct {
	DB *gorm.DB
}

func NewUtilsService(db *gorm.DB) *UtilsService {
	return &UtilsService{DB: db}
}

// SlugAvailability cleans the requested slug the same way school creation
// does and reports which school holds it, if any.
func (s *UtilsService) SlugAvailability(ctx context.Context, raw string) (*dto.SlugAvailabilityResponse, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, helper.ErrValidation("slug parameter is required")
	}
	clean := helper.Slugify(raw, slugMaxLen)
	out := &dto.SlugAvailabilityResponse{RequestedSlug: raw, CleanSlug: clean, Available: true}

	var existing schoolModel.SchoolModel
	err := s.DB.WithContext(ctx).
		Where("LOWER(school_slug) = ?", strings.ToLower(clean)).
		First(&existing).Error
	switch {
	case err == nil:
		out.Available = false
		out.ExistingSchool = &existing.SchoolName
	case !helper.IsNotFound(err):
		return nil, helper.ErrStorage("check slug", err)
	}
	return out, nil
}

func States() dto.StatesResponse {
	return dto.StatesResponse{
		Country: constants.DefaultCountry,
		States:  constants.NigerianStates,
		Count:   len(constants.NigerianStates),
	}
}

func SchoolTypes() dto.SchoolTypesResponse {
	desc := lo.SliceToMap(schoolModel.SchoolTypes, func(t schoolModel.SchoolType) (schoolModel.SchoolType, string) {
		return t, t.Description()
	})
	return dto.SchoolTypesResponse{SchoolTypes: schoolModel.SchoolTypes, Descriptions: desc}
}

// SearchScope narrows a global search. A nil SchoolID searches every
// school; MembersVisible false hides teachers and students entirely.
type SearchScope struct {
	SchoolID       *uuid.UUID
	MembersVisible bool
}

func (s *UtilsService) Search(ctx context.Context, q string, scope SearchScope) (*dto.SearchResponse, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minQueryLen {
		return nil, helper.ErrValidation("Search query must be at least 2 characters")
	}
	db := s.DB.WithContext(ctx)
	like := helper.LikePattern(q)
	res := dto.SearchResults{
		Schools:  []schoolDTO.SchoolBrief{},
		Teachers: []teacherDTO.TeacherResponse{},
		Students: []studentDTO.StudentResponse{},
	}

	sq := db.Where(`LOWER(school_name) LIKE ? OR LOWER(school_slug) LIKE ?
		OR LOWER(COALESCE(school_contact_email,'')) LIKE ?`, like, like, like)
	if scope.SchoolID != nil {
		sq = sq.Where("school_id = ?", *scope.SchoolID)
	}
	var schools []schoolModel.SchoolModel
	if err := sq.Order("school_name").Limit(schoolSearchLimit).Find(&schools).Error; err != nil {
		return nil, helper.ErrStorage("search schools", err)
	}
	res.Schools = lo.Map(schools, func(m schoolModel.SchoolModel, _ int) schoolDTO.SchoolBrief {
		return schoolDTO.ToSchoolBrief(&m)
	})

	if scope.MembersVisible {
		tq := db.Where(`LOWER(teacher_first_name) LIKE ? OR LOWER(teacher_last_name) LIKE ?
			OR LOWER(teacher_code) LIKE ? OR LOWER(COALESCE(teacher_email,'')) LIKE ?`, like, like, like, like)
		stq := db.Where(`LOWER(student_first_name) LIKE ? OR LOWER(student_last_name) LIKE ?
			OR LOWER(student_code) LIKE ? OR LOWER(COALESCE(student_admission_number,'')) LIKE ?`, like, like, like, like)
		if scope.SchoolID != nil {
			tq = tq.Where("teacher_school_id = ?", *scope.SchoolID)
			stq = stq.Where("student_school_id = ?", *scope.SchoolID)
		}

		var teachers []teacherModel.TeacherModel
		if err := tq.Order("teacher_last_name, teacher_first_name").Limit(teacherSearchLimit).Find(&teachers).Error; err != nil {
			return nil, helper.ErrStorage("search teachers", err)
		}
		var students []studentModel.StudentModel
		if err := stq.Order("student_last_name, student_first_name").Limit(studentSearchLimit).Find(&students).Error; err != nil {
			return nil, helper.ErrStorage("search students", err)
		}
		res.Teachers = teacherDTO.FromModels(teachers)
		res.Students = lo.Map(students, func(m studentModel.StudentModel, _ int) studentDTO.StudentResponse {
			return studentDTO.FromModel(&m)
		})
	}

	return &dto.SearchResponse{
		Query:        q,
		TotalResults: len(res.Schools) + len(res.Teachers) + len(res.Students),
		Results:      res,
	}, nil
}
