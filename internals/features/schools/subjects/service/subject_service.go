package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	classService "schoolhub_backend/internals/features/schools/classes/service"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	"schoolhub_backend/internals/features/schools/subjects/dto"
	"schoolhub_backend/internals/features/schools/subjects/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	teacherService "schoolhub_backend/internals/features/schools/teachers/service"
	helper "schoolhub_backend/internals/helpers"
)

type SubjectService struct {
	DB *gorm.DB
}

func NewSubjectService(db *gorm.DB) *SubjectService {
	return &SubjectService{DB: db}
}

func FindInSchool(tx *gorm.DB, schoolID, subjectID uuid.UUID) (*model.SubjectModel, error) {
	var m model.SubjectModel
	if err := tx.Where("subject_id = ? AND subject_school_id = ?", subjectID, schoolID).First(&m).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("Subject not found")
		}
		return nil, helper.ErrStorage("find subject", err)
	}
	return &m, nil
}

func teachersByID(db *gorm.DB, rows []model.SubjectModel) (map[uuid.UUID]*teacherModel.TeacherModel, error) {
	out := map[uuid.UUID]*teacherModel.TeacherModel{}
	ids := lo.Uniq(lo.Map(rows, func(s model.SubjectModel, _ int) uuid.UUID { return s.SubjectTeacherID }))
	if len(ids) == 0 {
		return out, nil
	}
	var ts []teacherModel.TeacherModel
	if err := db.Where("teacher_id IN ?", ids).Find(&ts).Error; err != nil {
		return nil, err
	}
	for i := range ts {
		out[ts[i].TeacherID] = &ts[i]
	}
	return out, nil
}

func withTeachers(db *gorm.DB, rows []model.SubjectModel) ([]dto.SubjectResponse, error) {
	teachers, err := teachersByID(db, rows)
	if err != nil {
		return nil, helper.ErrStorage("load subject teachers", err)
	}
	return lo.Map(rows, func(s model.SubjectModel, _ int) dto.SubjectResponse {
		return dto.FromModel(&s, teachers[s.SubjectTeacherID])
	}), nil
}

/* =========================
   Reads
========================= */

type ListSubjectsFilter struct {
	ClassID    *uuid.UUID
	TeacherID  *uuid.UUID
	Search     string
	ActiveOnly bool
}

// List returns subjects ordered by name, each with its teacher.
func (s *SubjectService) List(ctx context.Context, schoolID uuid.UUID, f ListSubjectsFilter, p helper.Paging) ([]dto.SubjectResponse, int64, error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&model.SubjectModel{}).Where("subject_school_id = ?", schoolID)
	if f.ClassID != nil {
		q = q.Where("subject_class_id = ?", *f.ClassID)
	}
	if f.TeacherID != nil {
		q = q.Where("subject_teacher_id = ?", *f.TeacherID)
	}
	if f.ActiveOnly {
		q = q.Where("subject_is_active = ?", true)
	}
	if strings.TrimSpace(f.Search) != "" {
		like := helper.LikePattern(f.Search)
		q = q.Where(`LOWER(subject_name) LIKE ? OR LOWER(COALESCE(subject_code,'')) LIKE ?
			OR LOWER(COALESCE(subject_description,'')) LIKE ?`, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.ErrStorage("count subjects", err)
	}
	var rows []model.SubjectModel
	if err := q.Order("subject_name").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return nil, 0, helper.ErrStorage("list subjects", err)
	}
	out, err := withTeachers(db, rows)
	return out, total, err
}

// ForClassWithTeachers lists every subject of a class, inactive included.
func (s *SubjectService) ForClassWithTeachers(ctx context.Context, schoolID, classID uuid.UUID) ([]dto.SubjectResponse, error) {
	db := s.DB.WithContext(ctx)
	if _, err := classService.FindInSchool(db, schoolID, classID); err != nil {
		return nil, err
	}
	var rows []model.SubjectModel
	if err := db.Where("subject_class_id = ?", classID).Order("subject_name").Find(&rows).Error; err != nil {
		return nil, helper.ErrStorage("list class subjects", err)
	}
	return withTeachers(db, rows)
}

func (s *SubjectService) Get(ctx context.Context, schoolID, subjectID uuid.UUID) (*dto.SubjectResponse, error) {
	db := s.DB.WithContext(ctx)
	m, err := FindInSchool(db, schoolID, subjectID)
	if err != nil {
		return nil, err
	}
	out, err := withTeachers(db, []model.SubjectModel{*m})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// CAStructure resolves the subject override against the school's
// academic_config.ca_structure.
func (s *SubjectService) CAStructure(ctx context.Context, schoolID, subjectID uuid.UUID) (*dto.CAStructureResponse, error) {
	db := s.DB.WithContext(ctx)
	m, err := FindInSchool(db, schoolID, subjectID)
	if err != nil {
		return nil, err
	}
	school, err := schoolService.NewSchoolService(s.DB).Get(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	cfg, err := school.AcademicConfig()
	if err != nil {
		return nil, helper.ErrStorage("decode academic config", err)
	}

	var schoolDefault any
	if cfg.HasCAStructure() {
		schoolDefault = cfg.CAStructure
	}
	out := &dto.CAStructureResponse{
		SubjectID:     m.SubjectID,
		SubjectName:   m.SubjectName,
		CAStructure:   m.EffectiveCAStructure(schoolDefault),
		HasOverride:   m.HasCAStructureOverride(),
		SchoolDefault: schoolDefault,
	}
	if out.HasOverride {
		out.Override = json.RawMessage(m.SubjectCAStructureOverride)
	}
	return out, nil
}

/* =========================
   Writes
========================= */

func (s *SubjectService) Create(ctx context.Context, schoolID uuid.UUID, req dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	if len([]rune(req.Name)) < 2 {
		return nil, helper.ErrValidation("Subject name must be at least 2 characters")
	}
	m := req.ToModel(schoolID)
	var teacher *teacherModel.TeacherModel

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := classService.ReferencedClass(tx, schoolID, m.SubjectClassID); err != nil {
			return err
		}
		t, err := teacherService.ReferencedTeacher(tx, schoolID, m.SubjectTeacherID)
		if err != nil {
			return err
		}
		teacher = t
		if err := tx.Create(m).Error; err != nil {
			return helper.ErrStorage("create subject", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] subject created id=%s school=%s class=%s name=%q", m.SubjectID, schoolID, m.SubjectClassID, m.SubjectName)
	out := dto.FromModel(m, teacher)
	return &out, nil
}

func (s *SubjectService) Update(ctx context.Context, schoolID, subjectID uuid.UUID, req dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	var (
		m       *model.SubjectModel
		teacher *teacherModel.TeacherModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = FindInSchool(tx, schoolID, subjectID); err != nil {
			return err
		}
		if req.Name != nil && len([]rune(*req.Name)) < 2 {
			return helper.ErrValidation("Subject name must be at least 2 characters")
		}
		req.ApplyToModel(m)
		if teacher, err = teacherService.ReferencedTeacher(tx, schoolID, m.SubjectTeacherID); err != nil {
			return err
		}
		if err := tx.Save(m).Error; err != nil {
			return helper.ErrStorage("update subject", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := dto.FromModel(m, teacher)
	return &out, nil
}
