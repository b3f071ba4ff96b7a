package service

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/classes/dto"
	"schoolhub_backend/internals/features/schools/classes/model"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	teacherService "schoolhub_backend/internals/features/schools/teachers/service"
	helper "schoolhub_backend/internals/helpers"
)

type ClassService struct {
	DB *gorm.DB
}

func NewClassService(db *gorm.DB) *ClassService {
	return &ClassService{DB: db}
}

func errInvalidSession() error {
	return helper.ErrValidation(`academic_session must look like "2025/2026"`)
}

// FindInSchool loads a class of schoolID; other schools' classes are 404.
func FindInSchool(tx *gorm.DB, schoolID, classID uuid.UUID) (*model.ClassModel, error) {
	var c model.ClassModel
	if err := tx.Where("class_id = ? AND class_school_id = ?", classID, schoolID).First(&c).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("Class not found")
		}
		return nil, helper.ErrStorage("find class", err)
	}
	return &c, nil
}

// ReferencedClass is FindInSchool for a class named by another record.
func ReferencedClass(tx *gorm.DB, schoolID, classID uuid.UUID) (*model.ClassModel, error) {
	c, err := FindInSchool(tx, schoolID, classID)
	if err != nil && helper.IsHTTPStatus(err, fiber.StatusNotFound) {
		return nil, helper.ErrNotFound("Class not found or belongs to different school")
	}
	return c, err
}

func displayNameTaken(tx *gorm.DB, schoolID uuid.UUID, displayName, session string, exclude uuid.UUID) (bool, error) {
	var n int64
	q := tx.Model(&model.ClassModel{}).
		Where("class_school_id = ? AND class_display_name = ? AND class_academic_session = ?", schoolID, displayName, session)
	if exclude != uuid.Nil {
		q = q.Where("class_id <> ?", exclude)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

/* =========================
   Reads
========================= */

type ListClassesFilter struct {
	Level           string
	Stream          string
	AcademicSession string
	ActiveOnly      bool
}

type classCount struct {
	ClassID uuid.UUID
	Count   int64
}

func countByClass(db *gorm.DB, table any, classCol, activeCol string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []classCount
	if err := db.Model(table).
		Select(classCol+" AS class_id, COUNT(*) AS count").
		Where(classCol+" IN ? AND "+activeCol+" = ?", ids, true).
		Group(classCol).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return lo.SliceToMap(rows, func(r classCount) (uuid.UUID, int64) { return r.ClassID, r.Count }), nil
}

func loadTeachers(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*teacherModel.TeacherModel, error) {
	out := map[uuid.UUID]*teacherModel.TeacherModel{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []teacherModel.TeacherModel
	if err := db.Where("teacher_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].TeacherID] = &rows[i]
	}
	return out, nil
}

// List returns classes with form teacher and active student/subject counts.
func (s *ClassService) List(ctx context.Context, schoolID uuid.UUID, f ListClassesFilter, p helper.Paging) ([]dto.ClassResponse, int64, error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&model.ClassModel{}).Where("class_school_id = ?", schoolID)
	if f.Level != "" {
		q = q.Where("class_level = ?", f.Level)
	}
	if f.Stream != "" {
		q = q.Where("class_stream = ?", f.Stream)
	}
	if f.AcademicSession != "" {
		q = q.Where("class_academic_session = ?", f.AcademicSession)
	}
	if f.ActiveOnly {
		q = q.Where("class_is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.ErrStorage("count classes", err)
	}
	var rows []model.ClassModel
	if err := q.Order("class_level, class_stream, class_academic_session").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, helper.ErrStorage("list classes", err)
	}
	if len(rows) == 0 {
		return []dto.ClassResponse{}, total, nil
	}

	ids := lo.Map(rows, func(c model.ClassModel, _ int) uuid.UUID { return c.ClassID })
	students, err := countByClass(db, &studentModel.StudentModel{}, "student_class_id", "student_is_active", ids)
	if err != nil {
		return nil, 0, helper.ErrStorage("count class students", err)
	}
	subjects, err := countByClass(db, &subjectModel.SubjectModel{}, "subject_class_id", "subject_is_active", ids)
	if err != nil {
		return nil, 0, helper.ErrStorage("count class subjects", err)
	}
	teacherIDs := lo.Uniq(lo.FilterMap(rows, func(c model.ClassModel, _ int) (uuid.UUID, bool) {
		if c.ClassFormTeacherID == nil {
			return uuid.Nil, false
		}
		return *c.ClassFormTeacherID, true
	}))
	teachers, err := loadTeachers(db, teacherIDs)
	if err != nil {
		return nil, 0, helper.ErrStorage("load form teachers", err)
	}

	out := make([]dto.ClassResponse, 0, len(rows))
	for i := range rows {
		r := dto.FromModel(&rows[i])
		sc, jc := students[r.ID], subjects[r.ID]
		r.StudentCount, r.SubjectCount = &sc, &jc
		if r.FormTeacherID != nil {
			r.FormTeacher = dto.ToTeacherBrief(teachers[*r.FormTeacherID])
		}
		out = append(out, r)
	}
	return out, total, nil
}

func (s *ClassService) Get(ctx context.Context, schoolID, classID uuid.UUID) (*model.ClassModel, error) {
	return FindInSchool(s.DB.WithContext(ctx), schoolID, classID)
}

// Detail adds form teacher, active students and active subjects.
func (s *ClassService) Detail(ctx context.Context, schoolID, classID uuid.UUID) (*dto.ClassDetailResponse, error) {
	db := s.DB.WithContext(ctx)
	c, err := FindInSchool(db, schoolID, classID)
	if err != nil {
		return nil, err
	}
	out := &dto.ClassDetailResponse{ClassResponse: dto.FromModel(c)}
	if c.ClassFormTeacherID != nil {
		teachers, err := loadTeachers(db, []uuid.UUID{*c.ClassFormTeacherID})
		if err != nil {
			return nil, helper.ErrStorage("load form teacher", err)
		}
		out.FormTeacher = dto.ToTeacherBrief(teachers[*c.ClassFormTeacherID])
	}
	if out.Students, err = s.Students(ctx, schoolID, classID); err != nil {
		return nil, err
	}
	if out.Subjects, err = s.Subjects(ctx, schoolID, classID); err != nil {
		return nil, err
	}
	return out, nil
}

// Students is the active roster ordered by last then first name.
func (s *ClassService) Students(ctx context.Context, schoolID, classID uuid.UUID) ([]dto.StudentBrief, error) {
	db := s.DB.WithContext(ctx)
	if _, err := FindInSchool(db, schoolID, classID); err != nil {
		return nil, err
	}
	var rows []studentModel.StudentModel
	if err := db.Where("student_class_id = ? AND student_is_active = ?", classID, true).
		Order("student_last_name, student_first_name").
		Find(&rows).Error; err != nil {
		return nil, helper.ErrStorage("list class students", err)
	}
	return lo.Map(rows, func(st studentModel.StudentModel, _ int) dto.StudentBrief { return dto.ToStudentBrief(&st) }), nil
}

// Subjects lists the active subjects of a class with their teacher.
func (s *ClassService) Subjects(ctx context.Context, schoolID, classID uuid.UUID) ([]dto.SubjectWithTeacher, error) {
	db := s.DB.WithContext(ctx)
	if _, err := FindInSchool(db, schoolID, classID); err != nil {
		return nil, err
	}
	var rows []subjectModel.SubjectModel
	if err := db.Where("subject_class_id = ? AND subject_is_active = ?", classID, true).
		Order("subject_name").
		Find(&rows).Error; err != nil {
		return nil, helper.ErrStorage("list class subjects", err)
	}
	ids := lo.Uniq(lo.Map(rows, func(sb subjectModel.SubjectModel, _ int) uuid.UUID { return sb.SubjectTeacherID }))
	teachers, err := loadTeachers(db, ids)
	if err != nil {
		return nil, helper.ErrStorage("load subject teachers", err)
	}
	return lo.Map(rows, func(sb subjectModel.SubjectModel, _ int) dto.SubjectWithTeacher {
		return dto.ToSubjectWithTeacher(&sb, teachers[sb.SubjectTeacherID])
	}), nil
}

/* =========================
   Writes
========================= */

func (s *ClassService) Create(ctx context.Context, schoolID uuid.UUID, req dto.CreateClassRequest) (*model.ClassModel, error) {
	if !model.ValidSession(req.AcademicSession) {
		return nil, errInvalidSession()
	}
	c := req.ToModel(schoolID)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := displayNameTaken(tx, schoolID, c.ClassDisplayName, c.ClassAcademicSession, uuid.Nil)
		if err != nil {
			return helper.ErrStorage("check class name", err)
		}
		if taken {
			return helper.ErrConflict("Class already exists for this session")
		}
		if c.ClassFormTeacherID != nil {
			if _, err := teacherService.ReferencedTeacher(tx, schoolID, *c.ClassFormTeacherID); err != nil {
				return err
			}
		}
		if err := tx.Create(c).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return helper.ErrConflict("Class already exists for this session")
			}
			return helper.ErrStorage("create class", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] class created id=%s school=%s name=%q session=%s", c.ClassID, schoolID, c.ClassDisplayName, c.ClassAcademicSession)
	return c, nil
}

// Update recomputes the display name and re-checks uniqueness whenever the
// name or session changes.
func (s *ClassService) Update(ctx context.Context, schoolID, classID uuid.UUID, req dto.UpdateClassRequest) (*model.ClassModel, error) {
	var c *model.ClassModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = FindInSchool(tx, schoolID, classID); err != nil {
			return err
		}

		level, stream, session := c.ClassLevel, c.ClassStream, c.ClassAcademicSession
		if req.Level != nil {
			if *req.Level == "" {
				return helper.ErrValidation("level cannot be empty")
			}
			level = *req.Level
		}
		if req.Stream != nil {
			stream = lo.Ternary[*string](*req.Stream == "", nil, req.Stream)
		}
		if req.AcademicSession != nil {
			if !model.ValidSession(*req.AcademicSession) {
				return errInvalidSession()
			}
			session = *req.AcademicSession
		}

		before := c.ClassDisplayName + "|" + c.ClassAcademicSession
		c.Rename(level, stream)
		c.ClassAcademicSession = session
		if c.ClassDisplayName+"|"+session != before {
			taken, err := displayNameTaken(tx, schoolID, c.ClassDisplayName, session, c.ClassID)
			if err != nil {
				return helper.ErrStorage("check class name", err)
			}
			if taken {
				return helper.ErrConflict("Class with this name already exists for this session")
			}
		}

		if req.FormTeacherID != nil {
			if *req.FormTeacherID == "" {
				c.ClassFormTeacherID = nil
			} else {
				tid, err := uuid.Parse(*req.FormTeacherID)
				if err != nil {
					return helper.ErrValidation("form_teacher_id is not a valid UUID")
				}
				if _, err := teacherService.ReferencedTeacher(tx, schoolID, tid); err != nil {
					return err
				}
				c.ClassFormTeacherID = &tid
			}
		}
		if req.IsActive != nil {
			c.ClassIsActive = *req.IsActive
		}

		if err := tx.Save(c).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return helper.ErrConflict("Class with this name already exists for this session")
			}
			return helper.ErrStorage("update class", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AssignFormTeacher sets the form teacher; the teacher must be in the school.
func (s *ClassService) AssignFormTeacher(ctx context.Context, schoolID, classID, teacherID uuid.UUID) (*model.ClassModel, *teacherModel.TeacherModel, error) {
	var (
		c *model.ClassModel
		t *teacherModel.TeacherModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = FindInSchool(tx, schoolID, classID); err != nil {
			return err
		}
		if t, err = teacherService.ReferencedTeacher(tx, schoolID, teacherID); err != nil {
			return err
		}
		c.ClassFormTeacherID = &t.TeacherID
		if err := tx.Model(c).Update("class_form_teacher_id", t.TeacherID).Error; err != nil {
			return helper.ErrStorage("assign form teacher", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return c, t, nil
}

// DisplayName previews the name a class would get.
func DisplayName(level string, stream *string) (dto.DisplayNameResponse, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return dto.DisplayNameResponse{}, helper.ErrValidation("level is required")
	}
	if stream != nil && strings.TrimSpace(*stream) == "" {
		stream = nil
	}
	return dto.DisplayNameResponse{Level: level, Stream: stream, DisplayName: model.BuildDisplayName(level, stream)}, nil
}
