package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	classDTO "schoolhub_backend/internals/features/schools/classes/dto"
	classModel "schoolhub_backend/internals/features/schools/classes/model"
	classService "schoolhub_backend/internals/features/schools/classes/service"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	"schoolhub_backend/internals/features/schools/students/dto"
	"schoolhub_backend/internals/features/schools/students/model"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

// MaxImportRows bounds one POST /students/import body.
const MaxImportRows = 500

type StudentService struct {
	DB *gorm.DB
}

func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{DB: db}
}

func errInvalidGender() error {
	return helper.ErrValidation("gender must be one of: male, female")
}

func FindInSchool(tx *gorm.DB, schoolID, studentID uuid.UUID) (*model.StudentModel, error) {
	var m model.StudentModel
	if err := tx.Where("student_id = ? AND student_school_id = ?", studentID, schoolID).First(&m).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("Student not found")
		}
		return nil, helper.ErrStorage("find student", err)
	}
	return &m, nil
}

func conflictOrStorage(op string, err error) error {
	if helper.IsUniqueViolation(err) {
		return helper.ErrConflict("Admission number already exists in this school")
	}
	return helper.ErrStorage(op, err)
}

/* =========================
   Reads
========================= */

type ListStudentsFilter struct {
	ClassID    *uuid.UUID
	Gender     string
	Search     string
	ActiveOnly bool
}

func (s *StudentService) withClasses(db *gorm.DB, rows []model.StudentModel) ([]dto.StudentResponse, error) {
	ids := lo.Uniq(lo.FilterMap(rows, func(st model.StudentModel, _ int) (uuid.UUID, bool) {
		return lo.FromPtr(st.StudentClassID), st.StudentClassID != nil
	}))
	classes := map[uuid.UUID]*classModel.ClassModel{}
	if len(ids) > 0 {
		var cs []classModel.ClassModel
		if err := db.Where("class_id IN ?", ids).Find(&cs).Error; err != nil {
			return nil, helper.ErrStorage("load student classes", err)
		}
		for i := range cs {
			classes[cs[i].ClassID] = &cs[i]
		}
	}
	return lo.Map(rows, func(st model.StudentModel, _ int) dto.StudentResponse {
		r := dto.FromModel(&st)
		if st.StudentClassID != nil {
			if c, ok := classes[*st.StudentClassID]; ok {
				cr := classDTO.FromModel(c)
				r.ClassDetails = &cr
			}
		}
		return r
	}), nil
}

// List returns students newest first, each with class details.
func (s *StudentService) List(ctx context.Context, schoolID uuid.UUID, f ListStudentsFilter, p helper.Paging) ([]dto.StudentResponse, int64, error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&model.StudentModel{}).Where("student_school_id = ?", schoolID)
	if f.ClassID != nil {
		q = q.Where("student_class_id = ?", *f.ClassID)
	}
	if f.Gender != "" {
		q = q.Where("student_gender = ?", strings.ToLower(f.Gender))
	}
	if f.ActiveOnly {
		q = q.Where("student_is_active = ?", true)
	}
	if strings.TrimSpace(f.Search) != "" {
		like := helper.LikePattern(f.Search)
		q = q.Where(`LOWER(student_first_name) LIKE ? OR LOWER(student_last_name) LIKE ?
			OR LOWER(student_code) LIKE ? OR LOWER(COALESCE(student_admission_number,'')) LIKE ?
			OR LOWER(COALESCE(student_guardian_name,'')) LIKE ? OR LOWER(COALESCE(student_guardian_phone,'')) LIKE ?`,
			like, like, like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.ErrStorage("count students", err)
	}
	var rows []model.StudentModel
	if err := q.Order("student_date_joined_platform DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, helper.ErrStorage("list students", err)
	}
	out, err := s.withClasses(db, rows)
	return out, total, err
}

// Detail adds class, form teacher and the class's active subjects.
func (s *StudentService) Detail(ctx context.Context, schoolID, studentID uuid.UUID) (*dto.StudentDetailResponse, error) {
	db := s.DB.WithContext(ctx)
	st, err := FindInSchool(db, schoolID, studentID)
	if err != nil {
		return nil, err
	}
	base, err := s.withClasses(db, []model.StudentModel{*st})
	if err != nil {
		return nil, err
	}
	out := &dto.StudentDetailResponse{StudentResponse: base[0], Subjects: []classDTO.SubjectWithTeacher{}}
	if out.ClassDetails == nil {
		return out, nil
	}

	teachers := map[uuid.UUID]*teacherModel.TeacherModel{}
	var subjects []subjectModel.SubjectModel
	if err := db.Where("subject_class_id = ? AND subject_is_active = ?", out.ClassDetails.ID, true).
		Order("subject_name").Find(&subjects).Error; err != nil {
		return nil, helper.ErrStorage("list student subjects", err)
	}
	ids := lo.Map(subjects, func(sb subjectModel.SubjectModel, _ int) uuid.UUID { return sb.SubjectTeacherID })
	if out.ClassDetails.FormTeacherID != nil {
		ids = append(ids, *out.ClassDetails.FormTeacherID)
	}
	if ids = lo.Uniq(ids); len(ids) > 0 {
		var ts []teacherModel.TeacherModel
		if err := db.Where("teacher_id IN ?", ids).Find(&ts).Error; err != nil {
			return nil, helper.ErrStorage("load teachers", err)
		}
		for i := range ts {
			teachers[ts[i].TeacherID] = &ts[i]
		}
	}
	if out.ClassDetails.FormTeacherID != nil {
		out.FormTeacher = classDTO.ToTeacherBrief(teachers[*out.ClassDetails.FormTeacherID])
	}
	out.Subjects = lo.Map(subjects, func(sb subjectModel.SubjectModel, _ int) classDTO.SubjectWithTeacher {
		return classDTO.ToSubjectWithTeacher(&sb, teachers[sb.SubjectTeacherID])
	})
	return out, nil
}

/* =========================
   Writes
========================= */

// insert reserves a seat and inserts st inside tx.
func insert(tx *gorm.DB, schoolID uuid.UUID, st *model.StudentModel) error {
	if st.StudentClassID != nil {
		if _, err := classService.ReferencedClass(tx, schoolID, *st.StudentClassID); err != nil {
			return err
		}
	}
	seat, err := schoolService.ReserveSeat(tx, schoolID, schoolModel.CodeKindStudent)
	if err != nil {
		return err
	}
	st.StudentCode = seat.Code
	if err := tx.Create(st).Error; err != nil {
		return conflictOrStorage("create student", err)
	}
	return nil
}

func (s *StudentService) Create(ctx context.Context, schoolID uuid.UUID, req dto.CreateStudentRequest) (*model.StudentModel, error) {
	if _, ok := model.ParseGender(lo.FromPtr(req.Gender)); !ok {
		return nil, errInvalidGender()
	}
	st := req.ToModel(schoolID, dbtime.Now())
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insert(tx, schoolID, st)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] student created id=%s school=%s code=%s", st.StudentID, schoolID, st.StudentCode)
	return st, nil
}

func (s *StudentService) Update(ctx context.Context, schoolID, studentID uuid.UUID, req dto.UpdateStudentRequest) (*model.StudentModel, error) {
	if req.Gender != nil && *req.Gender != "" {
		if _, ok := model.ParseGender(*req.Gender); !ok {
			return nil, errInvalidGender()
		}
	}
	var st *model.StudentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if st, err = FindInSchool(tx, schoolID, studentID); err != nil {
			return err
		}
		req.ApplyToModel(st)
		if req.ClassID != nil {
			if *req.ClassID == "" {
				st.StudentClassID = nil
			} else {
				cid, err := uuid.Parse(*req.ClassID)
				if err != nil {
					return helper.ErrValidation("class_id is not a valid UUID")
				}
				if _, err := classService.ReferencedClass(tx, schoolID, cid); err != nil {
					return err
				}
				st.StudentClassID = &cid
			}
		}
		if err := tx.Save(st).Error; err != nil {
			return conflictOrStorage("update student", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Transfer moves a student to another class of the same school and
// records the move. by is the acting user, nil for system moves.
func (s *StudentService) Transfer(ctx context.Context, schoolID, studentID, newClassID uuid.UUID, note *string, by *uuid.UUID) (*dto.TransferResponse, error) {
	var (
		st  *model.StudentModel
		rec *model.StudentTransferModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if st, err = FindInSchool(tx, schoolID, studentID); err != nil {
			return err
		}
		if _, err := classService.ReferencedClass(tx, schoolID, newClassID); err != nil {
			return err
		}
		if st.StudentClassID != nil && *st.StudentClassID == newClassID {
			return helper.ErrValidation("Student is already in this class")
		}

		rec = &model.StudentTransferModel{
			StudentTransferSchoolID:    schoolID,
			StudentTransferStudentID:   st.StudentID,
			StudentTransferFromClassID: st.StudentClassID,
			StudentTransferToClassID:   newClassID,
			StudentTransferNote:        note,
			StudentTransferBy:          by,
			StudentTransferAt:          dbtime.Now(),
		}
		st.StudentClassID = &newClassID
		if err := tx.Model(st).Update("student_class_id", newClassID).Error; err != nil {
			return helper.ErrStorage("transfer student", err)
		}
		if err := tx.Create(rec).Error; err != nil {
			return helper.ErrStorage("record student transfer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	from := "none"
	if rec.StudentTransferFromClassID != nil {
		from = rec.StudentTransferFromClassID.String()
	}
	log.Printf("[INFO] student %s transferred %s -> %s", studentID, from, newClassID)
	return &dto.TransferResponse{Student: dto.FromModel(st), TransferLog: dto.ToTransferLog(rec)}, nil
}

// Transfers lists the recorded moves of a student, newest first.
func (s *StudentService) Transfers(ctx context.Context, schoolID, studentID uuid.UUID) ([]dto.TransferLog, error) {
	db := s.DB.WithContext(ctx)
	if _, err := FindInSchool(db, schoolID, studentID); err != nil {
		return nil, err
	}
	var rows []model.StudentTransferModel
	if err := db.Where("student_transfer_student_id = ?", studentID).
		Order("student_transfer_at DESC").Find(&rows).Error; err != nil {
		return nil, helper.ErrStorage("list student transfers", err)
	}
	return lo.Map(rows, func(m model.StudentTransferModel, _ int) dto.TransferLog { return dto.ToTransferLog(&m) }), nil
}

// Import creates students row by row in one transaction. Each row runs in
// its own savepoint, so a bad row is reported without undoing the others
// and the seat counter only moves for rows that were inserted.
func (s *StudentService) Import(ctx context.Context, schoolID uuid.UUID, rows []dto.ImportStudentRow) (*dto.ImportResult, error) {
	if len(rows) == 0 {
		return nil, helper.ErrValidation("Invalid data format. Expected a non-empty array of students.")
	}
	if len(rows) > MaxImportRows {
		return nil, helper.ErrValidation("Too many rows in one import")
	}

	out := &dto.ImportResult{Successful: []dto.StudentResponse{}, Failed: []dto.ImportFailure{}}
	now := dbtime.Now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// fail fast on an unknown school before touching any row
		if _, err := schoolService.LockSchool(tx, schoolID); err != nil {
			return err
		}
		for i, row := range rows {
			req := row.ToCreate()
			req.Normalize()
			if err := helper.ValidateStruct(&req); err != nil {
				out.Failed = append(out.Failed, dto.ImportFailure{Row: i + 1, Data: row, Error: err.Error()})
				continue
			}
			st := req.ToModel(schoolID, now)
			if err := tx.Transaction(func(sp *gorm.DB) error { return insert(sp, schoolID, st) }); err != nil {
				out.Failed = append(out.Failed, dto.ImportFailure{Row: i + 1, Data: row, Error: err.Error()})
				continue
			}
			out.Successful = append(out.Successful, dto.FromModel(st))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] student import school=%s ok=%d failed=%d", schoolID, len(out.Successful), len(out.Failed))
	return out, nil
}
