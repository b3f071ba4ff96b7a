package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	classModel "schoolhub_backend/internals/features/schools/classes/model"
	"schoolhub_backend/internals/features/schools/dashboard/dto"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	teacherDTO "schoolhub_backend/internals/features/schools/teachers/dto"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

// NewWindow is how far back "new" members are counted.
const NewWindow = 30 * 24 * time.Hour

type DashboardService struct {
	DB *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db}
}

type counter struct {
	name  string
	model any
	where string
	args  []any
	dst   *int64
}

// Overview runs the per-school counts concurrently; none of them mutate.
func (s *DashboardService) Overview(ctx context.Context, schoolID uuid.UUID) (*dto.OverviewResponse, error) {
	school, err := schoolService.NewSchoolService(s.DB).Get(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	now := dbtime.Now()
	since := now.Add(-NewWindow)

	out := &dto.OverviewResponse{SchoolID: school.SchoolID, SchoolName: school.SchoolName}
	sum := &out.Summary
	counters := []counter{
		{"students", &studentModel.StudentModel{}, "student_school_id = ?", []any{schoolID}, &sum.Students.Total},
		{"active students", &studentModel.StudentModel{}, "student_school_id = ? AND student_is_active = ?", []any{schoolID, true}, &sum.Students.Active},
		{"new students", &studentModel.StudentModel{}, "student_school_id = ? AND student_date_joined_platform >= ?", []any{schoolID, since}, &sum.Students.NewLast30Days},
		{"teachers", &teacherModel.TeacherModel{}, "teacher_school_id = ?", []any{schoolID}, &sum.Teachers.Total},
		{"active teachers", &teacherModel.TeacherModel{}, "teacher_school_id = ? AND teacher_is_active = ?", []any{schoolID, true}, &sum.Teachers.Active},
		{"new teachers", &teacherModel.TeacherModel{}, "teacher_school_id = ? AND teacher_date_joined_platform >= ?", []any{schoolID, since}, &sum.Teachers.NewLast30Days},
		{"classes", &classModel.ClassModel{}, "class_school_id = ?", []any{schoolID}, &sum.Classes.Total},
		{"active classes", &classModel.ClassModel{}, "class_school_id = ? AND class_is_active = ?", []any{schoolID, true}, &sum.Classes.Active},
		{"subjects", &subjectModel.SubjectModel{}, "subject_school_id = ?", []any{schoolID}, &sum.Subjects.Total},
	}

	g, gctx := errgroup.WithContext(ctx)
	db := s.DB.WithContext(gctx)
	for _, c := range counters {
		g.Go(func() error {
			if err := db.Model(c.model).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
				return helper.ErrStorage("count "+c.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum.Students.Inactive = sum.Students.Total - sum.Students.Active
	sum.Teachers.Inactive = sum.Teachers.Total - sum.Teachers.Active
	out.Subscription = dto.SubscriptionSummary{
		Status:        school.SchoolSubscriptionStatus,
		TrialEndsAt:   school.SchoolTrialEndsAt,
		DaysRemaining: school.DaysRemainingInTrial(now),
	}
	return out, nil
}

// Teacher summarises what a teacher is responsible for. schoolID scopes the
// lookup; uuid.Nil means any school (platform admins).
func (s *DashboardService) Teacher(ctx context.Context, schoolID, teacherID uuid.UUID) (*dto.TeacherDashboardResponse, error) {
	db := s.DB.WithContext(ctx)

	var t teacherModel.TeacherModel
	q := db.Where("teacher_id = ?", teacherID)
	if schoolID != uuid.Nil {
		q = q.Where("teacher_school_id = ?", schoolID)
	}
	if err := q.First(&t).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("Teacher not found")
		}
		return nil, helper.ErrStorage("find teacher", err)
	}

	var formClasses []classModel.ClassModel
	if err := db.Where("class_form_teacher_id = ? AND class_is_active = ?", teacherID, true).
		Order("class_level, class_display_name").Find(&formClasses).Error; err != nil {
		return nil, helper.ErrStorage("list form classes", err)
	}
	var subjects []subjectModel.SubjectModel
	if err := db.Where("subject_teacher_id = ? AND subject_is_active = ?", teacherID, true).
		Order("subject_name").Find(&subjects).Error; err != nil {
		return nil, helper.ErrStorage("list taught subjects", err)
	}

	classIDs := lo.Uniq(lo.Map(subjects, func(sb subjectModel.SubjectModel, _ int) uuid.UUID { return sb.SubjectClassID }))
	classes := map[uuid.UUID]*classModel.ClassModel{}
	var students int64
	if len(classIDs) > 0 {
		var cs []classModel.ClassModel
		if err := db.Where("class_id IN ?", classIDs).Find(&cs).Error; err != nil {
			return nil, helper.ErrStorage("load subject classes", err)
		}
		for i := range cs {
			classes[cs[i].ClassID] = &cs[i]
		}
		// a student taking two of this teacher's subjects counts once
		if err := db.Model(&studentModel.StudentModel{}).
			Where("student_class_id IN ? AND student_is_active = ?", classIDs, true).
			Count(&students).Error; err != nil {
			return nil, helper.ErrStorage("count taught students", err)
		}
	}

	return &dto.TeacherDashboardResponse{
		TeacherID:   t.TeacherID,
		TeacherName: t.FullName(),
		SchoolID:    t.TeacherSchoolID,
		Summary: dto.TeacherSummary{
			FormTeacherOf:  len(formClasses),
			SubjectsTaught: len(subjects),
			TotalStudents:  students,
			ActiveStatus:   t.TeacherIsActive,
		},
		Details: dto.TeacherDetails{
			FormTeacherClasses: lo.Map(formClasses, func(c classModel.ClassModel, _ int) teacherDTO.ClassBrief {
				return teacherDTO.ToClassBrief(&c)
			}),
			Subjects: lo.Map(subjects, func(sb subjectModel.SubjectModel, _ int) teacherDTO.SubjectBrief {
				return teacherDTO.ToSubjectBrief(&sb, classes[sb.SubjectClassID])
			}),
		},
	}, nil
}
