package schools

import (
	"context"
	"log"

	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/schools/dto"
	"schoolhub_backend/internals/features/schools/schools/model"
	"schoolhub_backend/internals/features/schools/schools/service"
)

type demoSchool struct {
	Name string
	Type model.SchoolType
	City string
}

var demoSchools = []demoSchool{
	{Name: "Demo Primary School", Type: model.SchoolTypePrimary, City: "Ikeja"},
	{Name: "Demo Junior Secondary School", Type: model.SchoolTypeJunior, City: "Yaba"},
	{Name: "Demo Senior Secondary School", Type: model.SchoolTypeSenior, City: "Surulere"},
	{Name: "Demo Combined School", Type: model.SchoolTypeCombined, City: "Lekki"},
}

// SeedDemoSchools creates one school per type. Existing slugs are skipped,
// so the seed can run on every boot.
func SeedDemoSchools(ctx context.Context, db *gorm.DB) int {
	svc := service.NewSchoolService(db)
	created := 0
	for _, d := range demoSchools {
		slug := "demo-" + string(d.Type)
		taken, err := service.SlugTaken(db.WithContext(ctx), slug)
		if err != nil {
			log.Printf("[SEED] check slug %s: %v", slug, err)
			continue
		}
		if taken {
			log.Printf("[SEED] school %s exists, skipped", slug)
			continue
		}

		city := d.City
		m, err := svc.Create(ctx, dto.CreateSchoolRequest{
			Name:       d.Name,
			SchoolType: string(d.Type),
			Slug:       &slug,
			City:       &city,
		})
		if err != nil {
			log.Printf("[SEED] create school %s: %v", slug, err)
			continue
		}
		created++
		log.Printf("[SEED] school %s id=%s teacher_code=%s student_code=%s",
			m.SchoolSlug, m.SchoolID, m.SchoolTeacherRegistrationCode, m.SchoolStudentRegistrationCode)
	}
	return created
}
