package database

import (
	"log"

	"gorm.io/gorm"

	paymentModel "schoolhub_backend/internals/features/finance/payments/model"
	classModel "schoolhub_backend/internals/features/schools/classes/model"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	authModel "schoolhub_backend/internals/features/users/auth/model"
	userModel "schoolhub_backend/internals/features/users/user/model"
)

// Models lists every table in creation order.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&schoolModel.SchoolModel{},
		&teacherModel.TeacherModel{},
		&classModel.ClassModel{},
		&studentModel.StudentModel{},
		&studentModel.StudentTransferModel{},
		&subjectModel.SubjectModel{},
		&authModel.TokenBlacklistModel{},
		&paymentModel.SubscriptionPaymentModel{},
		&paymentModel.PaymentGatewayEventModel{},
	}
}

// AutoMigrate creates or alters all tables. Production runs it only when
// DB_AUTO_MIGRATE=true; tests always do.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		log.Printf("[ERROR] auto-migrate failed: %v", err)
		return err
	}
	log.Println("[INFO] auto-migrate done")
	return nil
}
