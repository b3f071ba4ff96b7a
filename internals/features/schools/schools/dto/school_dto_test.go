package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	helper "schoolhub_backend/internals/helpers"
)

func TestSchoolNameValidation(t *testing.T) {
	tests := []struct {
		name    string
		school  string
		wantErr bool
	}{
		{"single letter", "Q", false},
		{"regular", "Echo High", false},
		{"empty", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			create := CreateSchoolRequest{Name: tc.school, SchoolType: "primary"}
			join := CreateAndJoinRequest{SchoolName: tc.school, SchoolType: "primary"}
			if tc.wantErr {
				assert.Error(t, helper.ValidateStruct(&create))
				assert.Error(t, helper.ValidateStruct(&join))
				return
			}
			assert.NoError(t, helper.ValidateStruct(&create))
			assert.NoError(t, helper.ValidateStruct(&join))
		})
	}
}
