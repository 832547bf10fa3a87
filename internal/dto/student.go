package dto

// RegisterStudentRequest creates a student account after the PRN clears the
// eligibility gate.
type RegisterStudentRequest struct {
	PRN       string  `json:"prn" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FullName  string  `json:"full_name" validate:"required"`
	CollegeID string  `json:"college_id" validate:"required"`
	Branch    string  `json:"branch"`
	PhotoURL  *string `json:"photo_url"`
}
