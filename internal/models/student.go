package models

import "time"

// Student represents a student account gated by PRN eligibility. The reset
// deactivates the account and clears photo references while leaving the
// profile columns untouched.
type Student struct {
	ID           string    `db:"id" json:"id"`
	PRN          string    `db:"prn" json:"prn"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	CollegeID    string    `db:"college_id" json:"college_id"`
	Branch       string    `db:"branch" json:"branch"`
	Active       bool      `db:"active" json:"active"`
	PhotoURL     *string   `db:"photo_url" json:"photo_url,omitempty"`
	PhotoFolder  *string   `db:"photo_folder" json:"photo_folder,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentPhotoRef points at one externally hosted photograph. Collected inside
// the reset transaction before the relational references are cleared, consumed
// by the post-commit cleanup.
type StudentPhotoRef struct {
	StudentID   string  `db:"id"`
	PhotoURL    string  `db:"photo_url"`
	PhotoFolder *string `db:"photo_folder"`
}

// College identifies one institution in the portal.
type College struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Region    string    `db:"region" json:"region"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
