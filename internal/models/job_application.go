package models

import "time"

// JobApplication records one applicant's application to a job post. An
// applicant can apply to a given job post only once.
type JobApplication struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	JobPostID      uint      `gorm:"not null;uniqueIndex:idx_job_applications_applicant,priority:1" json:"jobPostId"`
	JobPost        JobPost   `gorm:"foreignKey:JobPostID" json:"-"`
	ApplicantID    uint      `gorm:"not null;uniqueIndex:idx_job_applications_applicant,priority:2;index" json:"applicantId"`
	Applicant      User      `gorm:"foreignKey:ApplicantID" json:"-"`
	ResumeLetter   string    `gorm:"type:text" json:"resumeLetter,omitempty"`
	ExpectedSalary *int64    `json:"expectedSalary,omitempty"`
	Availability   string    `json:"availability,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
