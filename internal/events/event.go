// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"learnhub_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserRegistered is published when a new user successfully registers.
// VerificationToken is consumed in-process by the notify module and kept
// out of any serialized form.
type UserRegistered struct {
	BaseEvent
	UserID            uuid.UUID `json:"userId"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	VerificationToken string    `json:"-"`
}

func (e UserRegistered) EventName() string { return "auth.user.registered" }

// =============================================================================
// Course Domain Events
// =============================================================================

// CoursePublished is published when a course first transitions to PUBLISHED.
type CoursePublished struct {
	BaseEvent
	CourseID     uuid.UUID `json:"courseId"`
	InstructorID uuid.UUID `json:"instructorId"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
}

func (e CoursePublished) EventName() string { return "courses.course.published" }

// =============================================================================
// Enrollment Domain Events
// =============================================================================

// UserEnrolled is published when a user enrolls in a course.
type UserEnrolled struct {
	BaseEvent
	EnrollmentID uuid.UUID `json:"enrollmentId"`
	UserID       uuid.UUID `json:"userId"`
	CourseID     uuid.UUID `json:"courseId"`
	CourseTitle  string    `json:"courseTitle"`
}

func (e UserEnrolled) EventName() string { return "enrollments.user.enrolled" }
