package repository

import (
	"time"

	"github.com/google/uuid"
)

// Course is the course row plus joined instructor/category context.
type Course struct {
	ID             uuid.UUID
	Title          string
	Slug           string
	Description    string
	Price          float64
	DiscountPrice  *float64
	Status         string
	InstructorID   uuid.UUID
	InstructorName string
	CategoryID     *uuid.UUID
	CategoryName   *string
	Level          string
	Thumbnail      *string
	TotalLessons   int
	Duration       int
	PublishedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Section is a course section row.
type Section struct {
	ID       uuid.UUID
	CourseID uuid.UUID
	Title    string
	Order    int
}

// Lesson is a lesson row.
type Lesson struct {
	ID            uuid.UUID
	SectionID     uuid.UUID
	Title         string
	Type          string
	Content       *string
	VideoURL      *string
	VideoDuration int
	IsFree        bool
	IsPublished   bool
	Order         int
}

// CurriculumSection is a section with its lessons, for the course detail
// view.
type CurriculumSection struct {
	Section
	Lessons []Lesson
}

// Category is a category with its children and course count.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	CourseCount int64      `json:"courseCount"`
	Children    []Category `json:"children,omitempty"`
}

// RatingSummary is the review aggregate for a course.
type RatingSummary struct {
	Average float64
	Count   int64
}

// CreateCourseParams are the inputs for inserting a course.
type CreateCourseParams struct {
	Title         string
	Slug          string
	Description   string
	Price         float64
	DiscountPrice *float64
	Status        string
	InstructorID  uuid.UUID
	CategoryID    *uuid.UUID
	Level         string
	Thumbnail     *string
	PublishedAt   *time.Time
}

// UpdateCourseParams are the patch inputs; nil fields are left unchanged.
type UpdateCourseParams struct {
	Title         *string
	Slug          *string
	Description   *string
	Price         *float64
	DiscountPrice *float64
	Status        *string
	CategoryID    *uuid.UUID
	Level         *string
	Thumbnail     *string
	PublishedAt   *time.Time
}

// ListCoursesParams are the filter and paging inputs for listings.
type ListCoursesParams struct {
	CategorySlug string
	Level        string
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	Status       string
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}

// AddLessonParams are the inputs for inserting a lesson.
type AddLessonParams struct {
	SectionID     uuid.UUID
	Title         string
	Type          string
	Content       *string
	VideoURL      *string
	VideoDuration int
	IsFree        bool
	IsPublished   bool
	Order         *int
}
