package transport

import "time"

type EnrollmentResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	CourseID    string     `json:"courseId"`
	Status      string     `json:"status"`
	Progress    float64    `json:"progress"`
	EnrolledAt  time.Time  `json:"enrolledAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type EnrolledCourseResponse struct {
	EnrollmentResponse
	CourseTitle    string  `json:"courseTitle"`
	CourseSlug     string  `json:"courseSlug"`
	Thumbnail      *string `json:"thumbnail,omitempty"`
	Level          string  `json:"level"`
	InstructorName string  `json:"instructorName"`
	TotalLessons   int     `json:"totalLessons"`
	Duration       int     `json:"duration"`
}

type LessonProgressResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	VideoDuration int        `json:"videoDuration"`
	IsFree        bool       `json:"isFree"`
	Order         int        `json:"order"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

type SectionProgressResponse struct {
	ID      string                   `json:"id"`
	Title   string                   `json:"title"`
	Order   int                      `json:"order"`
	Lessons []LessonProgressResponse `json:"lessons"`
}

type EnrollmentDetailResponse struct {
	EnrolledCourseResponse
	Sections []SectionProgressResponse `json:"sections"`
}
