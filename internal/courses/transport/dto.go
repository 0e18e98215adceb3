package transport

import "time"

type CreateCourseRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"required,min=10"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	CategoryID    *string  `json:"categoryId" validate:"omitempty,uuid"`
	Level         string   `json:"level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED ALL_LEVELS"`
	Status        string   `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Thumbnail     *string  `json:"thumbnail" validate:"omitempty,max=500"`
}

type UpdateCourseRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string  `json:"description" validate:"omitempty,min=10"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	CategoryID    *string  `json:"categoryId" validate:"omitempty,uuid"`
	Level         *string  `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL_LEVELS"`
	Status        *string  `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Thumbnail     *string  `json:"thumbnail" validate:"omitempty,max=500"`
}

type AddSectionRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
	Order *int   `json:"order" validate:"omitempty,gte=1"`
}

type AddLessonRequest struct {
	Title         string  `json:"title" validate:"required,min=1,max=200"`
	Type          string  `json:"type" validate:"required,oneof=VIDEO TEXT QUIZ ASSIGNMENT"`
	Content       *string `json:"content"`
	VideoURL      *string `json:"videoUrl" validate:"omitempty,url"`
	VideoDuration int     `json:"videoDuration" validate:"gte=0"`
	IsFree        bool    `json:"isFree"`
	IsPublished   bool    `json:"isPublished"`
	Order         *int    `json:"order" validate:"omitempty,gte=1"`
}

type PresignThumbnailRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

type CourseResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	Price          float64    `json:"price"`
	DiscountPrice  *float64   `json:"discountPrice,omitempty"`
	Status         string     `json:"status"`
	InstructorID   string     `json:"instructorId"`
	InstructorName string     `json:"instructorName"`
	CategoryID     *string    `json:"categoryId,omitempty"`
	CategoryName   *string    `json:"categoryName,omitempty"`
	Level          string     `json:"level"`
	Thumbnail      *string    `json:"thumbnail,omitempty"`
	TotalLessons   int        `json:"totalLessons"`
	Duration       int        `json:"duration"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type CourseDetailResponse struct {
	CourseResponse
	AverageRating   float64                     `json:"averageRating"`
	ReviewCount     int64                       `json:"reviewCount"`
	EnrollmentCount int64                       `json:"enrollmentCount"`
	Sections        []CurriculumSectionResponse `json:"sections"`
}

// CurriculumSectionResponse is a section within the course detail, with its
// lessons in order.
type CurriculumSectionResponse struct {
	ID      string                     `json:"id"`
	Title   string                     `json:"title"`
	Order   int                        `json:"order"`
	Lessons []CurriculumLessonResponse `json:"lessons"`
}

// CurriculumLessonResponse is lesson metadata for the course detail. Lesson
// content stays out of the catalog surface; isFree marks preview lessons.
type CurriculumLessonResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Type          string `json:"type"`
	VideoDuration int    `json:"videoDuration"`
	IsFree        bool   `json:"isFree"`
	IsPublished   bool   `json:"isPublished"`
	Order         int    `json:"order"`
}

type SectionResponse struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

type LessonResponse struct {
	ID            string  `json:"id"`
	SectionID     string  `json:"sectionId"`
	Title         string  `json:"title"`
	Type          string  `json:"type"`
	Content       *string `json:"content,omitempty"`
	VideoURL      *string `json:"videoUrl,omitempty"`
	VideoDuration int     `json:"videoDuration"`
	IsFree        bool    `json:"isFree"`
	IsPublished   bool    `json:"isPublished"`
	Order         int     `json:"order"`
}

type PresignedUploadResponse struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}
