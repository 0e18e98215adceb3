// Package handler exposes the enrollment HTTP endpoints. The enrollment
// flows are thin enough that the handler talks to the repository directly.
package handler

import (
	"context"

	"learnhub_backend/internal/enrollments/repository"
	"learnhub_backend/internal/enrollments/transport"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/shared/pagination"
	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/httpkit"
	"learnhub_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EnrollmentStore is the persistence surface the handler depends on.
type EnrollmentStore interface {
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*repository.Enrollment, string, error)
	MyCourses(ctx context.Context, userID uuid.UUID, limit, offset int) ([]repository.EnrolledCourse, int64, error)
	Detail(ctx context.Context, userID, courseID uuid.UUID) (*repository.Detail, error)
}

type Handler struct {
	store EnrollmentStore
	bus   events.Bus
	log   *logger.Logger
}

func New(store EnrollmentStore, bus events.Bus, log *logger.Logger) *Handler {
	return &Handler{store: store, bus: bus, log: log}
}

func (h *Handler) Enroll(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	courseID, err := parseCourseIDParam(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	enrollment, courseTitle, err := h.store.Enroll(c.Request.Context(), id.UserID(), courseID)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	h.bus.Publish(c.Request.Context(), events.UserEnrolled{
		BaseEvent:    events.NewBaseEvent(),
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		CourseTitle:  courseTitle,
	})

	httpkit.CreatedMessage(c, "Enrolled successfully", toEnrollmentResponse(enrollment))
}

func (h *Handler) MyCourses(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	params := pagination.Parse(c.Query("page"), c.Query("limit"))

	courses, total, err := h.store.MyCourses(c.Request.Context(), id.UserID(), params.Limit, params.Offset())
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	items := make([]transport.EnrolledCourseResponse, 0, len(courses))
	for i := range courses {
		items = append(items, toEnrolledCourseResponse(&courses[i]))
	}

	httpkit.OK(c, pagination.Page[transport.EnrolledCourseResponse]{
		Items:      items,
		Pagination: pagination.NewMeta(params, total),
	})
}

func (h *Handler) Detail(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	courseID, err := parseCourseIDParam(c)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	detail, err := h.store.Detail(c.Request.Context(), id.UserID(), courseID)
	if err != nil {
		httpkit.HandleError(c, h.log, err)
		return
	}

	resp := transport.EnrollmentDetailResponse{
		EnrolledCourseResponse: toEnrolledCourseResponse(&detail.Enrollment),
		Sections:               make([]transport.SectionProgressResponse, 0, len(detail.Sections)),
	}
	for _, section := range detail.Sections {
		sectionResp := transport.SectionProgressResponse{
			ID:      section.ID.String(),
			Title:   section.Title,
			Order:   section.Order,
			Lessons: make([]transport.LessonProgressResponse, 0, len(section.Lessons)),
		}
		for _, lesson := range section.Lessons {
			sectionResp.Lessons = append(sectionResp.Lessons, transport.LessonProgressResponse{
				ID:            lesson.ID.String(),
				Title:         lesson.Title,
				Type:          lesson.Type,
				VideoDuration: lesson.VideoDuration,
				IsFree:        lesson.IsFree,
				Order:         lesson.Order,
				Completed:     lesson.Completed,
				CompletedAt:   lesson.CompletedAt,
			})
		}
		resp.Sections = append(resp.Sections, sectionResp)
	}

	httpkit.OK(c, resp)
}

func parseCourseIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Invalid course id")
	}
	return id, nil
}

func toEnrollmentResponse(e *repository.Enrollment) transport.EnrollmentResponse {
	return transport.EnrollmentResponse{
		ID:          e.ID.String(),
		UserID:      e.UserID.String(),
		CourseID:    e.CourseID.String(),
		Status:      e.Status,
		Progress:    e.Progress,
		EnrolledAt:  e.EnrolledAt,
		CompletedAt: e.CompletedAt,
	}
}

func toEnrolledCourseResponse(ec *repository.EnrolledCourse) transport.EnrolledCourseResponse {
	return transport.EnrolledCourseResponse{
		EnrollmentResponse: toEnrollmentResponse(&ec.Enrollment),
		CourseTitle:        ec.CourseTitle,
		CourseSlug:         ec.CourseSlug,
		Thumbnail:          ec.Thumbnail,
		Level:              ec.Level,
		InstructorName:     ec.InstructorName,
		TotalLessons:       ec.TotalLessons,
		Duration:           ec.Duration,
	}
}

// Compile-time check that the repository satisfies the handler's store.
var _ EnrollmentStore = (*repository.Repo)(nil)
