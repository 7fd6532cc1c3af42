package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"minutes-worker/constant"
	"minutes-worker/dto"
	"minutes-worker/service"
)

func addRoutes(r *gin.Engine, intake service.IntakeService) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/segments", uploadSegment(intake))
	v1.POST("/jobs", submitJob(intake))
	v1.GET("/jobs/:jobId/status", jobStatus(intake))
	v1.POST("/jobs/:jobId/retry", retryJob(intake))
	v1.GET("/admin/jobs", listJobs(intake))
}

func uploadSegment(intake service.IntakeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobId, err := uuid.Parse(c.PostForm("jobId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid jobId"})
			return
		}
		index, err := strconv.Atoi(c.PostForm("index"))
		if err != nil || index < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}
		mime := c.PostForm("mimeType")
		if mime == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mimeType is required"})
			return
		}
		duration, err := strconv.ParseFloat(c.PostForm("duration"), 64)
		if err != nil || duration < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open file"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return
		}

		key, err := intake.UploadSegment(c.Request.Context(), jobId, index, mime, duration, data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, dto.UploadSegmentResponse{Key: key})
	}
}

func submitJob(intake service.IntakeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.SubmitJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := intake.SubmitJob(c.Request.Context(), req); err != nil {
			if errors.Is(err, service.ErrEmptySegments) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, dto.SubmitJobResponse{Success: true, JobId: req.JobId})
	}
}

func jobStatus(intake service.IntakeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobId, err := uuid.Parse(c.Param("jobId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid jobId"})
			return
		}

		status, err := intake.Status(c.Request.Context(), jobId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, status)
	}
}

func retryJob(intake service.IntakeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobId, err := uuid.Parse(c.Param("jobId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid jobId"})
			return
		}

		err = intake.Retry(c.Request.Context(), jobId)
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotRetryable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSegmentsGone):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, dto.RetryResponse{Success: true, JobId: jobId})
		}
	}
}

func listJobs(intake service.IntakeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := constant.JobStatus(c.Query("status"))
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}

		summaries, err := intake.ListJobs(c.Request.Context(), status, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, summaries)
	}
}
