package server

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	submissiondomain "github.com/moimlab/moim/internal/submission/domain"
)

const maxMediaBytes = 10 << 20

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxMediaBytes))
}

// CreateSubmission accepts multipart form data: a text_summary field,
// one scene_photo file, and one or more selfie files. Verification runs
// synchronously right after the submission is stored.
func (s *Server) CreateSubmission(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.submitLimiter.Enabled() {
		result, err := s.submitLimiter.AllowSubmit(c.Request.Context(), userID.String())
		if err == nil && !result.Allowed {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "submission_create", "user_rate")
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		if s.obsMetrics != nil && err == nil {
			s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), "submission_create")
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var media []submissiondomain.MediaUpload
	for _, header := range form.File["scene_photo"] {
		data, err := readUpload(header)
		if err != nil {
			AbortWithError(c, newValidationError("scene_photo", "invalid_media", "unreadable scene photo"))
			return
		}
		media = append(media, submissiondomain.MediaUpload{
			Kind:     submissiondomain.KindScenePhoto,
			FileName: header.Filename,
			Data:     data,
		})
	}
	for _, header := range form.File["selfies"] {
		data, err := readUpload(header)
		if err != nil {
			AbortWithError(c, newValidationError("selfies", "invalid_media", "unreadable selfie"))
			return
		}
		owner := userID
		media = append(media, submissiondomain.MediaUpload{
			Kind:     submissiondomain.KindSelfie,
			UserID:   &owner,
			FileName: header.Filename,
			Data:     data,
		})
	}

	summary := ""
	if vals := form.Value["text_summary"]; len(vals) > 0 {
		summary = vals[0]
	}

	submission, err := s.submissionSvc.Create(c.Request.Context(), submissiondomain.CreateRequest{
		MeetingID:   c.Param("id"),
		HostID:      userID,
		TextSummary: summary,
		Media:       media,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.runVerify(c, submission.ID)
	if c.IsAborted() {
		return
	}

	detail, err := s.submissionSvc.Get(c.Request.Context(), submission.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) ListSubmissions(c *gin.Context) {
	submissions, err := s.submissionSvc.ListForMeeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": submissions})
}

func (s *Server) GetSubmission(c *gin.Context) {
	detail, err := s.submissionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

// VerifySubmission re-runs the automatic check, e.g. after a transient
// scorer outage. Terminal submissions are a no-op.
func (s *Server) VerifySubmission(c *gin.Context) {
	if _, err := s.currentUser(c); err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid submission id"))
		return
	}

	s.runVerify(c, id)
	if c.IsAborted() {
		return
	}

	detail, err := s.submissionSvc.Get(c.Request.Context(), id.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

// runVerify serializes verification per submission when the redis
// limiter is configured.
func (s *Server) runVerify(c *gin.Context, submissionID snowflake.ID) {
	ctx := c.Request.Context()

	if s.submitLimiter.Enabled() {
		token, ok, err := s.submitLimiter.TryLockVerify(ctx, submissionID.String())
		if err == nil && !ok {
			AbortWithError(c, ErrConflict)
			return
		}
		if err == nil {
			defer func() {
				_ = s.submitLimiter.ReleaseVerify(ctx, submissionID.String(), token)
			}()
		}
	}

	if err := s.verificationSvc.Verify(ctx, submissionID); err != nil {
		AbortWithError(c, err)
	}
}
