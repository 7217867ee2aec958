package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	uploaddomain "github.com/smallbiznis/ledgerview/internal/upload/domain"
)

func (s *Server) CreateUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer src.Close()

	upload, err := s.uploadSvc.Store(c.Request.Context(), uploaddomain.StoreRequest{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, upload)
}

func (s *Server) ListUploads(c *gin.Context) {
	uploads, err := s.uploadSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

func (s *Server) DownloadUpload(c *gin.Context) {
	id, err := parseSnowflakeParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, upload, err := s.uploadSvc.Open(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Type", upload.ContentType)
	c.Header("Content-Disposition", `attachment; filename="`+upload.Filename+`"`)
	c.Header("Content-Length", strconv.FormatInt(upload.Size, 10))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		_ = c.Error(err)
	}
}

func parseSnowflakeParam(c *gin.Context, name string) (snowflake.ID, error) {
	raw := c.Param(name)
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, invalidRequestError()
	}
	return snowflake.ID(parsed), nil
}
