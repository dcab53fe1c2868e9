package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/apperr"
)

// Envelope is the body of every API response.
// swagger:model Envelope
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Count   *int     `json:"count,omitempty"`
	Total   *int     `json:"total,omitempty"`
	Page    *int     `json:"page,omitempty"`
	Pages   *int     `json:"pages,omitempty"`
}

func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Paged writes a list response with pagination metadata.
func Paged(c *gin.Context, data any, count int, p Page, total int) {
	pages := p.Pages(total)
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Count:   &count,
		Total:   &total,
		Page:    &p.Number,
		Pages:   &pages,
	})
}

// Fail renders err. apperr errors keep their message and status; anything
// else is logged and reported as a 500.
func Fail(c *gin.Context, log *logrus.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err)
	}
	if ae.Kind == apperr.KindInternal && log != nil {
		log.WithFields(logrus.Fields{"rid": RID(c), "path": c.Request.URL.Path}).WithError(err).Error("[http] internal error")
	}
	c.AbortWithStatusJSON(ae.Kind.HTTPStatus(), Envelope{Message: ae.Msg, Errors: ae.Details})
}

// BindJSON decodes the body into dst, returning a ValidationFailed error
// listing every offending field.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fieldMessage(fe))
			}
			return apperr.Validation("Validation failed", details...)
		}
		return apperr.Validation("Invalid request body")
	}
	return nil
}
