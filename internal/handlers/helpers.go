package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"agencydesk/internal/models"
	"agencydesk/internal/services"
)

// respondError maps service errors onto HTTP statuses. Anything unknown is a
// 500 and its text is not echoed back.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, services.ErrDealNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "deal not found"})
	case errors.Is(err, models.ErrInvalidStage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "stage"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var registerFieldNames sync.Once

// bindJSON decodes the request body into v. Decode and binding failures get
// the same {"error","field"} body as service validation errors.
func bindJSON(c *gin.Context, v any) bool {
	registerFieldNames.Do(func() {
		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			engine.RegisterTagNameFunc(jsonFieldName)
		}
	})

	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		fe := verrs[0]
		respondError(c, &services.ValidationError{Field: fe.Field(), Message: bindingMessage(fe)})
	case errors.As(err, &typeErr):
		respondError(c, &services.ValidationError{Field: typeErr.Field, Message: "has the wrong type"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
	}
	return false
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func bindingMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fe.Field() + " is required"
	}
	return fe.Field() + " is invalid"
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return n
}

// queryDate reads a YYYY-MM-DD query value. end moves the time to the last
// instant of that day.
func queryDate(c *gin.Context, key string, end bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, &services.ValidationError{Field: key, Message: "expected YYYY-MM-DD"}
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
