package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/roster"
	"github.com/deemkeen/huddle/sleeper"
	"github.com/gin-gonic/gin"
)

var errBadId = errors.New("invalid id")

// writeError maps domain errors onto status codes. Anything unexpected is
// logged and reported without detail.
func writeError(c *gin.Context, err error) {
	var statusErr *sleeper.StatusError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, sleeper.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidVisibility),
		errors.Is(err, domain.ErrInvalidFeedMode),
		errors.Is(err, roster.ErrNoSelection),
		errors.Is(err, errBadId):
		status = http.StatusBadRequest
	case errors.As(err, &statusErr):
		status = http.StatusBadGateway
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request.URL.Path, "request_id", requestId(c), "err", err)
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func paramId(c *gin.Context) (int64, error) {
	return parseId(c.Param("id"))
}

func parseId(v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadId
	}
	return id, nil
}

// queryLimit reads ?limit=, falling back to def for missing or bad values.
func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
