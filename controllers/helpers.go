package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/middleware"
	"github.com/cppla/wellbeing/services"
	"github.com/cppla/wellbeing/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	v, ok := value.(uint)
	return v, ok && v != 0
}

// requireUserID writes a 401 when the request carries no identity.
func requireUserID(ctx *gin.Context) (uint, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return userID, ok
}

func badPayload(ctx *gin.Context) {
	utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
}

// fail writes the envelope for err. Unknown errors are logged and hidden.
func fail(ctx *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		utils.Error(ctx, http.StatusBadRequest, 40001, describeValidation(ve))
		return
	}

	status, ok := services.ErrorStatus(err)
	if !ok {
		utils.Logger.Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		utils.Error(ctx, status.HTTP, status.Code, "internal server error")
		return
	}
	utils.Error(ctx, status.HTTP, status.Code, err.Error())
}

func describeValidation(ve validator.ValidationErrors) string {
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// pathID parses :id. Malformed ids read as a missing check-in.
func pathID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(ctx, services.ErrCheckInNotFound)
		return 0, false
	}
	return uint(id), true
}

// queryInt returns def for an absent parameter and ok=false for a malformed one.
func queryInt(ctx *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// queryDate returns nil for an absent parameter.
func queryDate(ctx *gin.Context, name string) (*analytics.Date, error) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := analytics.ParseDate(raw)
	if err != nil {
		return nil, services.ErrInvalidDate
	}
	return &d, nil
}
