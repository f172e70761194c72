package apiv1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/repository"
)

// UsersGroup is the admin surface for provisioning users. Regular
// bearer tokens are scoped to a user; only the static admin token can
// create one.
type UsersGroup struct {
	backend repository.BackendRepository
}

func NewUsersGroup(g *echo.Group, backend repository.BackendRepository) *UsersGroup {
	ug := &UsersGroup{backend: backend}

	g.POST("", auth.WithAdmin(ug.Create))
	g.GET("", auth.WithAdmin(ug.GetByEmail))
	g.GET("/:user_id", auth.WithAdmin(ug.Get))

	return ug
}

type CreateUserRequest struct {
	Email string `json:"email"`
}

func (ug *UsersGroup) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request")
	}
	if req.Email == "" {
		return ErrorResponse(c, http.StatusBadRequest, "email required")
	}

	user, err := ug.backend.CreateUser(ctx, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to create user")
	}

	return c.JSON(http.StatusCreated, Response{Success: true, Data: user})
}

func (ug *UsersGroup) Get(c echo.Context) error {
	userId, err := parseUserId(c.Param("user_id"))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid user_id")
	}

	user, err := ug.backend.GetUser(c.Request().Context(), userId)
	if err != nil {
		return ErrorResponse(c, http.StatusNotFound, "user not found")
	}

	return SuccessResponse(c, user)
}

func (ug *UsersGroup) GetByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return ErrorResponse(c, http.StatusBadRequest, "email required")
	}

	user, err := ug.backend.GetUserByEmail(c.Request().Context(), email)
	if err != nil {
		return ErrorResponse(c, http.StatusNotFound, "user not found")
	}

	return SuccessResponse(c, user)
}

func parseUserId(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
