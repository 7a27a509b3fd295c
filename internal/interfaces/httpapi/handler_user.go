package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/usecase"
)

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"omitempty,max=120"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=admin ktv"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type updateUserRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"fullName" validate:"omitempty,max=120"`
	Password string `json:"password" validate:"omitempty,min=8,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=admin ktv"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUsers")
	defer span.End()

	q := readQuery(r)
	filter := user.Filter{
		Role:   user.Role(q.String("role")),
		Status: user.Status(q.String("status")),
		Search: q.String("search"),
	}
	filter.Limit, filter.Offset = q.Page()
	if err := q.Err(); err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.userService.List(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "list users failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPageDTO(page, userToDTO))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUser")
	defer span.End()

	userID := r.PathValue("userID")
	item, err := h.userService.Get(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "get user failed", err, "user_id", userID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userToDTO(item))
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateUser")
	defer span.End()

	var req createUserRequest
	if err := h.decode(ctx, r, &req, strict); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.userService.Create(ctx, usecase.UserInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     user.Role(req.Role),
		Status:   user.Status(req.Status),
	})
	if err != nil {
		h.logFailure(ctx, "create user failed", err, "username", req.Username)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "user created", "user_id", item.ID, "role", item.Role)
	writeSuccess(ctx, w, http.StatusCreated, userToDTO(item))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateUser")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := r.PathValue("userID")
	var req updateUserRequest
	if err := h.decode(ctx, r, &req, strict); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.userService.Update(ctx, principal, userID, usecase.UserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     user.Role(req.Role),
		Status:   user.Status(req.Status),
	})
	if err != nil {
		h.logFailure(ctx, "update user failed", err, "user_id", userID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userToDTO(item))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteUser")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := r.PathValue("userID")
	if err := h.userService.Delete(ctx, principal, userID); err != nil {
		h.logFailure(ctx, "delete user failed", err, "user_id", userID)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "user deleted", "user_id", userID, "deleted_by", principal.UserID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": userID})
}
