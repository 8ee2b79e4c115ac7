package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-auth/internal/api/dto"
	"github.com/spec-kit/site-auth/internal/auth"
	"github.com/spec-kit/site-auth/internal/service"
	apperrors "github.com/spec-kit/site-auth/pkg/util/errorutil"
)

// AdminHandler exposes the admin dashboard endpoints.
type AdminHandler struct {
	admin *service.UserAdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.UserAdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext())
	if err != nil {
		return mapServiceError(err)
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": resp, "meta": fiber.Map{"count": len(resp)}})
}

// DeleteUser handles DELETE /admin/users/:id?confirm=true.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid user id", map[string]any{"id": c.Params("id")})
	}
	if !c.QueryBool("confirm", false) {
		return apperrors.NewValidationError("deletion must be confirmed", map[string]any{"confirm": "set confirm=true"})
	}

	if err := h.admin.DeleteUser(c.UserContext(), principal.User, id); err != nil {
		return mapServiceError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListInquiries handles GET /admin/inquiries.
func (h *AdminHandler) ListInquiries(c *fiber.Ctx) error {
	inquiries, err := h.admin.ListInquiries(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return mapServiceError(err)
	}
	resp := make([]dto.InquiryResponse, 0, len(inquiries))
	for i := range inquiries {
		resp = append(resp, dto.NewInquiryResponse(&inquiries[i]))
	}
	return c.JSON(fiber.Map{"data": resp, "meta": fiber.Map{"count": len(resp)}})
}
