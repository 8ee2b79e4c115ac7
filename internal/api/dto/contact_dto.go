package dto

import (
	"time"

	"github.com/spec-kit/site-auth/internal/domain"
)

// ContactRequest is the contact form payload.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// InquiryResponse is the admin view of a contact submission.
type InquiryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Service   string    `json:"service,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewInquiryResponse maps a domain inquiry.
func NewInquiryResponse(i *domain.ContactInquiry) InquiryResponse {
	return InquiryResponse{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		Phone:     i.Phone,
		Service:   i.Service,
		Message:   i.Message,
		CreatedAt: i.CreatedAt,
	}
}
