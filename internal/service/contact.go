package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/model"
)

// ContactService forwards contact-form submissions to the shop inbox via
// the mail queue. It works for anonymous callers; no account is required.
type ContactService struct {
	mail   MailPublisher
	shopTo string
}

func NewContactService(mail MailPublisher, shopTo string) *ContactService {
	return &ContactService{mail: mail, shopTo: shopTo}
}

func (s *ContactService) Submit(ctx context.Context, req dto.ContactRequest) error {
	job := model.EmailJob{
		ID:      uuid.NewString(),
		To:      s.shopTo,
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("Contact form message from %s", req.Name),
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s\n", req.Name, req.Email, req.Message),
	}
	if err := s.mail.PublishEmail(ctx, job); err != nil {
		return fmt.Errorf("publish contact email: %w", err)
	}
	return nil
}
