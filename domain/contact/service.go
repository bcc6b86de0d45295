// Package contact accepts quote requests from the public site and relays
// them to the studio by email.
package contact

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/mailer"
)

const (
	msgMissingFields = "Please provide all required fields: name, email, service, and message"
	msgInvalidEmail  = "Please provide a valid email address"
	msgSendFailed    = "Failed to submit quote request. Please try again later."
	msgSubmitted     = "Quote request submitted successfully"
)

// emailPattern is deliberately loose: something@something.tld.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// QuoteRequest is the body of POST /api/contact/quote.
type QuoteRequest struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required,contact_email"`
	Phone   string `json:"phone" form:"phone"`
	Company string `json:"company" form:"company"`
	Service string `json:"service" form:"service" validate:"required"`
	Message string `json:"message" form:"message" validate:"required"`
}

func (q *QuoteRequest) trim() {
	q.Name = strings.TrimSpace(q.Name)
	q.Email = strings.TrimSpace(q.Email)
	q.Phone = strings.TrimSpace(q.Phone)
	q.Company = strings.TrimSpace(q.Company)
	q.Service = strings.TrimSpace(q.Service)
	q.Message = strings.TrimSpace(q.Message)
}

type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Mailer sends the two quote emails.
type Mailer interface {
	NotifyQuote(ctx context.Context, q mailer.QuoteRequest) error
	AcknowledgeQuote(ctx context.Context, q mailer.QuoteRequest) error
}

type Service struct {
	mail     Mailer
	validate *validator.Validate
	log      logger.Logger
}

func NewService(mail Mailer, log logger.Logger) *Service {
	v := validator.New()
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return &Service{mail: mail, validate: v, log: log.WithComponent("contact")}
}

// check maps validation failures to the public messages. Missing fields
// win over a malformed email.
func (s *Service) check(q *QuoteRequest) error {
	err := s.validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, "Internal server error", err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, msgMissingFields)
		}
	}
	return apperrors.NewBadRequest(apperrors.ErrCodeInvalidEmail, msgInvalidEmail)
}

// Submit validates q, notifies the studio and sends the visitor an
// acknowledgement. Only the notification decides the outcome.
func (s *Service) Submit(ctx context.Context, q QuoteRequest) (*SubmitResponse, error) {
	log := s.log.WithContext(ctx)
	q.trim()
	if err := s.check(&q); err != nil {
		return nil, err
	}

	msg := mailer.QuoteRequest{
		Name:    q.Name,
		Email:   q.Email,
		Phone:   q.Phone,
		Company: q.Company,
		Service: q.Service,
		Message: q.Message,
	}
	if err := s.mail.NotifyQuote(ctx, msg); err != nil {
		log.Error("Failed to send quote notification", err, logger.Email(q.Email))
		return nil, apperrors.NewInternal(apperrors.ErrCodeEmailSendFailed, msgSendFailed, err)
	}
	if err := s.mail.AcknowledgeQuote(ctx, msg); err != nil {
		log.Warn("Failed to send quote auto-reply", logger.Email(q.Email), logger.Err(err))
	}

	log.Info("Quote request submitted", logger.Email(q.Email), logger.String("service", q.Service))
	return &SubmitResponse{Success: true, Message: msgSubmitted}, nil
}
