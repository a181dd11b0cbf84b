package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/mailer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrContactInvalidInput 在联系表单缺少必填字段时返回
var ErrContactInvalidInput = errors.New("invalid contact input")

// ContactInput 联系表单字段
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactService 保存联系表单并转发给站点维护者
type ContactService struct {
	db        *gorm.DB
	sender    mailer.Sender
	recipient string
	log       *zap.Logger
}

// NewContactService 构造 ContactService；sender 为空时不发信
func NewContactService(gdb *gorm.DB, sender mailer.Sender, recipient string, log *zap.Logger) *ContactService {
	if sender == nil {
		sender = mailer.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{db: gdb, sender: sender, recipient: strings.TrimSpace(recipient), log: log}
}

// Submit 持久化消息后尝试发信；发信失败只记录日志，不影响提交结果
func (s *ContactService) Submit(input ContactInput) (*db.ContactMessage, error) {
	if err := validateContactInput(input); err != nil {
		return nil, err
	}

	message := db.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}

	if s.recipient == "" {
		s.log.Debug("contact message stored without recipient", zap.Uint("message_id", message.ID))
		return &message, nil
	}

	err := s.sender.Send(mailer.Message{
		To:      s.recipient,
		ReplyTo: message.Email,
		Subject: "[contact] " + message.Subject,
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s\n", message.Name, message.Email, message.Message),
	})
	if err != nil {
		s.log.Warn("contact message delivery failed", zap.Uint("message_id", message.ID), zap.Error(err))
		return &message, nil
	}

	message.Delivered = true
	if err := s.db.Model(&message).Update("delivered", true).Error; err != nil {
		s.log.Warn("mark contact message delivered", zap.Uint("message_id", message.ID), zap.Error(err))
	}
	return &message, nil
}

// ListRecent returns the newest contact messages.
func (s *ContactService) ListRecent(limit int) ([]db.ContactMessage, error) {
	if limit <= 0 {
		limit = 20
	}

	var items []db.ContactMessage
	if err := s.db.Order("created_at desc, id desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return items, nil
}

func validateContactInput(input ContactInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrContactInvalidInput)
	}
	if !strings.Contains(input.Email, "@") {
		return fmt.Errorf("%w: email is invalid", ErrContactInvalidInput)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrContactInvalidInput)
	}
	if strings.TrimSpace(input.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrContactInvalidInput)
	}
	return nil
}
