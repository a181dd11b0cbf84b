package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ecopress/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRoleNotAllowed     = errors.New("role cannot be chosen at signup")
	ErrUserInvalid        = errors.New("username and password are required")
)

// UserService 负责注册、登录与用户查询
type UserService struct {
	db *gorm.DB
}

// RegisterInput 注册表单字段
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register 创建新用户；注册时只允许 user 与 editor 角色，管理员通过命令行创建
func (s *UserService) Register(input RegisterInput) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrUserInvalid
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = db.RoleUser
	}
	if role != db.RoleUser && role != db.RoleEditor {
		return nil, ErrRoleNotAllowed
	}

	var count int64
	if err := s.db.Unscoped().Model(&db.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Username: username,
		Email:    strings.TrimSpace(input.Email),
		Password: string(hashed),
		Role:     role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate 校验用户名与密码
func (s *UserService) Authenticate(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get fetches a user by id.
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Count returns the number of registered users.
func (s *UserService) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&db.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
