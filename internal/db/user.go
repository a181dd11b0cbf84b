package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户角色
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// User 定义了用户模型
type User struct {
	gorm.Model
	Username string `gorm:"size:150;uniqueIndex;not null"`
	Email    string `gorm:"size:254"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:user"`
}

// IsEditor 编辑与管理员都可以发布内容
func (u *User) IsEditor() bool {
	return u != nil && (u.Role == RoleEditor || u.Role == RoleAdmin)
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
// 返回值表示是否新建了账号。
func EnsureUser(gdb *gorm.DB, username, password, email, role string) (bool, error) {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return false, nil
	}

	if gdb == nil {
		return false, errors.New("database not initialized")
	}

	role = strings.TrimSpace(role)
	if role == "" {
		role = RoleUser
	}
	if !ValidRole(role) {
		return false, errors.New("unknown role")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return false, err
		}

		user := User{Username: trimmedUser, Email: strings.TrimSpace(email), Password: string(hashed), Role: role}
		if err := gdb.Create(&user).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}
