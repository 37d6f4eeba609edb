package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"devforge_backend/internal/config"
	"devforge_backend/internal/model"
	"devforge_backend/internal/repository"
	"devforge_backend/internal/util"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-test-secret-test-secret!"
	cfg.JWT.ExpireTime = time.Hour

	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	user := &model.User{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Password == "hunter22" {
		t.Error("password stored in plaintext")
	}
	if user.Level != model.Beginner || user.Language != "Python" {
		t.Errorf("default preferences = %s/%s; want Beginner/Python", user.Level, user.Language)
	}

	token, err := svc.Login("ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := util.ParseJWT(token, "test-secret-test-secret-test-secret!")
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Errorf("claims = %+v; want the registered identity", claims)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	if err := svc.Register(&model.User{Name: "Ada", Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatal(err)
	}
	err := svc.Register(&model.User{Name: "Imposter", Email: "ada@example.com", Password: "pw"})
	if !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("error = %v; want ErrEmailRegistered", err)
	}
}

func TestRegister_KeepsChosenPreferences(t *testing.T) {
	svc := newAuthService(t)

	user := &model.User{
		Name:     "Grace",
		Email:    "grace@example.com",
		Password: "pw",
		Level:    model.Advanced,
		Language: "Go",
	}
	if err := svc.Register(user); err != nil {
		t.Fatal(err)
	}
	if user.Level != model.Advanced || user.Language != "Go" {
		t.Errorf("preferences overwritten: %s/%s", user.Level, user.Language)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newAuthService(t)

	if err := svc.Register(&model.User{Name: "Ada", Email: "ada@example.com", Password: "correct"}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login("ada@example.com", "wrong"); err == nil {
		t.Error("Login() with wrong password succeeded")
	}
	if _, err := svc.Login("nobody@example.com", "whatever"); err == nil {
		t.Error("Login() with unknown email succeeded")
	}
}
