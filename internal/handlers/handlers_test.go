// internal/handlers/handlers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/config"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/router"
)

type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	engine *gin.Engine
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Internship{},
		&models.InternshipTask{},
		&models.Enrollment{},
		&models.TaskCompletion{},
		&models.CompletionReview{},
		&models.WithdrawalRequest{},
		&models.Certificate{},
		&models.GeneratedDocument{},
		&models.AuditLog{},
	))

	cfg := &config.Config{
		Environment: "development",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Certificate: config.CertificateConfig{
			CodePrefix:     "CERT",
			DefaultTag:     "CSL",
			AllocRetries:   5,
			VerifyBaseURL:  "https://codesprintlabs.com/verify",
			IssuerName:     "CodeSprint Labs",
			IssuerLocation: "Ahmedabad, India",
		},
		Frontend: config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}

	engine, err := router.Setup(db, cfg)
	s.Require().NoError(err)

	s.db = db
	s.engine = engine
}

func (s *APITestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *APITestSuite) registerStudent(email string) string {
	w := s.request(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"full_name": "Asha Patel",
		"email":     email,
		"password":  "Student123!",
		"college":   "LD College of Engineering",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	body := s.decode(w)
	data := body["data"].(map[string]interface{})
	return data["access_token"].(string)
}

func (s *APITestSuite) TestHealth() {
	w := s.request(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestRegisterLoginProfile() {
	token := s.registerStudent("asha@example.com")

	// Duplicate email conflicts.
	w := s.request(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"full_name": "Asha Patel",
		"email":     "asha@example.com",
		"password":  "Student123!",
	})
	s.Equal(http.StatusConflict, w.Code)

	// Login works with the right password only.
	w = s.request(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "asha@example.com",
		"password": "wrong-password",
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "asha@example.com",
		"password": "Student123!",
	})
	s.Equal(http.StatusOK, w.Code)

	// Profile requires the token.
	w = s.request(http.MethodGet, "/api/v1/profile", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.request(http.MethodGet, "/api/v1/profile", token, nil)
	s.Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	data := body["data"].(map[string]interface{})
	s.Equal("asha@example.com", data["email"])
}

func (s *APITestSuite) TestStudentCannotReachAdminRoutes() {
	token := s.registerStudent("student@example.com")

	w := s.request(http.MethodGet, "/api/v1/admin/enrollments", token, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APITestSuite) TestPublicCertificateVerifyUnknownCode() {
	w := s.request(http.MethodGet, "/api/v1/certificates/verify/CERT-2026-XX-UNKNOWN1", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	data := body["data"].(map[string]interface{})
	s.Equal(false, data["valid"])
	s.Equal("not_found", data["reason"])
}

func (s *APITestSuite) TestEnrollmentRequestFlow() {
	token := s.registerStudent("enroll@example.com")

	// Seed a catalog entry directly.
	internship := &models.Internship{
		Title:         "Backend Engineering Internship",
		Domain:        "Backend",
		DurationWeeks: 8,
		ProgramTag:    "BE",
		IsActive:      true,
	}
	s.Require().NoError(s.db.Create(internship).Error)

	w := s.request(http.MethodPost, "/api/v1/enrollments", token, gin.H{
		"internship_id": internship.ID.String(),
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	body := s.decode(w)
	data := body["data"].(map[string]interface{})
	s.Equal("requested", data["status"])

	// The duplicate request conflicts with the stable error code.
	w = s.request(http.MethodPost, "/api/v1/enrollments", token, gin.H{
		"internship_id": internship.ID.String(),
	})
	s.Require().Equal(http.StatusConflict, w.Code)

	body = s.decode(w)
	errObj := body["error"].(map[string]interface{})
	s.Equal("CONFLICTING_REQUEST", errObj["code"])

	// Listing shows the single enrollment.
	w = s.request(http.MethodGet, "/api/v1/enrollments", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	body = s.decode(w)
	list := body["data"].([]interface{})
	s.Len(list, 1)
}
