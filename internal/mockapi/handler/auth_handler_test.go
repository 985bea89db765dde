package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskapp/internal/mockapi/middleware"
	"taskapp/internal/mockapi/store"
	"taskapp/internal/mockapi/store/memory"
	"taskapp/internal/mockapi/token"
)

type AuthHandlerSuite struct {
	suite.Suite
	Users  store.UserRepository
	Issuer *token.Issuer
	Router *gin.Engine
}

func (s *AuthHandlerSuite) SetupTest() {
	backend := memory.New()
	s.Users = backend.Users()
	s.Issuer = token.NewIssuer([]byte("test-secret"), time.Hour)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	authHandler := NewAuthHandler(s.Users, s.Issuer)
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	taskHandler := NewTaskHandler(backend.Tasks())
	protected := router.Group("/tasks")
	protected.Use(middleware.RequireAuth(s.Issuer))
	{
		protected.GET("", taskHandler.List)
		protected.POST("", taskHandler.Create)
		protected.GET("/:id", taskHandler.Get)
	}

	s.Router = router
}

func TestAuthHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) exchange(method, path, body, bearer string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func (s *AuthHandlerSuite) register(email, password string) *httptest.ResponseRecorder {
	return s.exchange("POST", "/auth/register", `{"email": "`+email+`", "password": "`+password+`"}`, "")
}

func (s *AuthHandlerSuite) login(email, password string) string {
	rr := s.exchange("POST", "/auth/login", `{"email": "`+email+`", "password": "`+password+`"}`, "")
	Expect(rr.Code).To(Equal(http.StatusOK))

	var body struct {
		Token string `json:"token"`
	}
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Token).NotTo(BeEmpty())
	return body.Token
}

func (s *AuthHandlerSuite) TestRegister() {
	rr := s.register("user99@example.com", "sekret99")

	Expect(rr.Code).To(Equal(http.StatusCreated))

	var user userResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &user)).To(Succeed())
	Expect(user.ID).To(BeNumerically(">=", 1))
	Expect(user.Email).To(Equal("user99@example.com"))
	Expect(rr.Body.String()).NotTo(ContainSubstring("password"))
}

func (s *AuthHandlerSuite) TestRegisterDuplicateEmail() {
	Expect(s.register("dup@example.com", "sekret99").Code).To(Equal(http.StatusCreated))

	rr := s.register("dup@example.com", "sekret99")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Errors).To(HaveKey("email"))
}

func (s *AuthHandlerSuite) TestRegisterRejectsBadInput() {
	Expect(s.register("not-an-email", "sekret99").Code).To(Equal(http.StatusBadRequest))
	Expect(s.register("ok@example.com", "short").Code).To(Equal(http.StatusBadRequest))
}

func (s *AuthHandlerSuite) TestLoginIssuesVerifiableToken() {
	s.register("user99@example.com", "sekret99")

	signed := s.login("user99@example.com", "sekret99")

	userID, err := s.Issuer.Verify(signed)
	Expect(err).NotTo(HaveOccurred())
	Expect(userID).To(BeNumerically(">=", 1))
}

func (s *AuthHandlerSuite) TestLoginWrongPassword() {
	s.register("user99@example.com", "sekret99")

	rr := s.exchange("POST", "/auth/login", `{"email": "user99@example.com", "password": "wrong99"}`, "")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(rr.Body.String()).To(ContainSubstring("invalid email or password"))
}

func (s *AuthHandlerSuite) TestLoginUnknownEmailSameAnswer() {
	rr := s.exchange("POST", "/auth/login", `{"email": "ghost@example.com", "password": "sekret99"}`, "")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(rr.Body.String()).To(ContainSubstring("invalid email or password"))
}

func (s *AuthHandlerSuite) TestProtectedRoutesRejectAnonymous() {
	rr := s.exchange("GET", "/tasks", "", "")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))

	var body struct {
		Message string `json:"message"`
	}
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Message).NotTo(BeEmpty())
}

func (s *AuthHandlerSuite) TestProtectedRoutesRejectGarbageToken() {
	Expect(s.exchange("GET", "/tasks", "", "not-a-jwt").Code).To(Equal(http.StatusUnauthorized))
}

func (s *AuthHandlerSuite) TestProtectedRoutesRejectRevokedToken() {
	s.register("user99@example.com", "sekret99")
	signed := s.login("user99@example.com", "sekret99")

	Expect(s.exchange("GET", "/tasks", "", signed).Code).To(Equal(http.StatusOK))

	s.Issuer.Revoke(signed)

	Expect(s.exchange("GET", "/tasks", "", signed).Code).To(Equal(http.StatusUnauthorized))
}

func (s *AuthHandlerSuite) TestTasksAreScopedToTheirOwner() {
	s.register("alice@example.com", "sekret99")
	s.register("bob@example.com", "sekret99")
	aliceToken := s.login("alice@example.com", "sekret99")
	bobToken := s.login("bob@example.com", "sekret99")

	rr := s.exchange("POST", "/tasks", `{"title": "alice's task"}`, aliceToken)
	Expect(rr.Code).To(Equal(http.StatusCreated))

	var created taskResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &created)).To(Succeed())
	Expect(created.UserID).To(BeNumerically(">=", 1))

	// Bob sees an empty collection and cannot probe Alice's id.
	rr = s.exchange("GET", "/tasks", "", bobToken)
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(strings.TrimSpace(rr.Body.String())).To(Equal("[]"))

	rr = s.exchange("GET", "/tasks/1", "", bobToken)
	Expect(rr.Code).To(Equal(http.StatusNotFound))

	rr = s.exchange("GET", "/tasks/1", "", aliceToken)
	Expect(rr.Code).To(Equal(http.StatusOK))
}
