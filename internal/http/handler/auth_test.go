package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tickevo.app/backend/internal/http/handler"
	"tickevo.app/backend/internal/model"
	"tickevo.app/backend/internal/service"
)

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp
}

var _ = Describe("AuthHandler", func() {
	var (
		router *gin.Engine
		svc    *mockAuthService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockAuthService{}
		h := handler.NewAuthHandler(svc)
		router.POST("/signup", h.Signup)
		router.POST("/login", h.Login)
		router.GET("/me", asUser(42), h.Me)
	})

	Describe("Signup", func() {
		It("returns the new user id as a string", func() {
			svc.signupFn = func(_ context.Context, username, password string) (*model.User, error) {
				Expect(username).To(Equal("alice"))
				Expect(password).To(Equal("hunter22"))
				return &model.User{ID: 1234567890123456789, Username: username}, nil
			}

			w := postJSON(router, "/signup", map[string]string{"username": "alice", "password": "hunter22"})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["success"]).To(BeTrue())
			Expect(resp["userId"]).To(Equal("1234567890123456789"))
		})

		It("returns 400 when the username is taken", func() {
			svc.signupFn = func(_ context.Context, _, _ string) (*model.User, error) {
				return nil, service.ErrUsernameTaken
			}

			w := postJSON(router, "/signup", map[string]string{"username": "alice", "password": "x"})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["error"]).To(Equal(service.ErrUsernameTaken.Error()))
		})

		It("returns 400 when the password is missing", func() {
			w := postJSON(router, "/signup", map[string]string{"username": "alice"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Login", func() {
		It("returns the token and user", func() {
			svc.loginFn = func(_ context.Context, username, _ string) (*service.LoginResult, error) {
				return &service.LoginResult{
					Token:     "tok",
					ExpiresAt: time.Now().Add(time.Hour),
					User:      &model.User{ID: 7, Username: username},
				}, nil
			}

			w := postJSON(router, "/login", map[string]string{"username": "alice", "password": "pw"})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["token"]).To(Equal("tok"))
			Expect(resp["userId"]).To(Equal("7"))
			Expect(resp["username"]).To(Equal("alice"))
		})

		It("returns 401 on bad credentials", func() {
			svc.loginFn = func(_ context.Context, _, _ string) (*service.LoginResult, error) {
				return nil, service.ErrInvalidCredentials
			}

			w := postJSON(router, "/login", map[string]string{"username": "alice", "password": "nope"})

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Me", func() {
		It("returns the caller's profile", func() {
			svc.profileFn = func(_ context.Context, userID int64) (*model.User, error) {
				return &model.User{ID: userID, Username: "alice", Experience: 3}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["id"]).To(Equal("42"))
			Expect(resp["experience"]).To(BeEquivalentTo(3))
			Expect(resp["badges"]).To(BeEmpty())
		})

		It("hides unexpected errors behind a 500", func() {
			svc.profileFn = func(_ context.Context, _ int64) (*model.User, error) {
				return nil, errors.New("connection reset")
			}

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(w)["error"]).To(Equal("internal server error"))
		})
	})
})
