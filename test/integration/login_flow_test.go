// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

//go:build integration

package integration

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/oklog/ulid/v2"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/cache"
	"github.com/gatehouse/gatehouse/internal/web"
)

// secretHash is a bcrypt hash of "secret".
const secretHash = "$2a$10$iqJSHD.BGr0E2IxQwYgJmeP3NvhPrXAeLSaGCj6IR/XU5QtjVu5Tm"

// testEnv holds the running server and store for one spec group.
type testEnv struct {
	sessions  *cache.Store[auth.Session]
	manager   *auth.SessionManager
	webServer *web.Server
	baseURL   string
	client    *http.Client
}

// setupTestEnv wires the full stack on a loopback port.
func setupTestEnv(ttl time.Duration) *testEnv {
	account, err := auth.NewAccount(ulid.Make(), "john", secretHash, "John Doe")
	Expect(err).NotTo(HaveOccurred())

	credentials, err := auth.NewStaticCredentialStore([]*auth.Account{account})
	Expect(err).NotTo(HaveOccurred())

	verifier, err := auth.NewVerifier(credentials, auth.NewBcryptHasher())
	Expect(err).NotTo(HaveOccurred())

	sessions := cache.New[auth.Session](100 * time.Millisecond)

	manager, err := auth.NewSessionManager(verifier, auth.NewCacheSessionStore(sessions), ttl)
	Expect(err).NotTo(HaveOccurred())

	handler := web.NewHandler(manager, verifier, "sid", nil)
	server := web.NewServer("127.0.0.1:0", handler)
	_, err = server.Start()
	Expect(err).NotTo(HaveOccurred())

	return &testEnv{
		sessions:  sessions,
		manager:   manager,
		webServer: server,
		baseURL:   "http://" + server.Addr(),
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (e *testEnv) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	Expect(e.webServer.Stop(ctx)).To(Succeed())
	e.sessions.Stop()
}

// login posts credentials and returns the response.
func (e *testEnv) login(username, password string) *http.Response {
	resp, err := e.client.PostForm(e.baseURL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	Expect(err).NotTo(HaveOccurred())
	return resp
}

// sessionCookie extracts the session cookie, draining the body.
func sessionCookie(resp *http.Response) *http.Cookie {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

func body(resp *http.Response) string {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return string(data)
}

var _ = Describe("Login flow", func() {
	var env *testEnv

	BeforeEach(func() {
		env = setupTestEnv(time.Hour)
	})

	AfterEach(func() {
		env.teardown()
	})

	It("completes the login, home, logout round trip", func() {
		By("logging in with valid credentials")
		resp := env.login("john", "secret")
		Expect(resp.StatusCode).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal("/home"))

		cookie := sessionCookie(resp)
		Expect(cookie).NotTo(BeNil())
		Expect(cookie.Value).NotTo(BeEmpty())

		By("visiting the home page with the session cookie")
		req, err := http.NewRequest(http.MethodGet, env.baseURL+"/home", nil)
		Expect(err).NotTo(HaveOccurred())
		req.AddCookie(cookie)

		resp, err = env.client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body(resp)).To(ContainSubstring("Welcome John Doe!"))

		By("logging out")
		req, err = http.NewRequest(http.MethodGet, env.baseURL+"/logout", nil)
		Expect(err).NotTo(HaveOccurred())
		req.AddCookie(cookie)

		resp, err = env.client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal("/login"))
		_ = resp.Body.Close()

		By("verifying the old session no longer resolves")
		req, err = http.NewRequest(http.MethodGet, env.baseURL+"/home", nil)
		Expect(err).NotTo(HaveOccurred())
		req.AddCookie(cookie)

		resp, err = env.client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal("/login"))
		_ = resp.Body.Close()
	})

	It("rejects bad credentials without revealing which field was wrong", func() {
		wrongPassword := env.login("john", "wrong")
		Expect(wrongPassword.StatusCode).To(Equal(http.StatusOK))
		Expect(body(wrongPassword)).To(ContainSubstring("Invalid username or password"))

		unknownUser := env.login("mallory", "secret")
		Expect(unknownUser.StatusCode).To(Equal(http.StatusOK))
		Expect(body(unknownUser)).To(ContainSubstring("Invalid username or password"))
	})

	It("redirects unauthenticated visitors from home to login", func() {
		resp, err := env.client.Get(env.baseURL + "/home")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal("/login"))
		_ = resp.Body.Close()
	})

	It("serves the basic-auth endpoint", func() {
		req, err := http.NewRequest(http.MethodGet, env.baseURL+"/auth", nil)
		Expect(err).NotTo(HaveOccurred())
		req.SetBasicAuth("john", "secret")

		resp, err := env.client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body(resp)).To(Equal("hello, John Doe"))

		req, err = http.NewRequest(http.MethodGet, env.baseURL+"/auth", nil)
		Expect(err).NotTo(HaveOccurred())
		req.SetBasicAuth("john", "wrong")

		resp, err = env.client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		_ = resp.Body.Close()
	})
})

var _ = Describe("Session expiry", func() {
	var env *testEnv

	BeforeEach(func() {
		env = setupTestEnv(200 * time.Millisecond)
	})

	AfterEach(func() {
		env.teardown()
	})

	It("stops honoring a session after its TTL and evicts it from the store", func() {
		cookie := sessionCookie(env.login("john", "secret"))
		Expect(cookie).NotTo(BeNil())

		Expect(env.sessions.Len()).To(Equal(1))

		req, err := http.NewRequest(http.MethodGet, env.baseURL+"/home", nil)
		Expect(err).NotTo(HaveOccurred())
		req.AddCookie(cookie)

		Eventually(func() string {
			resp, doErr := env.client.Do(req)
			Expect(doErr).NotTo(HaveOccurred())
			defer resp.Body.Close()
			return resp.Header.Get("Location")
		}).WithTimeout(2 * time.Second).WithPolling(50 * time.Millisecond).
			Should(Equal("/login"))

		Eventually(env.sessions.Len).
			WithTimeout(2 * time.Second).WithPolling(50 * time.Millisecond).
			Should(BeZero())
	})
})

var _ = Describe("Session manager API", func() {
	var env *testEnv

	BeforeEach(func() {
		env = setupTestEnv(time.Hour)
	})

	AfterEach(func() {
		env.teardown()
	})

	It("issues distinct session ids for concurrent logins of the same account", func() {
		ctx := context.Background()

		first, err := env.manager.Login(ctx, "john", "secret")
		Expect(err).NotTo(HaveOccurred())

		second, err := env.manager.Login(ctx, "john", "secret")
		Expect(err).NotTo(HaveOccurred())

		Expect(first).NotTo(Equal(second))
		Expect(env.sessions.Len()).To(Equal(2))

		By("logging out one session leaves the other valid")
		Expect(env.manager.Logout(ctx, first)).To(Succeed())

		_, err = env.manager.Resolve(ctx, first)
		Expect(auth.IsUnauthenticated(err)).To(BeTrue())

		principal, err := env.manager.Resolve(ctx, second)
		Expect(err).NotTo(HaveOccurred())
		Expect(principal.DisplayName).To(Equal("John Doe"))
	})
})
