package console

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leonardcser/adminkit/internal/api"
	"github.com/leonardcser/adminkit/internal/session"
	"github.com/leonardcser/adminkit/internal/upload"
)

// Auth calls the login endpoint.
type Auth struct{ c *api.Client }

func NewAuth(c *api.Client) *Auth { return &Auth{c: c} }

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for the signed-in user record.
func (a *Auth) Login(ctx context.Context, username, password string) api.Result[session.User] {
	return api.Post[session.User](ctx, a.c, "/auth/login", credentials{Username: username, Password: password})
}

type BranchService struct{ c *api.Client }

func (s *BranchService) List(ctx context.Context) api.Result[[]Branch] {
	return api.Get[[]Branch](ctx, s.c, "/branches")
}

func (s *BranchService) Create(ctx context.Context, b Branch) api.Result[bool] {
	return api.Post[bool](ctx, s.c, "/branches", b)
}

type DutyService struct{ c *api.Client }

func (s *DutyService) List(ctx context.Context) api.Result[[]Duty] {
	return api.Get[[]Duty](ctx, s.c, "/duties")
}

func (s *DutyService) Update(ctx context.Context, d Duty) api.Result[bool] {
	return api.Put[bool](ctx, s.c, fmt.Sprintf("/duties/%d", d.ID), d)
}

type MemberService struct{ c *api.Client }

func (s *MemberService) List(ctx context.Context) api.Result[[]Member] {
	return api.Get[[]Member](ctx, s.c, "/members")
}

// Save creates or updates m. With attachments the call goes out as
// multipart form data, otherwise as JSON.
func (s *MemberService) Save(ctx context.Context, m Member) api.Result[bool] {
	method, path := http.MethodPost, "/members"
	if m.ID != 0 {
		method, path = http.MethodPut, fmt.Sprintf("/members/%d", m.ID)
	}
	if len(m.Attachments) == 0 {
		return api.JSON[bool](ctx, s.c, method, path, m)
	}
	body, ctype, err := upload.Multipart(m.formFields(), "attachments", m.Attachments)
	if err != nil {
		return api.Fail[bool](fmt.Sprintf("encode upload: %v", err))
	}
	return api.Send[bool](ctx, s.c, method, path, ctype, body)
}
