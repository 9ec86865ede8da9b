package suites

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/text/cases"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/schema"
	"github.com/Kargones/loopcheck/internal/tokencheck"
)

// signupName — имя пользователей, которых создаёт набор auth.
const signupName = "Loopcheck Bot"

// Auth — вход демо-пользователя и жизненный цикл учётной записи.
// Критичный набор: без токена остальные проверки бессмысленны.
func Auth(opts Options) scenario.Suite {
	s := &authSuite{opts: opts, fold: cases.Fold()}
	return scenario.Suite{
		Name:        NameAuth,
		Description: "вход, регистрация и сброс пароля",
		Critical:    true,
		Steps: []scenario.Step{
			{Name: "seed", Description: "POST /seed, только с --seed", Run: s.seed},
			{Name: "login", Description: "вход демо-пользователя", Run: s.login},
			{Name: "token_claims", Description: "sub, exp и iat токена", Requires: []string{scenario.KeyToken, scenario.KeyUserID}, Run: s.tokenClaims},
			{Name: "me", Description: "GET /auth/me с токеном", Requires: []string{scenario.KeyToken, scenario.KeyUserID}, Run: s.me},
			{Name: "login_invalid_password", Description: "неверный пароль даёт 401", Run: s.loginInvalidPassword},
			{Name: "check_handle", Description: "свободный handle доступен", Run: s.checkHandle},
			{Name: "signup", Description: "регистрация нового пользователя", Requires: []string{scenario.KeySignupHandle}, Run: s.signup},
			{Name: "login_new_user", Description: "вход нового пользователя, email в другом регистре", Requires: []string{scenario.KeySignupEmail, scenario.KeySignupHandle, scenario.KeySignupUserID}, Run: s.loginNewUser},
			{Name: "signup_duplicate", Description: "повторная регистрация даёт 400", Requires: []string{scenario.KeySignupEmail, scenario.KeySignupHandle}, Run: s.signupDuplicate},
			{Name: "forgot_password", Description: "запрос кода сброса", Requires: []string{scenario.KeySignupEmail}, Run: s.forgotPassword},
			{Name: "verify_reset_code", Description: "проверка кода сброса", Requires: []string{scenario.KeySignupEmail, scenario.KeyResetCode}, Run: s.verifyResetCode},
			{Name: "verify_reset_code_invalid", Description: "неверный код даёт 400", Requires: []string{scenario.KeySignupEmail}, Run: s.verifyResetCodeInvalid},
			{Name: "reset_password", Description: "установка нового пароля", Requires: []string{scenario.KeySignupEmail, scenario.KeyResetCode}, Run: s.resetPassword},
		},
	}
}

type authSuite struct {
	opts Options
	fold cases.Caser
}

func (s *authSuite) seed(ctx context.Context, _ *scenario.Env) scenario.Outcome {
	if !s.opts.Seed {
		return scenario.Skip("seed отключён")
	}
	resp, err := s.opts.Client.Seed(ctx)
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	result, err := loopync.DecodeAs[loopync.SeedResult](resp)
	if err != nil {
		return decodeFailed(err)
	}
	return scenario.Pass("users=%d posts=%d reels=%d venues=%d", result.Users, result.Posts, result.Reels, result.Venues)
}

func (s *authSuite) login(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.Login(ctx, s.opts.DemoEmail, s.opts.DemoPassword)
	if out, ok := expectJSON(resp, err, schema.Auth); !ok {
		return out
	}
	auth, err := loopync.DecodeAs[loopync.AuthResponse](resp)
	if err != nil {
		return decodeFailed(err)
	}

	s.opts.Client.SetToken(auth.Token)
	env.State.Set(scenario.KeyToken, auth.Token)
	env.State.Set(scenario.KeyUserID, auth.User.ID)
	env.State.Set(scenario.KeyUserHandle, auth.User.Handle)
	return scenario.Pass("user %s (@%s)", auth.User.ID, auth.User.Handle)
}

func (s *authSuite) tokenClaims(_ context.Context, env *scenario.Env) scenario.Outcome {
	claims, err := tokencheck.Inspect(env.State.String(scenario.KeyToken))
	if err != nil {
		return scenario.Fail("%v", err)
	}
	now := env.Now()
	if err := claims.Validate(env.State.String(scenario.KeyUserID), now); err != nil {
		return scenario.Fail("%v", err)
	}
	return scenario.Pass("%s, истекает через %s", claims.Algorithm, claims.TTL(now).Round(time.Second))
}

func (s *authSuite) me(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.Me(ctx)
	if out, ok := expectJSON(resp, err, schema.User); !ok {
		return out
	}
	user, err := loopync.DecodeAs[loopync.User](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if want := env.State.String(scenario.KeyUserID); user.ID != want {
		return scenario.Fail("/auth/me вернул %s, ожидался %s", user.ID, want)
	}
	return scenario.Pass("user %s", user.ID)
}

func (s *authSuite) loginInvalidPassword(ctx context.Context, _ *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.Login(ctx, s.opts.DemoEmail, s.opts.DemoPassword+"-invalid")
	if out, ok := expectStatus(resp, err, http.StatusUnauthorized); !ok {
		return out
	}
	return scenario.Pass("401 %s", resp.Detail())
}

func (s *authSuite) checkHandle(ctx context.Context, env *scenario.Env) scenario.Outcome {
	handle := "lc_" + shortID()
	resp, err := s.opts.Client.CheckHandle(ctx, handle)
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	avail, err := loopync.DecodeAs[loopync.HandleAvailability](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if !avail.Available {
		return scenario.Fail("handle @%s занят", handle)
	}
	env.State.Set(scenario.KeySignupHandle, handle)
	return scenario.Pass("@%s свободен", handle)
}

func (s *authSuite) signup(ctx context.Context, env *scenario.Env) scenario.Outcome {
	handle := env.State.String(scenario.KeySignupHandle)
	// Регистрация идёт с нормализованным email, как у клиентского приложения.
	email := s.fold.String(typedEmail(handle))
	password := "Lc-" + shortID()

	resp, err := s.opts.Client.Signup(ctx, loopync.SignupRequest{
		Handle:   handle,
		Name:     signupName,
		Email:    email,
		Password: password,
	})
	if out, ok := expectJSON(resp, err, schema.Auth); !ok {
		return out
	}
	auth, err := loopync.DecodeAs[loopync.AuthResponse](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if auth.User.Handle != handle {
		return scenario.Fail("handle в ответе %q, ожидался %q", auth.User.Handle, handle)
	}

	env.State.Set(scenario.KeySignupEmail, email)
	env.State.Set(scenario.KeySignupPass, password)
	env.State.Set(scenario.KeySignupUserID, auth.User.ID)
	return scenario.Pass("user %s", auth.User.ID)
}

// loginNewUser входит с email в том регистре, в каком его набрал
// пользователь. Сервер обязан найти учётную запись с нормализованным email.
func (s *authSuite) loginNewUser(ctx context.Context, env *scenario.Env) scenario.Outcome {
	stored := env.State.String(scenario.KeySignupEmail)
	typed := typedEmail(env.State.String(scenario.KeySignupHandle))
	resp, err := s.opts.Client.Login(ctx, typed, env.State.String(scenario.KeySignupPass))
	if err != nil {
		return requestFailed(err)
	}
	if resp.StatusCode == http.StatusUnauthorized && typed != stored {
		return scenario.Fail("вход по %q отклонён, регистр email не нормализуется: %s", typed, resp.Detail())
	}
	if out, ok := expectJSON(resp, nil, schema.Auth); !ok {
		return out
	}
	auth, err := loopync.DecodeAs[loopync.AuthResponse](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if want := env.State.String(scenario.KeySignupUserID); auth.User.ID != want {
		return scenario.Fail("вход вернул пользователя %s, ожидался %s", auth.User.ID, want)
	}
	if auth.User.Email != "" && auth.User.Email != stored {
		return scenario.Fail("email в ответе %q, ожидался %q", auth.User.Email, stored)
	}
	return scenario.Pass("user %s, вход по %s", auth.User.ID, typed)
}

// typedEmail — email нового пользователя в смешанном регистре.
func typedEmail(handle string) string {
	return "LoopCheck." + handle + "@Example.COM"
}

func (s *authSuite) signupDuplicate(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.Signup(ctx, loopync.SignupRequest{
		Handle:   env.State.String(scenario.KeySignupHandle),
		Name:     signupName,
		Email:    env.State.String(scenario.KeySignupEmail),
		Password: env.State.String(scenario.KeySignupPass),
	})
	if out, ok := expectStatus(resp, err, http.StatusBadRequest); !ok {
		return out
	}
	if !loopync.IsAlready(resp.Err()) {
		return scenario.Fail("400 без признака дубликата: %s", resp.Detail())
	}
	return scenario.Pass("400 %s", resp.Detail())
}

func (s *authSuite) forgotPassword(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.ForgotPassword(ctx, env.State.String(scenario.KeySignupEmail))
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	result, err := loopync.DecodeAs[loopync.ResetCodeResponse](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if !result.Success {
		return scenario.Fail("success=false: %s", result.Message)
	}
	if result.Code == "" {
		return scenario.Skip("стенд не вернул код сброса в ответе")
	}
	env.State.Set(scenario.KeyResetCode, result.Code)
	return scenario.Pass("код получен")
}

func (s *authSuite) verifyResetCode(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.VerifyResetCode(ctx,
		env.State.String(scenario.KeySignupEmail), env.State.String(scenario.KeyResetCode))
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	result, err := loopync.DecodeAs[loopync.VerifyResetResponse](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if !result.Success {
		return scenario.Fail("success=false: %s", result.Message)
	}
	return scenario.Pass("%s", result.Message)
}

func (s *authSuite) verifyResetCodeInvalid(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.VerifyResetCode(ctx, env.State.String(scenario.KeySignupEmail), "invalid")
	if out, ok := expectStatus(resp, err, http.StatusBadRequest); !ok {
		return out
	}
	return scenario.Pass("400 %s", resp.Detail())
}

func (s *authSuite) resetPassword(ctx context.Context, env *scenario.Env) scenario.Outcome {
	password := "Lc-" + shortID()
	resp, err := s.opts.Client.ResetPassword(ctx,
		env.State.String(scenario.KeySignupEmail), env.State.String(scenario.KeyResetCode), password)
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	result, err := loopync.DecodeAs[loopync.StatusResponse](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if !result.Success {
		return scenario.Fail("success=false: %s", result.Message)
	}
	env.State.Set(scenario.KeySignupPass, password)
	return scenario.Pass("%s", result.Message)
}
