package cli

import (
	"context"
	"errors"

	"github.com/cofit/cofitcli/internal/client/api"
	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/common"
)

// codeNotSent is shown when a code request fails without a server reason.
const codeNotSent = "verification code request failed"

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// argOrPrompt returns args[i] when present, otherwise asks for it.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if i < len(args) && args[i] != "" {
		return args[i], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// Method switches the login form between phone and email.
func (a *App) Method(_ context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Login method: %s\n", a.session.Snapshot().LoginMethod)
		return nil
	}
	m, ok := models.ParseLoginMethod(args[0])
	if !ok {
		a.println("Usage: method phone|email")
		return nil
	}
	a.session.SetLoginMethod(m)
	a.printf("Login method set to %s\n", m)
	return nil
}

// SendCode texts a verification code to the given phone number.
func (a *App) SendCode(ctx context.Context, args []string) error {
	phone, err := a.argOrPrompt(args, 0, "Enter phone number")
	if err != nil {
		return err
	}
	if err := a.session.SendVerificationCode(ctx, phone); err != nil {
		a.println("Could not send code:", api.UserMessage(err, codeNotSent))
		return err
	}
	a.println("Verification code sent")
	return nil
}

// Login authenticates with the selected method. Phone login texts a code
// first unless one is passed as the second argument.
func (a *App) Login(ctx context.Context, args []string) error {
	return a.login(ctx, args, a.session.Snapshot().LoginMethod)
}

// LoginEmail signs in with email and password and leaves the selected
// method alone.
func (a *App) LoginEmail(ctx context.Context, args []string) error {
	return a.login(ctx, args, models.LoginMethodEmail)
}

func (a *App) login(ctx context.Context, args []string, method models.LoginMethod) error {
	if a.isLoggedIn() {
		a.println("Already logged in; logout first")
		return nil
	}

	var err error
	switch method {
	case models.LoginMethodEmail:
		err = a.loginWithEmail(ctx, args)
	default:
		err = a.loginWithPhone(ctx, args)
	}
	if err != nil {
		var le *client.LoginError
		if errors.As(err, &le) {
			a.println("Login failed:", le.Message)
		} else {
			a.println("Login failed:", err)
		}
		return err
	}

	s := a.session.Snapshot()
	a.printf("Logged in as %s\n", s.User.Name)
	return nil
}

func (a *App) loginWithPhone(ctx context.Context, args []string) error {
	phone, err := a.argOrPrompt(args, 0, "Enter phone number")
	if err != nil {
		return err
	}

	if len(args) < 2 {
		if err := a.session.SendVerificationCode(ctx, phone); err != nil {
			return &client.LoginError{Message: api.UserMessage(err, codeNotSent), Err: err}
		}
		a.println("Verification code sent")
	}

	code, err := a.argOrPrompt(args, 1, "Enter verification code")
	if err != nil {
		return err
	}
	_, err = a.session.LoginWithPhone(ctx, phone, code)
	return err
}

func (a *App) loginWithEmail(ctx context.Context, args []string) error {
	email, err := a.argOrPrompt(args, 0, "Enter email")
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, err = a.session.LoginWithEmail(ctx, email, string(password))
	return err
}

func (a *App) WhoAmI(_ context.Context, _ []string) error {
	s := a.session.Snapshot()
	if !s.IsAuthenticated() {
		a.println("Not logged in")
		return nil
	}
	u := s.User
	a.printf("id:    %s\nname:  %s\nrole:  %s\n", u.ID, u.Name, s.Role)
	if u.Phone != "" {
		a.printf("phone: %s\n", u.Phone)
	}
	if u.Email != "" {
		a.printf("email: %s\n", u.Email)
	}
	if s.TokenExpiresAt != nil {
		a.printf("token expires: %s\n", s.TokenExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		a.println("Logged out, but clearing local storage failed:", err)
		return err
	}
	a.println("Logged out")
	return nil
}
