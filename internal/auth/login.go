package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/models"
)

var (
	ErrLogin              = errors.New("login failed")
	ErrInvalidResponse    = errors.New("invalid response structure")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// TokenSetter stores or forgets the bearer token after login and logout.
type TokenSetter interface {
	Set(token string) error
	Clear() error
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Login exchanges the credentials for a bearer token with POST /login.
// It returns an error if the request fails or the response does not carry a token.
func Login(ctx context.Context, api client.Caller, username, password string) (string, error) {
	var resp loginResponse
	err := api.Call(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/login",
		JSON:   loginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && (apiErr.Kind == client.KindUnauthorized || apiErr.Kind == client.KindValidation) {
			return "", fmt.Errorf("%w: %w", ErrLogin, ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%w: %w", ErrLogin, err)
	}

	if resp.Status != "success" {
		return "", fmt.Errorf("%w, status: %q %s", ErrLogin, resp.Status, resp.Message)
	}
	if resp.Data.Token == "" {
		return "", fmt.Errorf("%w: %w", ErrLogin, ErrInvalidResponse)
	}

	return resp.Data.Token, nil
}

// LoginAndStore logs in and hands the token to tokens.
func LoginAndStore(
	ctx context.Context,
	log *slog.Logger,
	api client.Caller,
	tokens TokenSetter,
	username, password string,
) error {
	token, err := Login(ctx, api, username, password)
	if err != nil {
		return err
	}
	if err = tokens.Set(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	log.InfoContext(ctx, "Successfully logged in", "username", username)

	return nil
}

// Logout invalidates the token with POST /logout and forgets it locally.
// The local token is forgotten even when the server call fails.
func Logout(ctx context.Context, log *slog.Logger, api client.Caller, tokens TokenSetter) error {
	callErr := api.Call(ctx, client.Request{Method: http.MethodPost, Path: "/logout", JSON: struct{}{}}, nil)
	if callErr != nil {
		log.WarnContext(ctx, "Error logging out on the server", "error", callErr.Error())
	}

	if err := tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	if callErr != nil {
		return fmt.Errorf("failed to logout: %w", callErr)
	}

	return nil
}

// CurrentUser returns the account behind the token from GET /user.
func CurrentUser(ctx context.Context, api client.Caller) (models.User, error) {
	var resp struct {
		Data *models.User `json:"data"`
	}
	if err := api.Call(ctx, client.Request{Method: http.MethodGet, Path: "/user"}, &resp); err != nil {
		return models.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	if resp.Data == nil {
		return models.User{}, ErrInvalidResponse
	}

	return *resp.Data, nil
}
