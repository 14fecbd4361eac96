package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/laropanostra/shopapp"
)

const (
	loginFailedMessage  = "Usuario o contraseña incorrectos"
	loginSuccessMessage = "Inicio de sesión exitoso"
)

// LoginResult is the answer to a login attempt.
type LoginResult struct {
	Success int         `json:"success"`
	Message string      `json:"message"`
	Usuario shopapp.Row `json:"usuario,omitempty"`
}

// SeguridadRepo handles user accounts.
type SeguridadRepo struct {
	exec Executor
}

// Login checks credentials. The procedure answers with a status set whose
// first row carries a success column, followed by the user set on success.
// A result missing either is reported as ErrUnexpectedResult.
func (r *SeguridadRepo) Login(ctx context.Context, p shopapp.Params) (LoginResult, error) {
	sets, err := r.exec.ExecuteMulti(ctx, ProcLogin, p)
	if err != nil {
		return LoginResult{}, err
	}

	if len(sets) == 0 || len(sets[0]) == 0 {
		return LoginResult{}, unexpected("login status set is empty")
	}
	flag, ok := sets[0][0]["success"]
	if !ok {
		return LoginResult{}, unexpected("login status has no success column")
	}
	if !truthy(flag) {
		return LoginResult{Success: 0, Message: loginFailedMessage}, nil
	}

	if len(sets) < 2 || len(sets[1]) == 0 {
		return LoginResult{}, unexpected("login user set is empty")
	}
	return LoginResult{
		Success: 1,
		Message: loginSuccessMessage,
		Usuario: sets[1][0],
	}, nil
}

// Registrar creates a user profile.
func (r *SeguridadRepo) Registrar(ctx context.Context, p shopapp.Params) ([]shopapp.ResultSet, error) {
	return r.exec.ExecuteMulti(ctx, ProcInsUsuario, p)
}

// ActualizarPerfil updates a user profile.
func (r *SeguridadRepo) ActualizarPerfil(ctx context.Context, p shopapp.Params) ([]shopapp.ResultSet, error) {
	return r.exec.ExecuteMulti(ctx, ProcUpdUsuario, p)
}

func unexpected(detail string) error {
	return fmt.Errorf("%w: %s: %w", shopapp.ErrInternal, detail, shopapp.ErrUnexpectedResult)
}

// truthy reports whether a column value counts as set. Drivers return bit
// columns as bool and integer columns as int64; text columns come back as
// strings.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case int32:
		return x != 0
	case int:
		return x != 0
	case float64:
		return x != 0
	case string:
		s := strings.TrimSpace(x)
		return s != "" && s != "0" && !strings.EqualFold(s, "false")
	default:
		return true
	}
}
