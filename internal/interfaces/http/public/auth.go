package public

import (
	"context"
	"errors"
	"net/http"

	accountapp "github.com/sngm3741/mess-finder/api/internal/account/application"
	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
)

// authMeHandler はトークンの主体を返す。オーナーと管理者はアカウント情報も含める。
func (h *Handler) authMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusUnauthorized, "authentication required")
			return
		}

		resp := accountResponse{
			ID:   user.Principal.PrincipalID(),
			Name: user.Name,
			Role: user.Principal.Role(),
		}
		if _, isUser := user.Principal.(domain.UserPrincipal); isUser {
			common.WriteData(h.logger, w, http.StatusOK, "", resp)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		account, err := h.accounts.Profile(ctx, user.Principal)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				common.WriteMessage(h.logger, w, http.StatusUnauthorized, "account no longer exists")
				return
			}
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "", newAccountResponse(account))
	}
}

func (h *Handler) ownerRegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRegisterRequest
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		if _, err := h.accounts.RegisterOwner(ctx, accountapp.RegisterOwnerCommand{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Phone:    req.Phone,
		}); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		session, err := h.accounts.Login(ctx, domain.RoleOwner, req.Email, req.Password)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusCreated, "owner registered", newLoginResponse(session))
	}
}

func (h *Handler) loginHandler(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		session, err := h.accounts.Login(ctx, role, req.Email, req.Password)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteData(h.logger, w, http.StatusOK, "login successful", newLoginResponse(session))
	}
}

func newAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:    a.ID,
		Email: a.Email.String(),
		Name:  a.Name,
		Phone: a.Phone,
		Role:  a.Role,
	}
}

func newLoginResponse(s *accountapp.Session) loginResponse {
	return loginResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      newAccountResponse(s.Account),
	}
}
