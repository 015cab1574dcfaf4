package auth

import (
	"net/http"

	"github.com/getmockd/shelfd/pkg/apierror"
	"github.com/getmockd/shelfd/pkg/httputil"
	"github.com/getmockd/shelfd/pkg/model"
	"github.com/getmockd/shelfd/pkg/validation"
)

type userReply struct {
	User    model.User `json:"user"`
	Message string     `json:"message"`
	Token   string     `json:"token,omitempty"`
}

type messageReply struct {
	Message string      `json:"message"`
	User    *model.User `json:"user,omitempty"`
}

// Handler exposes the Service over HTTP.
type Handler struct {
	svc  *Service
	errs *httputil.Errors
}

// NewHandler creates the auth HTTP handler.
func NewHandler(svc *Service, errs *httputil.Errors) *Handler {
	return &Handler{svc: svc, errs: errs}
}

// Register mounts the auth routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("POST /api/register", h.errs.Handle(h.register))
	mux.Handle("POST /api/login", h.errs.Handle(h.login))
	mux.Handle("POST /api/users/{email}/reset-password", h.errs.Handle(h.resetPassword))
	mux.Handle("POST /api/users/{email}/verify-security-questions", h.errs.Handle(h.verifySecurityQuestions))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) error {
	var in credentials
	if err := decode(w, r, credentialsSchema, &in); err != nil {
		return err
	}
	user, err := h.svc.Register(r.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	httputil.WriteOK(w, userReply{User: user, Message: MsgRegistered})
	return nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var in credentials
	if err := decode(w, r, credentialsSchema, &in); err != nil {
		return err
	}
	user, token, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	httputil.WriteOK(w, userReply{User: user, Message: MsgLoggedIn, Token: token})
	return nil
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) error {
	var in resetRequest
	if err := decode(w, r, resetSchema, &in); err != nil {
		return err
	}
	user, err := h.svc.ResetPassword(r.Context(), r.PathValue("email"), in.NewPassword, answersOf(in.SecurityQuestions))
	if err != nil {
		return err
	}
	httputil.WriteOK(w, messageReply{Message: MsgReset, User: &user})
	return nil
}

func (h *Handler) verifySecurityQuestions(w http.ResponseWriter, r *http.Request) error {
	var in verifyRequest
	if err := decode(w, r, verifySchema, &in); err != nil {
		return err
	}
	if err := h.svc.VerifySecurityQuestions(r.Context(), r.PathValue("email"), answersOf(in.SecurityQuestions)); err != nil {
		return err
	}
	httputil.WriteOK(w, messageReply{Message: MsgVerified})
	return nil
}

func decode(w http.ResponseWriter, r *http.Request, v *validation.Validator, dst any) error {
	body, err := httputil.ReadBody(w, r)
	if err != nil {
		return err
	}
	if res := v.Decode(body, dst); !res.Valid {
		return apierror.BadRequest(res.Err())
	}
	return nil
}
