package user

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/misionesarrienda/api/internal/middleware"
	"github.com/misionesarrienda/api/internal/request"
	"github.com/misionesarrienda/api/internal/response"
	"github.com/misionesarrienda/api/internal/upload"
)

// Handler holds HTTP handlers for user-related endpoints.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type updateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,max=200" example:"Jane Doe"`
	Phone *string `json:"phone" validate:"omitempty,e164"    example:"+543764000000"`
	Bio   *string `json:"bio"   validate:"omitempty,max=500" example:"Busco departamento en Posadas"`
}

// GetMe godoc
//
//	@Summary		Get current user
//	@Description	Returns the profile of the currently authenticated user. The display name never exposes a raw identifier.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Profile}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	p, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, p)
}

// UpdateProfile godoc
//
//	@Summary		Update current user
//	@Description	Updates name, phone and bio. Blank or identifier-shaped names are replaced by the email local part.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		updateProfileRequest	true	"Profile fields"
//	@Success		200		{object}	response.Envelope{data=Profile}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		422		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/users/me [patch]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if fields := request.Validate(req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), userID, UpdateInput{
		Name:  req.Name,
		Phone: req.Phone,
		Bio:   req.Bio,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, p)
}

// UploadAvatar godoc
//
//	@Summary		Upload avatar
//	@Description	Uploads a JPEG, PNG or WebP image (max 10 MB) as the user's avatar.
//	@Tags			users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Avatar image"
//	@Success		200		{object}	response.Envelope{data=Profile}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/users/me/avatar [post]
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	img, err := upload.ReadImage(w, r, "file")
	if err != nil {
		upload.WriteError(w, err)
		return
	}

	p, err := h.svc.UploadAvatar(r.Context(), userID, img)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, p)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if h.svc.IsNotFound(err) {
		response.NotFound(w, "user not found")
		return
	}
	h.log.Error("user request failed", zap.Error(err))
	response.InternalError(w)
}
