package property

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/misionesarrienda/api/internal/middleware"
	"github.com/misionesarrienda/api/internal/request"
	"github.com/misionesarrienda/api/internal/response"
	"github.com/misionesarrienda/api/internal/upload"
)

const (
	defaultLimit = 20
	maxLimit     = 50
)

// Handler holds HTTP handlers for property endpoints.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new property Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type listQuery struct {
	City   string `query:"city"   validate:"max=100"`
	Type   string `query:"type"   validate:"omitempty,oneof=casa departamento ph local terreno oficina"`
	Limit  int    `query:"limit"  validate:"min=1,max=50"`
	Offset int    `query:"offset" validate:"min=0"`
}

// List godoc
//
//	@Summary		List properties
//	@Description	Returns active properties, newest first, each with its cover image.
//	@Tags			properties
//	@Produce		json
//	@Param			city	query		string	false	"City, exact match ignoring case"
//	@Param			type	query		string	false	"Property type"	Enums(casa, departamento, ph, local, terreno, oficina)
//	@Param			limit	query		int		false	"Page size"		default(20)	maximum(50)
//	@Param			offset	query		int		false	"Offset"		default(0)
//	@Success		200		{object}	response.Envelope{data=Page}
//	@Failure		400		{object}	response.Envelope
//	@Failure		422		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/properties [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := request.QueryInt(r, "limit", defaultLimit)
	if err != nil {
		response.BadRequest(w, "limit must be a number")
		return
	}
	offset, err := request.QueryInt(r, "offset", 0)
	if err != nil {
		response.BadRequest(w, "offset must be a number")
		return
	}

	q := listQuery{
		City:   r.URL.Query().Get("city"),
		Type:   r.URL.Query().Get("type"),
		Limit:  limit,
		Offset: offset,
	}
	if fields := request.Validate(q); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	page, err := h.svc.List(r.Context(), Filter(q))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, page)
}

// Get godoc
//
//	@Summary		Get property
//	@Description	Returns a property with every image found in its storage folder followed by the ones recorded on the listing.
//	@Tags			properties
//	@Produce		json
//	@Param			id	path		string	true	"Property ID"
//	@Success		200	{object}	response.Envelope{data=Detail}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/properties/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, d)
}

// UploadImage godoc
//
//	@Summary		Upload property image
//	@Description	Uploads a JPEG, PNG or WebP image (max 10 MB) to a property owned by the caller.
//	@Tags			properties
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Property ID"
//	@Param			file	formData	file	true	"Image"
//	@Success		201		{object}	response.Envelope{data=Detail}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/properties/{id}/images [post]
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	img, err := upload.ReadImage(w, r, "file")
	if err != nil {
		upload.WriteError(w, err)
		return
	}

	d, err := h.svc.AddImage(r.Context(), userID, id, img)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, d)
}

func parseID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid property id")
		return "", false
	}
	return id.String(), true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case h.svc.IsNotFound(err):
		response.NotFound(w, "property not found")
	case h.svc.IsForbidden(err):
		response.Forbidden(w, "you do not own this property")
	default:
		h.log.Error("property request failed", zap.Error(err))
		response.InternalError(w)
	}
}
