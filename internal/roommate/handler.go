package roommate

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/misionesarrienda/api/internal/request"
	"github.com/misionesarrienda/api/internal/response"
)

// Handler holds HTTP handlers for roommate endpoints.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new roommate Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type listQuery struct {
	City   string `query:"city"   validate:"max=100"`
	Limit  int    `query:"limit"  validate:"min=1,max=50"`
	Offset int    `query:"offset" validate:"min=0"`
}

// List godoc
//
//	@Summary		List roommate posts
//	@Description	Returns roommate posts, newest first.
//	@Tags			roommates
//	@Produce		json
//	@Param			city	query		string	false	"City, exact match ignoring case"
//	@Param			limit	query		int		false	"Page size"	default(20)	maximum(50)
//	@Param			offset	query		int		false	"Offset"	default(0)
//	@Success		200		{object}	response.Envelope{data=[]View}
//	@Failure		400		{object}	response.Envelope
//	@Failure		422		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/roommates [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := request.QueryInt(r, "limit", 20)
	if err != nil {
		response.BadRequest(w, "limit must be a number")
		return
	}
	offset, err := request.QueryInt(r, "offset", 0)
	if err != nil {
		response.BadRequest(w, "offset must be a number")
		return
	}

	q := listQuery{City: r.URL.Query().Get("city"), Limit: limit, Offset: offset}
	if fields := request.Validate(q); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	posts, err := h.svc.List(r.Context(), q.City, q.Limit, q.Offset)
	if err != nil {
		h.log.Error("list roommate posts failed", zap.Error(err))
		response.InternalError(w)
		return
	}

	response.OK(w, posts)
}

// Get godoc
//
//	@Summary		Get roommate post
//	@Description	Returns a post with the images in its storage folder followed by the recorded ones.
//	@Tags			roommates
//	@Produce		json
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	response.Envelope{data=View}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/roommates/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid post id")
		return
	}

	v, err := h.svc.Get(r.Context(), id.String())
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "roommate post not found")
			return
		}
		h.log.Error("get roommate post failed", zap.Error(err), zap.String("id", id.String()))
		response.InternalError(w)
		return
	}

	response.OK(w, v)
}
