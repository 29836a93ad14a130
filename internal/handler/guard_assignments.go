package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bomberos-dev/guardias/backend/internal/service"
	"github.com/bomberos-dev/guardias/backend/internal/utils"
)

// queryParam returns the first present alias. The admin UI sends start/end,
// older clients send desde/hasta.
func queryParam(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := r.URL.Query().Get(name); v != "" {
			return v
		}
	}
	return ""
}

// rangeParams merges the query aliases and validates both dates before the
// service is involved.
func (h *Handler) rangeParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	start := queryParam(r, "start", "desde")
	end := queryParam(r, "end", "hasta")

	if start == "" || end == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "debe indicar las fechas start y end (o desde y hasta)")
		return "", "", false
	}
	if err := utils.ValidateDate(start); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	if err := utils.ValidateDate(end); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return "", "", false
	}

	return start, end, true
}

func (h *Handler) CreateAssignments(w http.ResponseWriter, r *http.Request) {
	groupID := r.Context().Value(GroupIDCtx).(int64)

	var req struct {
		Asignaciones []service.AssignmentInput `json:"asignaciones"`
		Asignacion   *service.AssignmentInput  `json:"asignacion"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// a lone asignacion object is accepted and treated as a batch of one
	if len(req.Asignaciones) == 0 && req.Asignacion != nil {
		req.Asignaciones = []service.AssignmentInput{*req.Asignacion}
	}
	if len(req.Asignaciones) == 0 {
		h.errorResponse(w, r, http.StatusBadRequest, "asignaciones debe ser un arreglo no vacío")
		return
	}

	count, err := h.service.CreateAssignments(groupID, req.Asignaciones)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, count)
}

func (h *Handler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	groupID := r.Context().Value(GroupIDCtx).(int64)

	start, end, ok := h.rangeParams(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.GetAssignments(groupID, start, end)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, assignments)
}

func (h *Handler) DeleteAssignmentsByRange(w http.ResponseWriter, r *http.Request) {
	groupID := r.Context().Value(GroupIDCtx).(int64)

	start, end, ok := h.rangeParams(w, r)
	if !ok {
		return
	}

	count, err := h.service.DeleteByRange(groupID, start, end)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, count)
}

func (h *Handler) ReplaceDay(w http.ResponseWriter, r *http.Request) {
	groupID := r.Context().Value(GroupIDCtx).(int64)

	var req struct {
		Fecha        string                    `json:"fecha" validate:"required"`
		Asignaciones []service.AssignmentInput `json:"asignaciones"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateDate(req.Fecha); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// an empty asignaciones clears the day on purpose
	if err := h.service.ReplaceDay(groupID, req.Fecha, req.Asignaciones); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, true)
}

func (h *Handler) GetAssignmentsByFirefighter(w http.ResponseWriter, r *http.Request) {
	dniParam := r.URL.Query().Get("dni")
	dni, err := strconv.ParseInt(dniParam, 10, 64)
	if err != nil || dni <= 0 {
		h.errorResponse(w, r, http.StatusBadRequest, "el dni debe ser un entero positivo")
		return
	}

	start, end, ok := h.rangeParams(w, r)
	if !ok {
		return
	}

	var groupID *int64
	if idGrupoParam := r.URL.Query().Get("idGrupo"); idGrupoParam != "" {
		id, err := strconv.ParseInt(idGrupoParam, 10, 64)
		if err != nil || id <= 0 {
			h.errorResponse(w, r, http.StatusBadRequest, "el id de grupo debe ser un entero positivo")
			return
		}
		groupID = &id
	}

	assignments, err := h.service.GetAssignmentsByFirefighter(dni, start, end, groupID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, assignments)
}

func (h *Handler) DeleteAssignmentsByIDs(w http.ResponseWriter, r *http.Request) {
	idsParam := r.URL.Query().Get("ids")
	if idsParam == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "debe indicar los ids de asignación a eliminar")
		return
	}

	parts := strings.Split(idsParam, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "el id de asignación "+part+" no es válido")
			return
		}
		ids = append(ids, id)
	}

	count, err := h.service.DeleteAssignments(ids)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, count)
}
