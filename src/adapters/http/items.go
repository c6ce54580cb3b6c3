package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
)

func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	filter, err := parseItemFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, err := s.agendaService.ListItems(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	response, err := s.items.SerializeMany(r, items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}

	item, err := s.agendaService.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeItem(w, r, http.StatusOK, item)
}

func (s *Server) GetItemTree(w http.ResponseWriter, r *http.Request) {
	filter, err := parseItemFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tree, err := s.agendaService.GetTree(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, tree)
}

type sortTreeRequest struct {
	Tree []*domain.ItemTreeNode `json:"tree"`
}

func (s *Server) SortItemTree(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	var request sortTreeRequest
	if err := json.Unmarshal(body, &request); err != nil || request.Tree == nil {
		s.writeError(w, r, domain.NewValidationError("tree", "This field is required."))
		return
	}

	if err := s.agendaService.SortTree(r.Context(), request.Tree); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeDetail(w, http.StatusOK, "Agenda tree successfully updated.")
}

func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := s.items.Deserialize(body, false, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.agendaService.CreateItem(r.Context(), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeItem(w, r, http.StatusCreated, created)
}

func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	s.updateItem(w, r, false)
}

func (s *Server) PartialUpdateItem(w http.ResponseWriter, r *http.Request) {
	s.updateItem(w, r, true)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(r, "id")
	if !ok {
		s.writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.agendaService.UpdateItem(r.Context(), id, func(current entities.Item) (entities.Item, error) {
		return s.items.Deserialize(body, partial, &current)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeItem(w, r, http.StatusOK, updated)
}

func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}

	if err := s.agendaService.DeleteItem(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeItem(w http.ResponseWriter, r *http.Request, status int, item entities.Item) {
	response, err := s.items.Serialize(r, item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if status == http.StatusCreated {
		w.Header().Set("Location", response.URL)
	}
	s.writeJSON(w, status, response)
}

// parseItemFilter lê os filtros da query string: type, closed, parent e tag.
func parseItemFilter(r *http.Request) (domain.ItemFilter, error) {
	var filter domain.ItemFilter
	var errs []domain.FieldError
	query := r.URL.Query()

	if raw := query.Get("type"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || !entities.ItemType(value).Valid() {
			errs = append(errs, domain.FieldError{Field: "type", Message: "Select a valid choice. That choice is not one of the available choices."})
		} else {
			filter.Type = &value
		}
	}

	if raw := query.Get("closed"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "closed", Message: "Must be a valid boolean."})
		} else {
			filter.Closed = &value
		}
	}

	for _, field := range []struct {
		name string
		dst  **int64
	}{
		{"parent", &filter.ParentID},
		{"tag", &filter.TagID},
	} {
		raw := query.Get(field.name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: field.name, Message: "A valid integer is required."})
			continue
		}
		*field.dst = &value
	}

	if len(errs) > 0 {
		return domain.ItemFilter{}, &domain.ValidationError{Errors: errs}
	}
	return filter, nil
}
