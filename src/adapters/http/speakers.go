package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"agendaapi/src/domain/entities"
)

type manageSpeakerRequest struct {
	User    *json.Number `json:"user"`
	Speaker *json.Number `json:"speaker"`
}

// AddSpeaker: POST manage_speaker/ com {"user": <id>}.
func (s *Server) AddSpeaker(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r, "id")
	if !ok {
		s.writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}

	request, ok := s.readManageSpeaker(w, r)
	if !ok {
		return
	}

	userID, ok := positiveID(request.User)
	if !ok {
		s.writeDetail(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	if _, err := s.agendaService.AddSpeaker(r.Context(), itemID, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeDetail(w, http.StatusOK, fmt.Sprintf("User %d was successfully added to the list of speakers.", userID))
}

// RemoveSpeaker: DELETE manage_speaker/ com {"speaker": <id>}.
func (s *Server) RemoveSpeaker(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r, "id")
	if !ok {
		s.writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}

	request, ok := s.readManageSpeaker(w, r)
	if !ok {
		return
	}

	speakerID, ok := positiveID(request.Speaker)
	if !ok {
		s.writeDetail(w, http.StatusBadRequest, "Invalid speaker ID.")
		return
	}

	if err := s.agendaService.RemoveSpeaker(r.Context(), itemID, speakerID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeDetail(w, http.StatusOK, fmt.Sprintf("Speaker %d was successfully removed from the list of speakers.", speakerID))
}

// UpdateSpeaker: PATCH speakers/{speaker_id}/ com os campos do orador.
func (s *Server) UpdateSpeaker(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r, "id")
	if !ok {
		s.writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}
	speakerID, ok := pathID(r, "speaker_id")
	if !ok {
		s.writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	speakers := s.items.Speakers()
	updated, err := s.agendaService.UpdateSpeaker(r.Context(), itemID, speakerID, func(current entities.Speaker) (entities.Speaker, error) {
		return speakers.Deserialize(body, true, &current)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	response, err := speakers.Serialize(r, updated)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) readManageSpeaker(w http.ResponseWriter, r *http.Request) (manageSpeakerRequest, bool) {
	var request manageSpeakerRequest

	body, err := readBody(w, r)
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, err.Error())
		return request, false
	}

	if len(body) > 0 {
		if err := json.Unmarshal(body, &request); err != nil {
			s.writeDetail(w, http.StatusBadRequest, "Invalid data. Expected a dictionary.")
			return request, false
		}
	}

	return request, true
}

func positiveID(value *json.Number) (int64, bool) {
	if value == nil {
		return 0, false
	}
	id, err := value.Int64()
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
