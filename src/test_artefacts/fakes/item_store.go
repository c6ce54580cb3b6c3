package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
)

// ItemStore guarda itens e oradores em memória seguindo as mesmas regras
// de ordenação e de not found dos repositórios Postgres.
type ItemStore struct {
	mu            sync.Mutex
	items         map[int64]entities.Item
	nextItemID    int64
	nextSpeakerID int64
	reads         int

	// Err, quando preenchido, é devolvido por toda operação.
	Err error
}

func NewItemStore(items ...entities.Item) *ItemStore {
	store := &ItemStore{items: make(map[int64]entities.Item)}
	for _, item := range items {
		store.Put(item)
	}
	return store
}

// Put grava o item como está, mantendo o id dado.
func (s *ItemStore) Put(item entities.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID > s.nextItemID {
		s.nextItemID = item.ID
	}
	for _, speaker := range item.Speakers {
		if speaker.ID > s.nextSpeakerID {
			s.nextSpeakerID = speaker.ID
		}
	}
	s.items[item.ID] = cloneItem(item)
}

// Reads conta as leituras, para os testes de cache.
func (s *ItemStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *ItemStore) GetItem(ctx context.Context, id int64) (entities.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++

	if s.Err != nil {
		return entities.Item{}, s.Err
	}

	item, ok := s.items[id]
	if !ok {
		return entities.Item{}, fmt.Errorf("ItemStore.GetItem - item %d: %w", id, domain.ErrEntityNotFound)
	}
	return s.present(item), nil
}

func (s *ItemStore) ListItems(ctx context.Context, filter domain.ItemFilter) ([]entities.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++

	if s.Err != nil {
		return nil, s.Err
	}

	result := make([]entities.Item, 0)
	for _, item := range s.items {
		if matches(item, filter) {
			result = append(result, s.present(item))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Weight != result[j].Weight {
			return result[i].Weight < result[j].Weight
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (s *ItemStore) CreateItem(ctx context.Context, item entities.Item) (entities.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return entities.Item{}, s.Err
	}

	s.nextItemID++
	item.ID = s.nextItemID
	item.Speakers = []entities.Speaker{}
	item.Content = nil
	if item.TagIDs == nil {
		item.TagIDs = []int64{}
	}
	s.items[item.ID] = cloneItem(item)

	return s.present(item), nil
}

func (s *ItemStore) UpdateItem(ctx context.Context, item entities.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	stored, ok := s.items[item.ID]
	if !ok {
		return fmt.Errorf("ItemStore.UpdateItem - item %d: %w", item.ID, domain.ErrEntityNotFound)
	}

	// oradores e conteúdo não são gravados por aqui
	item.Speakers = stored.Speakers
	item.Content = stored.Content
	s.items[item.ID] = cloneItem(item)

	return nil
}

func (s *ItemStore) DeleteItem(ctx context.Context, id int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if _, ok := s.items[id]; !ok {
		return nil, fmt.Errorf("ItemStore.DeleteItem - item %d: %w", id, domain.ErrEntityNotFound)
	}

	delete(s.items, id)
	detached := make([]int64, 0)
	for childID, child := range s.items {
		if child.ParentID != nil && *child.ParentID == id {
			child.ParentID = nil
			s.items[childID] = child
			detached = append(detached, childID)
		}
	}
	sort.Slice(detached, func(i, j int) bool { return detached[i] < detached[j] })

	return detached, nil
}

func (s *ItemStore) SetTree(ctx context.Context, positions []domain.TreePosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	for _, position := range positions {
		if _, ok := s.items[position.ID]; !ok {
			return fmt.Errorf("ItemStore.SetTree - item %d: %w", position.ID, domain.ErrEntityNotFound)
		}
	}
	for _, position := range positions {
		item := s.items[position.ID]
		item.ParentID = position.ParentID
		item.Weight = position.Weight
		s.items[position.ID] = item
	}
	return nil
}

func (s *ItemStore) UpsertContentItem(ctx context.Context, content entities.ContentObject) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, false, s.Err
	}

	for id, item := range s.items {
		if item.Content != nil && item.Content.Kind == content.Kind && item.Content.ID == content.ID {
			item.Content = &content
			s.items[id] = item
			return id, false, nil
		}
	}

	s.nextItemID++
	s.items[s.nextItemID] = entities.Item{
		ID:       s.nextItemID,
		Title:    content.Title,
		Type:     entities.ItemTypeAgenda,
		TagIDs:   []int64{},
		Speakers: []entities.Speaker{},
		Content:  &content,
	}
	return s.nextItemID, true, nil
}

func (s *ItemStore) DeleteContentItem(ctx context.Context, kind entities.ContentKind, objectID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, false, s.Err
	}

	for id, item := range s.items {
		if item.Content != nil && item.Content.Kind == kind && item.Content.ID == objectID {
			delete(s.items, id)
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (s *ItemStore) AddSpeaker(ctx context.Context, speaker entities.Speaker) (entities.Speaker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return entities.Speaker{}, s.Err
	}

	item, ok := s.items[speaker.ItemID]
	if !ok {
		return entities.Speaker{}, fmt.Errorf("ItemStore.AddSpeaker - item %d: %w", speaker.ItemID, domain.ErrEntityNotFound)
	}

	s.nextSpeakerID++
	speaker.ID = s.nextSpeakerID
	item.Speakers = append(item.Speakers, speaker)
	s.items[item.ID] = item

	return speaker, nil
}

func (s *ItemStore) UpdateSpeaker(ctx context.Context, speaker entities.Speaker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	item, ok := s.items[speaker.ItemID]
	if ok {
		for i := range item.Speakers {
			if item.Speakers[i].ID == speaker.ID {
				item.Speakers[i] = speaker
				s.items[item.ID] = item
				return nil
			}
		}
	}
	return fmt.Errorf("ItemStore.UpdateSpeaker - speaker %d of item %d: %w", speaker.ID, speaker.ItemID, domain.ErrEntityNotFound)
}

func (s *ItemStore) DeleteSpeaker(ctx context.Context, itemID int64, speakerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	item, ok := s.items[itemID]
	if ok {
		for i := range item.Speakers {
			if item.Speakers[i].ID == speakerID {
				item.Speakers = append(item.Speakers[:i], item.Speakers[i+1:]...)
				s.items[itemID] = item
				return nil
			}
		}
	}
	return fmt.Errorf("ItemStore.DeleteSpeaker - speaker %d of item %d: %w", speakerID, itemID, domain.ErrEntityNotFound)
}

// present devolve uma cópia com os oradores na ordem da lista.
func (s *ItemStore) present(item entities.Item) entities.Item {
	item = cloneItem(item)
	sort.SliceStable(item.Speakers, func(i, j int) bool {
		return speakerLess(item.Speakers[i], item.Speakers[j])
	})
	return item
}

// weight NULLS FIRST, begin_time, id
func speakerLess(a, b entities.Speaker) bool {
	if (a.Weight == nil) != (b.Weight == nil) {
		return a.Weight == nil
	}
	if a.Weight != nil && *a.Weight != *b.Weight {
		return *a.Weight < *b.Weight
	}
	if a.BeginTime != nil && b.BeginTime != nil && !a.BeginTime.Equal(*b.BeginTime) {
		return a.BeginTime.Before(*b.BeginTime)
	}
	if (a.BeginTime == nil) != (b.BeginTime == nil) {
		// NULLs vão por último em ordem ascendente no Postgres
		return a.BeginTime != nil
	}
	return a.ID < b.ID
}

func matches(item entities.Item, filter domain.ItemFilter) bool {
	if filter.IDs != nil && !containsID(filter.IDs, item.ID) {
		return false
	}
	if filter.Type != nil && int(item.Type) != *filter.Type {
		return false
	}
	if filter.Closed != nil && item.Closed != *filter.Closed {
		return false
	}
	if filter.ParentID != nil && (item.ParentID == nil || *item.ParentID != *filter.ParentID) {
		return false
	}
	if filter.TagID != nil && !containsID(item.TagIDs, *filter.TagID) {
		return false
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func cloneItem(item entities.Item) entities.Item {
	item.TagIDs = append([]int64{}, item.TagIDs...)
	item.Speakers = append([]entities.Speaker{}, item.Speakers...)
	if item.ParentID != nil {
		parentID := *item.ParentID
		item.ParentID = &parentID
	}
	if item.Content != nil {
		content := *item.Content
		item.Content = &content
	}
	return item
}
