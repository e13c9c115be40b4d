package world

import (
	"sync"
	"time"
)

// CharacterStore — in-memory хранилище персонажей.
// Идентификаторы монотонно растут начиная с 1; состояние живет
// только в памяти процесса и не переживает рестарт.
// Хранилище создается один раз при старте и передается фасаду
// и планировщику миграции явно, без глобального состояния.
type CharacterStore struct {
	mu         sync.RWMutex
	characters map[int]*Character
	order      []int // порядок вставки для стабильного обхода
	nextID     int
}

// NewCharacterStore создает пустое хранилище
func NewCharacterStore() *CharacterStore {
	return &CharacterStore{
		characters: make(map[int]*Character),
		nextID:     1,
	}
}

// CreateCharacter присваивает следующий id, штампует createdAt
// и сохраняет запись. Для корректных данных не завершается ошибкой:
// валидация схемы происходит на границе фасада.
func (cs *CharacterStore) CreateCharacter(data CharacterData) Character {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	ch := &Character{
		ID:          cs.nextID,
		Name:        data.Name,
		Creator:     data.Creator,
		Shape:       data.Shape,
		Color:       data.Color,
		Size:        data.Size,
		X:           data.X,
		Y:           data.Y,
		CurrentZone: data.CurrentZone,
		CreatedAt:   time.Now().UTC(),
	}
	cs.nextID++

	cs.characters[ch.ID] = ch
	cs.order = append(cs.order, ch.ID)
	return *ch
}

// Character возвращает копию записи по id
func (cs *CharacterStore) Character(id int) (Character, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	ch, ok := cs.characters[id]
	if !ok {
		return Character{}, false
	}
	return *ch, true
}

// Characters возвращает все записи в порядке вставки
func (cs *CharacterStore) Characters() []Character {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	out := make([]Character, 0, len(cs.characters))
	for _, id := range cs.order {
		if ch, ok := cs.characters[id]; ok {
			out = append(out, *ch)
		}
	}
	return out
}

// Count возвращает текущее число персонажей
func (cs *CharacterStore) Count() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.characters)
}

// UpdateCharacter вливает ненулевые поля в существующую запись.
// Слияние атомарно относительно конкурентных тиков миграции и создания.
func (cs *CharacterStore) UpdateCharacter(id int, updates CharacterUpdate) (Character, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	ch, ok := cs.characters[id]
	if !ok {
		return Character{}, false
	}

	if updates.Name != nil {
		ch.Name = *updates.Name
	}
	if updates.Creator != nil {
		ch.Creator = *updates.Creator
	}
	if updates.Shape != nil {
		ch.Shape = *updates.Shape
	}
	if updates.Color != nil {
		ch.Color = *updates.Color
	}
	if updates.Size != nil {
		ch.Size = *updates.Size
	}
	if updates.X != nil {
		ch.X = *updates.X
	}
	if updates.Y != nil {
		ch.Y = *updates.Y
	}
	if updates.CurrentZone != nil {
		ch.CurrentZone = *updates.CurrentZone
	}

	return *ch, true
}

// DeleteCharacter удаляет запись и сообщает, существовала ли она.
// Ни один штатный поток сервера персонажей не удаляет — операция
// существует как возможность хранилища.
func (cs *CharacterStore) DeleteCharacter(id int) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.characters[id]; !ok {
		return false
	}
	delete(cs.characters, id)

	for i, oid := range cs.order {
		if oid == id {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
	return true
}
