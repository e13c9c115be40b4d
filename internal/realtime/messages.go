package realtime

import "github.com/annel0/shape-world/internal/world"

// Типы серверных сообщений realtime канала.
// Клиентских сообщений на канале нет: все действия клиентов
// проходят через REST-фасад.
const (
	EventCharacterCreated = "character_created"
	EventCharacterMoved   = "character_moved"
	EventCharactersUpdate = "characters_update"
	EventPopulationUpdate = "population_update"
)

// Event — серверное сообщение с дискриминатором типа
type Event interface {
	EventType() string
}

// CharacterCreated сообщает о появлении нового персонажа
type CharacterCreated struct {
	Type      string          `json:"type"`
	Character world.Character `json:"character"`
}

func (e CharacterCreated) EventType() string { return e.Type }

// CharacterMoved сообщает о переселении персонажа в другую зону
type CharacterMoved struct {
	Type      string          `json:"type"`
	Character world.Character `json:"character"`
}

func (e CharacterMoved) EventType() string { return e.Type }

// CharactersUpdate несет полный список персонажей (начальное состояние)
type CharactersUpdate struct {
	Type       string            `json:"type"`
	Characters []world.Character `json:"characters"`
}

func (e CharactersUpdate) EventType() string { return e.Type }

// PopulationUpdate несет срез населенности по зонам
type PopulationUpdate struct {
	Type       string         `json:"type"`
	Population map[string]int `json:"population"`
}

func (e PopulationUpdate) EventType() string { return e.Type }

// NewCharacterCreated создает событие character_created
func NewCharacterCreated(ch world.Character) CharacterCreated {
	return CharacterCreated{Type: EventCharacterCreated, Character: ch}
}

// NewCharacterMoved создает событие character_moved
func NewCharacterMoved(ch world.Character) CharacterMoved {
	return CharacterMoved{Type: EventCharacterMoved, Character: ch}
}

// NewCharactersUpdate создает событие characters_update.
// Пустой мир сериализуется как [], а не null.
func NewCharactersUpdate(characters []world.Character) CharactersUpdate {
	if characters == nil {
		characters = []world.Character{}
	}
	return CharactersUpdate{Type: EventCharactersUpdate, Characters: characters}
}

// NewPopulationUpdate создает событие population_update
func NewPopulationUpdate(population map[string]int) PopulationUpdate {
	if population == nil {
		population = map[string]int{}
	}
	return PopulationUpdate{Type: EventPopulationUpdate, Population: population}
}
