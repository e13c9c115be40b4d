package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCharacter(creator, zone string, x, y float64) CharacterData {
	return CharacterData{
		Creator:     creator,
		Shape:       ShapeCircle,
		Color:       "#336699",
		Size:        SizeMedium,
		X:           x,
		Y:           y,
		CurrentZone: zone,
	}
}

func TestCharacterStore_Create(t *testing.T) {
	store := NewCharacterStore()

	ch := store.CreateCharacter(newTestCharacter("Ann", "FOREST", 10, 20))

	assert.Equal(t, 1, ch.ID, "Первый id должен быть 1")
	assert.Equal(t, "Ann", ch.Creator)
	assert.Equal(t, "FOREST", ch.CurrentZone)
	assert.False(t, ch.CreatedAt.IsZero(), "createdAt должен быть проставлен")

	second := store.CreateCharacter(newTestCharacter("Bob", "PLAZA", 310, 20))
	assert.Equal(t, 2, second.ID, "id должны расти монотонно")
}

func TestCharacterStore_GetNotFound(t *testing.T) {
	store := NewCharacterStore()

	_, ok := store.Character(999)
	assert.False(t, ok, "Отсутствующий id должен возвращать not-found")
}

func TestCharacterStore_InsertionOrder(t *testing.T) {
	store := NewCharacterStore()

	store.CreateCharacter(newTestCharacter("Ann", "FOREST", 1, 1))
	store.CreateCharacter(newTestCharacter("Bob", "PLAZA", 2, 2))
	store.CreateCharacter(newTestCharacter("Eve", "COAST", 3, 3))

	characters := store.Characters()
	require.Len(t, characters, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{characters[0].ID, characters[1].ID, characters[2].ID},
		"Обход должен сохранять порядок вставки")
}

func TestCharacterStore_Update(t *testing.T) {
	store := NewCharacterStore()
	ch := store.CreateCharacter(newTestCharacter("Ann", "FOREST", 10, 20))

	zone := "MEADOW"
	x, y := 350.0, 360.0
	updated, ok := store.UpdateCharacter(ch.ID, CharacterUpdate{CurrentZone: &zone, X: &x, Y: &y})

	require.True(t, ok)
	assert.Equal(t, "MEADOW", updated.CurrentZone)
	assert.Equal(t, 350.0, updated.X)
	assert.Equal(t, 360.0, updated.Y)
	// Нетронутые поля сохраняются
	assert.Equal(t, "Ann", updated.Creator)
	assert.Equal(t, ch.CreatedAt, updated.CreatedAt, "createdAt неизменяем")

	stored, _ := store.Character(ch.ID)
	assert.Equal(t, updated, stored, "Обновление должно быть видно при чтении")
}

func TestCharacterStore_UpdateNotFound(t *testing.T) {
	store := NewCharacterStore()

	zone := "FOREST"
	_, ok := store.UpdateCharacter(42, CharacterUpdate{CurrentZone: &zone})
	assert.False(t, ok)
}

func TestCharacterStore_Delete(t *testing.T) {
	store := NewCharacterStore()
	ch := store.CreateCharacter(newTestCharacter("Ann", "FOREST", 1, 1))

	assert.True(t, store.DeleteCharacter(ch.ID), "Существующая запись должна удаляться")
	assert.False(t, store.DeleteCharacter(ch.ID), "Повторное удаление сообщает об отсутствии")
	assert.Empty(t, store.Characters())

	// id удаленной записи не переиспользуется
	next := store.CreateCharacter(newTestCharacter("Bob", "PLAZA", 2, 2))
	assert.Equal(t, 2, next.ID)
}
