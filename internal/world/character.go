package world

import "time"

// Формы и размеры персонажей — фиксированные перечисления
const (
	ShapeCircle   = "circle"
	ShapeSquare   = "square"
	ShapeTriangle = "triangle"
	ShapeDiamond  = "diamond"

	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// Character представляет геометрического аватара в мире.
// JSON-теги совпадают с wire-форматом realtime канала и REST API.
type Character struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Creator     string    `json:"creator"`
	Shape       string    `json:"shape"`
	Color       string    `json:"color"`
	Size        string    `json:"size"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	CurrentZone string    `json:"currentZone"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CharacterData содержит поля нового персонажа без id и createdAt —
// их присваивает хранилище.
type CharacterData struct {
	Name        string
	Creator     string
	Shape       string
	Color       string
	Size        string
	X           float64
	Y           float64
	CurrentZone string
}

// CharacterUpdate описывает частичное обновление: nil-поля не трогаются
type CharacterUpdate struct {
	Name        *string
	Creator     *string
	Shape       *string
	Color       *string
	Size        *string
	X           *float64
	Y           *float64
	CurrentZone *string
}
