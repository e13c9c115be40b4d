package world

import "math/rand"

// Zone описывает именованную прямоугольную область мира
type Zone struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RandomPoint возвращает равномерно распределенную точку внутри зоны.
// При rng == nil используется глобальный генератор math/rand.
func (z Zone) RandomPoint(rng *rand.Rand) (float64, float64) {
	if rng == nil {
		return z.X + rand.Float64()*z.Width, z.Y + rand.Float64()*z.Height
	}
	return z.X + rng.Float64()*z.Width, z.Y + rng.Float64()*z.Height
}

// Contains проверяет, лежит ли точка в границах зоны (включая края)
func (z Zone) Contains(x, y float64) bool {
	return x >= z.X && x <= z.X+z.Width && y >= z.Y && y <= z.Y+z.Height
}

// ZoneRegistry хранит фиксированный набор зон.
// Заполняется один раз при старте и далее только читается,
// поэтому синхронизация не требуется.
type ZoneRegistry struct {
	zones  []Zone
	byName map[string]Zone
}

// NewZoneRegistry создает реестр с пятью зонами по умолчанию.
// SHRINE намеренно пересекается с соседями: принадлежность зоне
// назначается при создании/миграции, а не выводится из координат.
func NewZoneRegistry() *ZoneRegistry {
	r := &ZoneRegistry{byName: make(map[string]Zone)}

	defaultZones := []Zone{
		{Name: "FOREST", X: 0, Y: 0, Width: 300, Height: 300},
		{Name: "PLAZA", X: 300, Y: 0, Width: 300, Height: 300},
		{Name: "COAST", X: 0, Y: 300, Width: 300, Height: 300},
		{Name: "MEADOW", X: 300, Y: 300, Width: 300, Height: 300},
		{Name: "SHRINE", X: 150, Y: 150, Width: 200, Height: 200},
	}
	for _, z := range defaultZones {
		r.addZone(z)
	}
	return r
}

// addZone регистрирует зону; имена уникальны, повтор игнорируется
func (r *ZoneRegistry) addZone(z Zone) {
	if _, exists := r.byName[z.Name]; exists {
		return
	}
	r.zones = append(r.zones, z)
	r.byName[z.Name] = z
}

// Zones возвращает все зоны в порядке регистрации
func (r *ZoneRegistry) Zones() []Zone {
	out := make([]Zone, len(r.zones))
	copy(out, r.zones)
	return out
}

// Zone возвращает зону по имени
func (r *ZoneRegistry) Zone(name string) (Zone, bool) {
	z, ok := r.byName[name]
	return z, ok
}

// First возвращает первую зарегистрированную зону.
// Используется как fallback при создании персонажа в неизвестной зоне.
func (r *ZoneRegistry) First() Zone {
	return r.zones[0]
}
