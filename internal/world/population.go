package world

// PopulationAggregator выводит населенность зон из текущего содержимого
// хранилища. Результат не кэшируется: персонажей мало, а корректность
// при конкурентных мутациях важнее скорости.
type PopulationAggregator struct {
	registry *ZoneRegistry
	store    *CharacterStore
}

// NewPopulationAggregator связывает агрегатор с реестром и хранилищем
func NewPopulationAggregator(registry *ZoneRegistry, store *CharacterStore) *PopulationAggregator {
	return &PopulationAggregator{registry: registry, store: store}
}

// PopulationByZone возвращает счетчик персонажей для каждой зоны.
// Зарегистрированные зоны присутствуют всегда, даже с нулем жителей.
// Персонаж с незарегистрированной currentZone все равно увеличивает
// счетчик под этим именем — наблюдаемое поведение, не отбрасываем.
func (pa *PopulationAggregator) PopulationByZone() map[string]int {
	population := make(map[string]int)

	for _, z := range pa.registry.Zones() {
		population[z.Name] = 0
	}

	for _, ch := range pa.store.Characters() {
		population[ch.CurrentZone]++
	}

	return population
}
