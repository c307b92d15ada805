package block

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// BlockID представляет идентификатор блока (один байт на ячейку подчанка)
type BlockID = uint8

// Константы ID блоков
const (
	AirBlockID         BlockID = 0
	StoneBlockID       BlockID = 1
	GrassBlockID       BlockID = 2
	DirtBlockID        BlockID = 3
	CobblestoneBlockID BlockID = 4
	PlanksBlockID      BlockID = 5
	BedrockBlockID     BlockID = 7
	FlowingWaterID     BlockID = 8
	WaterBlockID       BlockID = 9
	SandBlockID        BlockID = 12
	GravelBlockID      BlockID = 13
	LogBlockID         BlockID = 17
	LeavesBlockID      BlockID = 18
	GlassBlockID       BlockID = 20
	CobwebBlockID      BlockID = 30
	TallGrassBlockID   BlockID = 31
	FlowerBlockID      BlockID = 38
	IceBlockID         BlockID = 79
	CactusBlockID      BlockID = 81
)

// MaxLightFilter - полное поглощение света
const MaxLightFilter = 15

// Properties описывает световые свойства блока
type Properties struct {
	ID               BlockID `yaml:"id"`
	Name             string  `yaml:"name"`
	LightFilter      uint8   `yaml:"light_filter"`
	DiffusesSkyLight bool    `yaml:"diffuses_sky_light"`
}

// Registry хранит свойства блоков. Безопасен для конкурентного чтения.
// Неизвестные блоки считаются непрозрачными и не рассеивающими свет.
type Registry struct {
	mu    sync.RWMutex
	props [256]*Properties
}

// NewRegistry создаёт пустой реестр (известен только воздух)
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(Properties{ID: AirBlockID, Name: "Air"})
	return r
}

// NewDefaultRegistry создаёт реестр со стандартной таблицей блоков
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range defaultProperties {
		r.Register(p)
	}
	return r
}

// Register добавляет (или заменяет) свойства блока в реестре
func (r *Registry) Register(p Properties) {
	if p.LightFilter > MaxLightFilter {
		p.LightFilter = MaxLightFilter
	}
	// Воздух всегда полностью прозрачен
	if p.ID == AirBlockID {
		p.LightFilter = 0
		p.DiffusesSkyLight = false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cp := p
	r.props[p.ID] = &cp
}

// Get возвращает свойства для указанного ID
func (r *Registry) Get(id BlockID) (Properties, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.props[id]
	if p == nil {
		return Properties{}, false
	}
	return *p, true
}

// IsValidBlockID проверяет, зарегистрирован ли блок
func (r *Registry) IsValidBlockID(id BlockID) bool {
	_, ok := r.Get(id)
	return ok
}

// LightFilter возвращает величину поглощения света блоком (0..15)
func (r *Registry) LightFilter(id BlockID) uint8 {
	p, ok := r.Get(id)
	if !ok {
		return MaxLightFilter
	}
	return p.LightFilter
}

// DiffusesSkyLight сообщает, рассеивает ли блок небесный свет
func (r *Registry) DiffusesSkyLight(id BlockID) bool {
	p, ok := r.Get(id)
	return ok && p.DiffusesSkyLight
}

// blockTable - формат YAML-файла с таблицей свойств блоков
type blockTable struct {
	Blocks []Properties `yaml:"blocks"`
}

// LoadYAML читает таблицу свойств блоков из YAML файла и регистрирует их.
// Возвращает количество загруженных записей.
func (r *Registry) LoadYAML(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return r.LoadYAMLBytes(data)
}

// LoadYAMLBytes аналогичен LoadYAML, но принимает содержимое файла
func (r *Registry) LoadYAMLBytes(data []byte) (int, error) {
	var table blockTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return 0, fmt.Errorf("ошибка разбора таблицы блоков: %w", err)
	}
	for _, p := range table.Blocks {
		if p.LightFilter > MaxLightFilter {
			return 0, fmt.Errorf("блок %d (%s): light_filter %d вне диапазона 0..15", p.ID, p.Name, p.LightFilter)
		}
	}
	for _, p := range table.Blocks {
		r.Register(p)
	}
	return len(table.Blocks), nil
}

var defaultProperties = []Properties{
	{ID: StoneBlockID, Name: "Stone", LightFilter: 15},
	{ID: GrassBlockID, Name: "Grass", LightFilter: 15},
	{ID: DirtBlockID, Name: "Dirt", LightFilter: 15},
	{ID: CobblestoneBlockID, Name: "Cobblestone", LightFilter: 15},
	{ID: PlanksBlockID, Name: "Planks", LightFilter: 15},
	{ID: BedrockBlockID, Name: "Bedrock", LightFilter: 15},
	{ID: FlowingWaterID, Name: "Flowing Water", LightFilter: 2},
	{ID: WaterBlockID, Name: "Water", LightFilter: 2},
	{ID: SandBlockID, Name: "Sand", LightFilter: 15},
	{ID: GravelBlockID, Name: "Gravel", LightFilter: 15},
	{ID: LogBlockID, Name: "Log", LightFilter: 15},
	{ID: LeavesBlockID, Name: "Leaves", LightFilter: 1, DiffusesSkyLight: true},
	{ID: GlassBlockID, Name: "Glass", LightFilter: 0},
	{ID: CobwebBlockID, Name: "Cobweb", LightFilter: 1, DiffusesSkyLight: true},
	{ID: TallGrassBlockID, Name: "Tall Grass", LightFilter: 0},
	{ID: FlowerBlockID, Name: "Flower", LightFilter: 0},
	{ID: IceBlockID, Name: "Ice", LightFilter: 2},
	{ID: CactusBlockID, Name: "Cactus", LightFilter: 0},
}

var defaultRegistry = NewDefaultRegistry()

// Default возвращает глобальный реестр блоков
func Default() *Registry {
	return defaultRegistry
}

// Register добавляет свойства блока в глобальный реестр
func Register(p Properties) {
	defaultRegistry.Register(p)
}

// Get возвращает свойства блока из глобального реестра
func Get(id BlockID) (Properties, bool) {
	return defaultRegistry.Get(id)
}
