package entity

import (
	"image"
	"sync/atomic"
)

// SessionState состояние диалога
type SessionState string

const (
	StateMainMenu               SessionState = "main_menu"                // В главном меню
	StateAwaitingReferencePhoto SessionState = "awaiting_reference_photo" // Ожидание снимка до сдвига
	StateAwaitingDamagePhoto    SessionState = "awaiting_damage_photo"    // Ожидание снимка после сдвига
	StateProcessing             SessionState = "processing"               // Идёт фоновая обработка
)

// Project сохраняемое состояние одного анализа.
type Project struct {
	Origin  image.Image // исходный (или совмещённый) снимок
	Crop    Polygon     // полигон обрезки, пустой: весь кадр
	Channel Channel     // канал для градаций серого
	ROIs    []Polygon   // области интереса
	Scale   *Scale      // nil: без калибровки
	Binary  *Mask       // маска зон разрушения, nil до анализа

	// Revision меняется при замене снимка или канала; по ней отбрасываются устаревшие результаты.
	Revision uint64
}

var projectRevision atomic.Uint64

// NewProject создаёт проект для снимка.
func NewProject(origin image.Image, channel Channel) *Project {
	return &Project{Origin: origin, Channel: channel, Revision: projectRevision.Add(1)}
}

// ReplaceOrigin заменяет снимок; прежний результат анализа сбрасывается.
func (p *Project) ReplaceOrigin(origin image.Image) {
	p.Origin = origin
	p.Binary = nil
	p.Revision = projectRevision.Add(1)
}

// SetChannel меняет канал градаций серого.
func (p *Project) SetChannel(channel Channel) {
	if p.Channel == channel {
		return
	}
	p.Channel = channel
	p.Revision = projectRevision.Add(1)
}

// Clone копия проекта. Origin и Binary не копируются: их заменяют целиком
// и никогда не меняют на месте.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	regions := p.Regions()
	c.Crop, c.ROIs = regions.Crop, regions.ROIs
	if p.Scale != nil {
		scale := *p.Scale
		c.Scale = &scale
	}
	return &c
}

// Regions возвращает копию набора областей.
func (p *Project) Regions() RegionSet {
	return RegionSet{Crop: p.Crop, ROIs: p.ROIs}.Clone()
}

// Size размер исходного снимка.
func (p *Project) Size() (int, int) {
	if p.Origin == nil {
		return 0, 0
	}
	b := p.Origin.Bounds()
	return b.Dx(), b.Dy()
}

// Session пользователь бота и его рабочий проект
type Session struct {
	ID        int64        // Telegram User ID
	ChatID    int64        // Telegram Chat ID
	State     SessionState // Текущее состояние диалога
	Mode      Mode         // Выбранная стратегия анализа
	Channel   Channel      // Канал для новых проектов
	Params    RegistrationParams
	Project   *Project    // nil, пока не загружен снимок
	Reference image.Image // снимок до сдвига, ожидающий пару
}

// SessionDefaults начальные настройки новых сессий
type SessionDefaults struct {
	Mode    Mode
	Channel Channel
	Params  RegistrationParams
}

// DefaultSessionDefaults настройки по умолчанию.
func DefaultSessionDefaults() SessionDefaults {
	return SessionDefaults{
		Mode:    ModeGlobal,
		Channel: ChannelGray,
		Params:  DefaultRegistrationParams(),
	}
}

// NewSession создаёт сессию с заданными настройками.
func (d SessionDefaults) NewSession(userID, chatID int64) *Session {
	return &Session{
		ID:      userID,
		ChatID:  chatID,
		State:   StateMainMenu,
		Mode:    d.Mode,
		Channel: d.Channel,
		Params:  d.Params,
	}
}

// NewSession создаёт сессию с начальным состоянием
func NewSession(userID, chatID int64) *Session {
	return DefaultSessionDefaults().NewSession(userID, chatID)
}

// Clone независимая копия сессии вместе с проектом.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Project = s.Project.Clone()
	return &c
}

// SetState обновляет состояние диалога
func (s *Session) SetState(state SessionState) {
	s.State = state
}
