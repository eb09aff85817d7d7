package models

import "time"

// SubscriptionType представляет тип абонемента из неизменяемого каталога.
// Поле EntriesPerWeek может быть nil — это означает отсутствие недельного
// лимита посещений (безлимитный абонемент).
type SubscriptionType struct {
	ID             int     `json:"id"`               // Уникальный идентификатор типа
	Name           string  `json:"name"`             // Название абонемента
	EntriesPerWeek *int    `json:"entries_per_week"` // Лимит посещений в неделю, nil = безлимит
	DurationDays   int     `json:"duration_days"`    // Срок действия в днях
	Price          float64 `json:"price"`            // Цена абонемента
}

// Subscription представляет назначенный пользователю абонемент.
// Окно действия [StartDate, EndDate] включает обе границы; у пользователя
// может накапливаться история из нескольких записей.
type Subscription struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	TypeID    int       `json:"type_id"`
	StartDate time.Time `json:"start_date"` // Дата начала действия
	EndDate   time.Time `json:"end_date"`   // Дата окончания действия (включительно)
}

// ActiveSubscriptionInfo объединяет действующий абонемент с данными его типа.
// Используется вычислителем доступа: из нескольких пересекающихся окон
// хранилище возвращает запись с самой поздней датой окончания.
type ActiveSubscriptionInfo struct {
	Subscription
	TypeName       string `json:"type_name"`        // Название типа абонемента
	EntriesPerWeek *int   `json:"entries_per_week"` // Недельный лимит, nil = безлимит
}

// DummyAssign используется для приёма запроса на назначение нового абонемента.
type DummyAssign struct {
	TypeID int `json:"type_id" validate:"required"`
}

// DummyExtend используется для приёма запроса на продление текущего абонемента.
type DummyExtend struct {
	Days int `json:"days" validate:"required,gt=0"`
}
