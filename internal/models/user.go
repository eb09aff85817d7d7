// Package models содержит доменные структуры системы контроля доступа:
// пользователей, абонементы и журнал проходов, а также вспомогательные
// типы для приёма данных из внешних источников (например, JSON-запросы).
package models

import "time"

// User представляет зарегистрированного посетителя зала.
// Поля Phone и RFIDTag уникальны в пределах системы.
type User struct {
	ID        int       `json:"id"`         // Уникальный идентификатор пользователя
	Name      string    `json:"name"`       // Имя пользователя
	Phone     string    `json:"phone"`      // Телефон (уникальный)
	RFIDTag   string    `json:"rfid_tag"`   // RFID-метка пропуска (уникальная)
	CreatedAt time.Time `json:"created_at"` // Дата регистрации
}

// DummyUser используется для приёма данных регистрации из JSON-запроса,
// прежде чем конвертировать их в User и назначить абонемент.
type DummyUser struct {
	Name               string `json:"name" validate:"required"`                 // Имя пользователя
	Phone              string `json:"phone" validate:"required"`                // Телефон
	RFIDTag            string `json:"rfid_tag" validate:"required"`             // RFID-метка
	SubscriptionTypeID int    `json:"subscription_type_id" validate:"required"` // Тип абонемента из каталога
}

// DummyUserUpdate используется для приёма данных обновления пользователя.
type DummyUserUpdate struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	RFIDTag string `json:"rfid_tag" validate:"required"`
}

// UserInfo представляет строку списка пользователей вместе с данными
// текущего абонемента. Поля SubscriptionName и EndDate равны nil,
// если действующего абонемента нет.
type UserInfo struct {
	User
	SubscriptionName *string    `json:"subscription_name"`
	EndDate          *time.Time `json:"end_date"`
}
