package models

import "time"

// VerdictCode описывает решение вычислителя доступа.
type VerdictCode string

const (
	// VerdictDenied — доступ запрещён.
	VerdictDenied VerdictCode = "denied"
	// VerdictWarning — доступ разрешён, но абонемент скоро истекает.
	VerdictWarning VerdictCode = "warning"
	// VerdictAllowed — доступ разрешён.
	VerdictAllowed VerdictCode = "allowed"
)

// Verdict — результат вычисления правила доступа для пользователя.
// WeeklyCount содержит число разрешённых проходов за текущую неделю
// ДО текущего сканирования: запись в журнал выполняется вызывающей
// стороной после вычисления.
type Verdict struct {
	Granted          bool        `json:"granted"`           // Разрешён ли проход
	Reason           string      `json:"reason"`            // Человекочитаемое объяснение
	Code             VerdictCode `json:"code"`              // denied / warning / allowed
	SubscriptionName *string     `json:"subscription_name"` // Название абонемента, nil если его нет
	WeeklyCount      int         `json:"weekly_count"`      // Проходы за неделю до этого сканирования
}

// AccessLogEntry представляет запись журнала проходов. Журнал ведётся
// только на добавление: записи не изменяются, удалить их может только
// администратор.
type AccessLogEntry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason"`
}

// AccessLogInfo — запись журнала вместе с именем пользователя,
// используется в административном списке последних проходов.
type AccessLogInfo struct {
	AccessLogEntry
	UserName string `json:"user_name"`
}

// ScanStatus описывает итог обработки сканирования метки.
type ScanStatus string

const (
	// ScanUnknown — метка не привязана ни к одному пользователю.
	ScanUnknown ScanStatus = "unknown"
	// ScanDenied — проход запрещён.
	ScanDenied ScanStatus = ScanStatus(VerdictDenied)
	// ScanWarning — проход разрешён с предупреждением об истечении.
	ScanWarning ScanStatus = ScanStatus(VerdictWarning)
	// ScanAllowed — проход разрешён.
	ScanAllowed ScanStatus = ScanStatus(VerdictAllowed)
)

// AccessEvent — событие прохода, публикуемое во внешнюю очередь
// (табло на входе, аналитика). Для неизвестных меток UserID равен нулю.
type AccessEvent struct {
	UserID    int        `json:"user_id,omitempty"`
	UserName  string     `json:"user_name,omitempty"`
	RFIDTag   string     `json:"rfid_tag"`
	Status    ScanStatus `json:"status"`
	Reason    string     `json:"reason"`
	Timestamp time.Time  `json:"timestamp"`
}

// DummyScan используется для приёма запроса сканирования RFID-метки.
type DummyScan struct {
	RFIDTag string `json:"rfid_tag" validate:"required"`
}

// ScanResult — ответ на сканирование метки. Для неизвестной метки
// заполняется только Status и RFIDTag, запись в журнал не создаётся.
// WeeklyCount здесь уже включает текущий проход, если он был разрешён.
type ScanResult struct {
	Status           ScanStatus `json:"status"`
	RFIDTag          string     `json:"rfid_tag,omitempty"`
	UserName         string     `json:"user_name,omitempty"`
	Message          string     `json:"message"`
	SubscriptionName *string    `json:"subscription_name,omitempty"`
	WeeklyCount      int        `json:"weekly_count"`
}
