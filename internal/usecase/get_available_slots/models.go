package get_available_slots

import (
	"time"

	"github.com/pawly/PGS-BookingService/pkg/types"
)

// Request модель запроса доступных слотов.
// Date должна быть распарсена в референсной таймзоне салона:
// от этого зависит вычисление дня недели.
type Request struct {
	Date time.Time
}

// Response модель ответа со списком свободных слотов
type Response struct {
	Date  time.Time          // Дата, на которую запрашивались слоты
	Slots []types.TimeString // Свободные слоты по возрастанию времени
}
