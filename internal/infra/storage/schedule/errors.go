package schedule

import "errors"

var (
	// ErrTemplateNotFound возвращается, когда шаблон расписания для дня недели не найден
	ErrTemplateNotFound = errors.New("schedule.repository: template not found")

	// ErrBlackoutNotFound возвращается, когда блэкаут не найден
	ErrBlackoutNotFound = errors.New("schedule.repository: blackout not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
