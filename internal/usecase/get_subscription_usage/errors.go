package get_subscription_usage

import "errors"

var (
	// ErrIncompletePeriod возвращается, когда у активной подписки нет границ
	// биллингового периода. Это дефект данных: молчаливо разрешать
	// неограниченное потребление нельзя.
	ErrIncompletePeriod = errors.New("get_subscription_usage: subscription period is incomplete")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_subscription_usage: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_subscription_usage: internal error")
)
