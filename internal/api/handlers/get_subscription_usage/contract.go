package get_subscription_usage

import (
	"context"

	getSubscriptionUsage "github.com/pawly/PGS-BookingService/internal/usecase/get_subscription_usage"
)

type GetSubscriptionUsageUseCase interface {
	Execute(ctx context.Context, req *getSubscriptionUsage.Request) (*getSubscriptionUsage.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
