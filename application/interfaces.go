package application

import (
	"context"
	"time"
)

// SettlementMetrics records settlement and game outcomes
type SettlementMetrics interface {
	RecordSettlement(ctx context.Context, txType, outcome string, duration time.Duration)
	RecordGame(ctx context.Context, gameType, result string)
}

type noopMetrics struct{}

func (noopMetrics) RecordSettlement(context.Context, string, string, time.Duration) {}
func (noopMetrics) RecordGame(context.Context, string, string)                      {}
