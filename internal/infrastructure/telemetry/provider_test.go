package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))

	base := zap.NewNop()
	assert.Same(t, base, p.BridgeLogger(base, zapcore.InfoLevel))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0).Description(), "AlwaysOff")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestLevelFilterCore(t *testing.T) {
	inner, recorded := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	l := zap.New(core).With(zap.String("k", "v"))

	l.Info("dropped")
	l.Warn("kept")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "kept", recorded.All()[0].Message)
}

func TestStartSpan_NoopTracer(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "invoice.create", attribute.String("company_id", "c-1"))
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))

	_, client := StartClientSpan(context.Background(), "anaf.upload")
	EndSpan(client, nil)
}

func TestInstrumentDB_DisabledIsNoop(t *testing.T) {
	assert.NoError(t, InstrumentDB(&gorm.DB{}, config.TelemetryConfig{Enabled: true}))
	assert.NoError(t, InstrumentDB(&gorm.DB{}, config.TelemetryConfig{DBTraceEnabled: true}))
}

func TestStartProfiler_RequiresAddress(t *testing.T) {
	_, err := StartProfiler("documentiulia", "", zap.NewNop())
	assert.Error(t, err)
}
