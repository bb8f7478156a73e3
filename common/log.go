package common

import (
	"os"
	"strconv"
	"time"

	"github.com/diamondburned/arikawa/v3/utils/ws"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger. Use Log.Named for component loggers.
var Log = zap.S()

// InitLog (re)builds the global logger. DEBUG_LOGGING enables debug output.
func InitLog() {
	debug, _ := strconv.ParseBool(os.Getenv("DEBUG_LOGGING"))

	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = timeEncoder
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zcfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	if debug {
		zcfg.Level.SetLevel(zapcore.DebugLevel)
	} else {
		zcfg.Level.SetLevel(zapcore.InfoLevel)
	}

	log, err := zcfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		panic(err)
	}

	zap.RedirectStdLog(log)

	Log = log.Sugar()
}

// SetupGatewayLogging sends arikawa's websocket debug output and errors to the "ws" logger.
// Errors are logged with the caller of WSError, not WSError itself.
func SetupGatewayLogging() {
	log := Log.Named("ws")
	errLog := log.Desugar().WithOptions(zap.AddCallerSkip(1)).Sugar()

	ws.WSDebug = log.Debug
	ws.WSError = func(err error) {
		errLog.Error(err)
	}
}

const layout = "15:04:05.000"

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	type appendTimeEncoder interface {
		AppendTimeLayout(time.Time, string)
	}

	if enc, ok := enc.(appendTimeEncoder); ok {
		enc.AppendTimeLayout(t, layout)
		return
	}

	enc.AppendString(t.Format(layout))
}
