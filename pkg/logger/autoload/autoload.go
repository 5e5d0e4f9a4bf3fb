// Package autoload initializes the default logger from LOG_* environment
// variables via a blank import.
package autoload

import (
	configx "github.com/supportflow-ai/supportflow/pkg/config"
	logx "github.com/supportflow-ai/supportflow/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
