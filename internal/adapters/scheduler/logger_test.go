package scheduler

import "car-finder/internal/core/port"

type nopLogger struct{}

func (n *nopLogger) Info(string, port.Fields)               {}
func (n *nopLogger) Warn(string, port.Fields)               {}
func (n *nopLogger) Error(string, error, port.Fields)       {}
func (n *nopLogger) Debug(string, port.Fields)              {}
func (n *nopLogger) WithFields(port.Fields) port.LoggerPort { return n }
