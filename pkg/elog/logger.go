package elog

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// Package elog provides the diagnostic sink that vfs.Build writes
// construction-time warnings to: unreadable directory entries, archives
// that fail to open or probe, and similar per-entry problems that
// shouldn't abort an otherwise-successful build.

import (
	"github.com/sirupsen/logrus"
)

// Logger is the diagnostic sink interface vfs.Build accepts. It hides
// debug behind an enabled check so callers can skip formatting work for
// messages nobody will see.
type Logger interface {
	Debugf(format string, x ...interface{})
	Errorf(format string, x ...interface{})
	Infof(format string, x ...interface{})
	Warnf(format string, x ...interface{})
	IsDebugEnabled() bool
}

// Logrus is a Logger backed by a *logrus.Logger.
type Logrus struct {
	Log *logrus.Logger
}

// NewLogrus wraps l (or logrus.StandardLogger() if l is nil) as a Logger.
func NewLogrus(l *logrus.Logger) *Logrus {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Logrus{Log: l}
}

func (l *Logrus) Debugf(format string, x ...interface{}) { l.Log.Debugf(format, x...) }
func (l *Logrus) Errorf(format string, x ...interface{}) { l.Log.Errorf(format, x...) }
func (l *Logrus) Infof(format string, x ...interface{})  { l.Log.Infof(format, x...) }
func (l *Logrus) Warnf(format string, x ...interface{})  { l.Log.Warnf(format, x...) }

func (l *Logrus) IsDebugEnabled() bool {
	return l.Log.IsLevelEnabled(logrus.DebugLevel)
}

type discard struct{}

func (discard) Debugf(string, ...interface{}) {}
func (discard) Errorf(string, ...interface{}) {}
func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) IsDebugEnabled() bool          { return false }

// Discard is a Logger that drops every message. Used as the default when
// callers pass nil into vfs.Build.
var Discard Logger = discard{}
