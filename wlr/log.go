// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wlr

import (
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
)

// importanceFor maps a logrus level to the wlroots verbosity that still passes it
func importanceFor(level logrus.Level) wlroots.LogImportance {
	switch {
	case level >= logrus.DebugLevel:
		return wlroots.LogImportanceDebug
	case level >= logrus.InfoLevel:
		return wlroots.LogImportanceInfo
	default:
		return wlroots.LogImportanceError
	}
}

// ForwardLogs routes the wlroots log into logrus at the given verbosity
func ForwardLogs(level logrus.Level) {
	wlroots.OnLog(importanceFor(level), func(importance wlroots.LogImportance, msg string) {
		switch importance {
		case wlroots.LogImportanceDebug:
			logrus.WithField("source", "wlroots").Debugln(msg)
		case wlroots.LogImportanceInfo:
			logrus.WithField("source", "wlroots").Infoln(msg)
		case wlroots.LogImportanceError:
			logrus.WithField("source", "wlroots").Errorln(msg)
		case wlroots.LogImportanceSilent:
			return
		}
	})
}
